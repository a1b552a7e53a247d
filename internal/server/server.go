// Package server exposes the scoring service over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crimson-sun/claimsort/internal/model"
	"github.com/crimson-sun/claimsort/internal/service"
)

const (
	readTimeout  = 30 * time.Second
	writeTimeout = 30 * time.Second
)

// Server wires the scoring service into an HTTP listener.
type Server struct {
	http *http.Server
}

// New creates a Server listening on addr.
func New(svc *service.Service, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, svc)

	return &Server{
		http: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
	}
}

func registerRoutes(router *gin.Engine, svc *service.Service) {
	router.POST("/v1/score", scoreHandler(svc))
	router.POST("/v1/score/detail", scoreDetailHandler(svc))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", func(c *gin.Context) {
		st := svc.State()
		code := http.StatusOK
		if st != service.StateReady {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": st.String()})
	})
}

// scoreHandler serves the compatibility contract: the request body is a JSON
// array of claim texts and a successful response is a bare JSON integer
// label. Failures get a structured error envelope with a distinct status
// code.
func scoreHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		pred, ok := score(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, pred.Label)
	}
}

// scoreDetailHandler returns the full prediction: label, class name, and the
// per-class score vector.
func scoreDetailHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		pred, ok := score(c, svc)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, pred)
	}
}

// score parses the batch payload and runs the service, writing the error
// envelope itself on failure. The boolean reports whether a prediction was
// produced.
func score(c *gin.Context, svc *service.Service) (model.Prediction, bool) {
	var texts []string
	if err := c.ShouldBindJSON(&texts); err != nil {
		writeError(c, model.NewScoreError(model.KindBadRequest,
			"request body must be a JSON array of claim texts: %v", err))
		return model.Prediction{}, false
	}

	pred, err := svc.Score(c.Request.Context(), texts)
	if err != nil {
		var scoreErr *model.ScoreError
		if !errors.As(err, &scoreErr) {
			scoreErr = model.NewScoreError(model.KindInference, "%v", err)
		}
		writeError(c, scoreErr)
		return model.Prediction{}, false
	}
	return pred, true
}

func writeError(c *gin.Context, err *model.ScoreError) {
	c.JSON(statusFor(err.Kind), gin.H{"error": err})
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindBadRequest:
		return http.StatusBadRequest
	case model.KindNotReady:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Run starts the listener and blocks until ctx is canceled, then drains
// in-flight requests for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("server started", "addr", s.http.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler exposes the underlying HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
