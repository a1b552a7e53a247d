package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/claimsort/internal/config"
	"github.com/crimson-sun/claimsort/internal/encoding"
	"github.com/crimson-sun/claimsort/internal/model"
	"github.com/crimson-sun/claimsort/internal/service"
)

type stubEngine struct {
	scores []float32
	err    error
}

func (s *stubEngine) Infer(ctx context.Context, row []int64) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func (s *stubEngine) Close() error { return nil }

func newTestServer(t *testing.T, eng *stubEngine) *Server {
	t.Helper()
	vocab, err := encoding.ReadVocabulary(strings.NewReader("my\ncar\nburned\ndown\nhouse\n"))
	require.NoError(t, err)
	contractions, err := encoding.ParseContractions([]byte("\"can't\": \"cannot\"\n"))
	require.NoError(t, err)

	svc := service.New()
	require.NoError(t, svc.InitializeWith(encoding.NewEncoder(vocab, contractions), eng, 0))
	return New(svc, ":0")
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpointReturnsBareLabel(t *testing.T) {
	srv := newTestServer(t, &stubEngine{scores: []float32{0.1, 0.9}})

	rec := doRequest(t, srv, http.MethodPost, "/v1/score", `["my car burned"]`)
	require.Equal(t, http.StatusOK, rec.Code)
	// Compatibility contract: the success payload is a bare JSON integer.
	assert.Equal(t, "1", strings.TrimSpace(rec.Body.String()))
}

func TestScoreEndpointHomeClaim(t *testing.T) {
	srv := newTestServer(t, &stubEngine{scores: []float32{0.8, 0.2}})

	rec := doRequest(t, srv, http.MethodPost, "/v1/score", `["my house burned down"]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", strings.TrimSpace(rec.Body.String()))
}

func TestScoreEndpointMalformedPayload(t *testing.T) {
	srv := newTestServer(t, &stubEngine{scores: []float32{1, 0}})

	for _, body := range []string{`{"claim": "x"}`, `not json`, `[1, 2]`} {
		rec := doRequest(t, srv, http.MethodPost, "/v1/score", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)

		var envelope struct {
			Error model.ScoreError `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "body %q", body)
		assert.Equal(t, model.KindBadRequest, envelope.Error.Kind)
	}
}

func TestScoreEndpointEmptyBatch(t *testing.T) {
	srv := newTestServer(t, &stubEngine{scores: []float32{1, 0}})

	rec := doRequest(t, srv, http.MethodPost, "/v1/score", `[]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpointEngineFailure(t *testing.T) {
	srv := newTestServer(t, &stubEngine{err: errors.New("backend gone")})

	rec := doRequest(t, srv, http.MethodPost, "/v1/score", `["my car"]`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope struct {
		Error model.ScoreError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, model.KindInference, envelope.Error.Kind)
}

func TestScoreEndpointNotReady(t *testing.T) {
	srv := New(service.New(), ":0")

	rec := doRequest(t, srv, http.MethodPost, "/v1/score", `["my car"]`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestScoreDetailEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubEngine{scores: []float32{0.25, 0.75}})

	rec := doRequest(t, srv, http.MethodPost, "/v1/score/detail", `["my car burned"]`)
	require.Equal(t, http.StatusOK, rec.Code)

	var pred model.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pred))
	assert.Equal(t, model.LabelAuto, pred.Label)
	assert.Equal(t, "auto", pred.Class)
	assert.Equal(t, []float32{0.25, 0.75}, pred.Scores)
}

func TestHealthz(t *testing.T) {
	srv := New(service.New(), ":0")
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(t, &stubEngine{scores: []float32{1, 0}})
		rec := doRequest(t, srv, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ready")
	})
	t.Run("uninitialized", func(t *testing.T) {
		srv := New(service.New(), ":0")
		rec := doRequest(t, srv, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "uninitialized")
	})
	t.Run("failed", func(t *testing.T) {
		// The probe must name the Failed state so operators can tell a
		// broken instance from one still starting up.
		svc := service.New()
		cfg := config.Config{}
		cfg.Model.Vocab = filepath.Join(t.TempDir(), "absent-words.txt")
		require.Error(t, svc.Initialize(cfg))

		srv := New(svc, ":0")
		rec := doRequest(t, srv, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "failed")

		rec = doRequest(t, srv, http.MethodPost, "/v1/score", `["my car"]`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
