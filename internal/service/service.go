// Package service owns the process-wide scoring state: the vocabulary,
// contraction table, and inference engine handle are established once by
// Initialize and shared read-only across concurrent Score calls.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/crimson-sun/claimsort/internal/config"
	"github.com/crimson-sun/claimsort/internal/encoding"
	"github.com/crimson-sun/claimsort/internal/inference"
	"github.com/crimson-sun/claimsort/internal/model"
	"github.com/crimson-sun/claimsort/internal/resource"
)

// State is the service lifecycle state. Transitions are Uninitialized→Ready
// or Uninitialized→Failed, both terminal; Initialize is never retried
// automatically.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Service scores claim texts against the trained model. Construct with New,
// call Initialize exactly once, then Score any number of times concurrently.
type Service struct {
	state atomic.Int32

	encoder *encoding.Encoder
	engine  inference.Engine

	// cache memoizes predictions by claim text. Safe because Score is a pure
	// function of its input given the immutable loaded state. Nil when
	// disabled.
	cache *gocache.Cache
}

// New returns an uninitialized Service.
func New() *Service {
	return &Service{}
}

// State reports the current lifecycle state.
func (s *Service) State() State {
	return State(s.state.Load())
}

// Initialize loads the vocabulary and contraction table, opens the inference
// engine, and moves the service to Ready. On any failure the service moves
// to Failed, the failure is logged, and every subsequent Score call is
// rejected; recovery requires a process restart.
func (s *Service) Initialize(cfg config.Config) error {
	// Reject repeat calls before touching any resources: a second Initialize
	// must not reload the vocabulary or leak a freshly opened engine.
	if st := s.State(); st != StateUninitialized {
		return fmt.Errorf("service: already %s, initialize is one-shot", st)
	}
	enc, eng, err := buildComponents(cfg)
	if err != nil {
		s.state.Store(int32(StateFailed))
		slog.Error("initialization failed, service will reject all requests", "error", err)
		return err
	}
	return s.InitializeWith(enc, eng, cfg.Scoring.CacheTTL)
}

// InitializeWith completes initialization over already-built components. It
// is the state transition core of Initialize, split out so tests can supply
// a fake engine.
func (s *Service) InitializeWith(enc *encoding.Encoder, eng inference.Engine, cacheTTL time.Duration) error {
	if s.State() != StateUninitialized {
		return fmt.Errorf("service: already %s, initialize is one-shot", s.State())
	}
	s.encoder = enc
	s.engine = eng
	if cacheTTL > 0 {
		s.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	// Publish Ready only after the shared state is fully constructed, so a
	// Score racing the tail of initialization never sees partial state.
	if !s.state.CompareAndSwap(int32(StateUninitialized), int32(StateReady)) {
		return fmt.Errorf("service: already %s, initialize is one-shot", s.State())
	}
	slog.Info("scoring service ready", "cache_ttl", cacheTTL)
	return nil
}

func buildComponents(cfg config.Config) (*encoding.Encoder, inference.Engine, error) {
	vocabPath, err := resource.Localize(cfg.Model.Vocab, cfg.Model.DownloadDir)
	if err != nil {
		return nil, nil, err
	}
	vocab, err := encoding.LoadVocabulary(vocabPath)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("vocabulary loaded", "words", vocab.Size())

	contractionsPath := cfg.Model.Contractions
	if contractionsPath != "" {
		if contractionsPath, err = resource.Localize(contractionsPath, cfg.Model.DownloadDir); err != nil {
			return nil, nil, err
		}
	}
	contractions, err := encoding.LoadContractions(contractionsPath)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("contraction table loaded", "entries", contractions.Len())

	eng, err := inference.NewONNXEngine(
		cfg.Model.Path,
		encoding.MaxSeqLength,
		cfg.Scoring.MaxInflight,
		cfg.Scoring.InferenceTimeout,
	)
	if err != nil {
		return nil, nil, err
	}

	return encoding.NewEncoder(vocab, contractions), eng, nil
}

// Score classifies a batch of claim texts. The model accepts a single fixed
// row per call, so only the first element of the batch is scored; callers
// submitting more than one text get a result for the first only. All
// failures return a *model.ScoreError and never escalate beyond the request.
func (s *Service) Score(ctx context.Context, texts []string) (model.Prediction, error) {
	if st := s.State(); st != StateReady {
		return model.Prediction{}, model.NewScoreError(model.KindNotReady,
			"service is %s and cannot score", st)
	}
	if len(texts) == 0 {
		return model.Prediction{}, model.NewScoreError(model.KindBadRequest,
			"batch contains no claim texts")
	}
	if len(texts) > 1 {
		slog.Debug("scoring first claim of multi-claim batch", "batch_size", len(texts))
	}
	text := texts[0]

	if s.cache != nil {
		if hit, ok := s.cache.Get(text); ok {
			return hit.(model.Prediction), nil
		}
	}

	row := s.encoder.EncodeRow(text)
	scores, err := s.engine.Infer(ctx, row)
	if err != nil {
		return model.Prediction{}, model.NewScoreError(model.KindInference,
			"scoring failed: %v", err)
	}

	label := argmax(scores)
	pred := model.Prediction{
		Label:  label,
		Class:  model.ClassName(label),
		Scores: scores,
	}
	if s.cache != nil {
		s.cache.Set(text, pred, gocache.DefaultExpiration)
	}
	return pred, nil
}

// Close releases the inference engine. Safe to call on a never-initialized
// service.
func (s *Service) Close() error {
	if s.engine != nil {
		return s.engine.Close()
	}
	return nil
}

// argmax returns the index of the highest score. Strict comparison while
// scanning upward keeps the lowest index on exact ties.
func argmax(scores []float32) int {
	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return best
}
