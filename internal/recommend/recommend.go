// Package recommend runs one form submission through encoding, feature
// assembly and prediction.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/career-recommender/internal/answers"
	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/features"
	"github.com/spigell/career-recommender/internal/logger"
	"github.com/spigell/career-recommender/internal/model"
)

// DefaultTimeout bounds a single classifier call.
const DefaultTimeout = 5 * time.Second

// Result is the outcome of one submission.
type Result struct {
	RequestID    string              `json:"request_id"`
	Name         string              `json:"name,omitempty"`
	Best         model.Prediction    `json:"best"`
	Ranked       []model.Prediction  `json:"ranked"`
	Features     map[string]float64  `json:"features"`
	Distribution *model.Distribution `json:"-"`
}

// Config configures a Service.
type Config struct {
	// Timeout wraps the classifier call. Zero disables it.
	Timeout time.Duration
}

// Deps are the long-lived, read-only collaborators shared across requests.
type Deps struct {
	Encoder   *encoder.Encoder
	Predictor *model.Predictor
	Logger    *zap.Logger
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	encoder   *encoder.Encoder
	predictor *model.Predictor
	timeout   time.Duration
	logger    *zap.Logger
	newID     func() string
}

func New(cfg *Config, deps *Deps) (*Service, error) {
	if deps == nil || deps.Predictor == nil {
		return nil, errors.New("predictor is required")
	}

	enc := deps.Encoder
	if enc == nil {
		enc = encoder.New(nil)
	}

	timeout := DefaultTimeout
	if cfg != nil {
		timeout = cfg.Timeout
	}

	return &Service{
		encoder:   enc,
		predictor: deps.Predictor,
		timeout:   timeout,
		logger:    logger.WithFields(deps.Logger),
		newID:     func() string { return uuid.NewString() },
	}, nil
}

// Recommend validates and scores a. Every failure is returned to the caller;
// nothing is retried.
func (s *Service) Recommend(ctx context.Context, a *answers.Answers) (*Result, error) {
	id := s.newID()
	log := logger.WithRequest(s.logger, id)

	if err := a.Validate(); err != nil {
		log.Debug("answers rejected", zap.Error(err))
		return nil, err
	}

	vector, err := features.Build(s.encoder, a)
	if err != nil {
		log.Debug("encoding failed", zap.Error(err))
		return nil, fmt.Errorf("encoding answers: %w", err)
	}

	log.Debug("features assembled", zap.Any("features", vector.Map()))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	label, dist, err := s.predictor.Predict(ctx, vector)
	if err != nil {
		log.Warn("prediction failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, fmt.Errorf("predicting career: %w", err)
	}

	best := dist.Best()
	log.Info("career predicted",
		zap.String("label", label),
		zap.Float64("probability", best.Probability),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &Result{
		RequestID:    id,
		Name:         a.Name,
		Best:         best,
		Ranked:       dist.Ranked(),
		Features:     vector.Map(),
		Distribution: dist,
	}, nil
}

// Top returns the n most likely careers of r.
func (r *Result) Top(n int) []model.Prediction {
	if n <= 0 || n >= len(r.Ranked) {
		return r.Ranked
	}
	return r.Ranked[:n]
}
