// Package scoring turns a prospect record into a subscription propensity
// score with a commercial recommendation.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/propensity/internal/domain/features"
)

// Default scoring configuration constants.
const (
	defaultHighTier     = 40
	defaultModerateTier = 15
	defaultAdviceLow    = 30
	defaultAdviceHigh   = 60
	maxScoreValue       = 100
)

// ErrInvalidProbability is returned when a predictor yields NaN or a value
// outside [0, 1].
var ErrInvalidProbability = errors.New("predictor returned an invalid probability")

// Option applies a configuration option to the ModelScorer.
type Option func(*ModelScorer)

// WithTierThresholds sets the score cut-offs of the high and moderate tiers.
func WithTierThresholds(high, moderate float64) Option {
	return func(s *ModelScorer) {
		if moderate > 0 && high > moderate && high <= maxScoreValue {
			s.highTier = high
			s.moderateTier = moderate
		}
	}
}

// WithAdviceBands sets the score bounds of the follow-up advice bands.
// Scores below low get low-band advice, scores above high get high-band advice.
func WithAdviceBands(low, high float64) Option {
	return func(s *ModelScorer) {
		if low > 0 && high > low && high <= maxScoreValue {
			s.adviceLow = low
			s.adviceHigh = high
		}
	}
}

// Predictor is a trained binary classifier.
type Predictor interface {
	// PredictProba returns the probability of the positive class.
	PredictProba(ctx context.Context, v features.Vector) (float64, error)
}

// Input is a raw prospect as entered in the simulator.
type Input struct {
	Record features.Record
}

// Result contains the computed propensity of a prospect.
type Result struct {
	Probability    float64 `json:"probability"`
	Score          float64 `json:"score"`
	Tier           Tier    `json:"tier"`
	Recommendation string  `json:"recommendation"`
	Advice         Advice  `json:"advice"`
	Bands          []Band  `json:"bands"`
}

// Scorer computes a score from an input.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// ModelScorer implements Scorer on top of a trained model bound to its
// feature schema.
type ModelScorer struct {
	schema    features.ModelSchema
	predictor Predictor

	highTier     float64
	moderateTier float64
	adviceLow    float64
	adviceHigh   float64
}

// NewModelScorer creates a scorer for predictor, aligning inputs to schema.
func NewModelScorer(schema features.ModelSchema, predictor Predictor, opts ...Option) *ModelScorer {
	s := &ModelScorer{
		schema:       schema,
		predictor:    predictor,
		highTier:     defaultHighTier,
		moderateTier: defaultModerateTier,
		adviceLow:    defaultAdviceLow,
		adviceHigh:   defaultAdviceHigh,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score aligns the record, runs the model and grades the probability.
func (s *ModelScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}

	vec, err := s.schema.Align(in.Record)
	if err != nil {
		return Result{}, err
	}

	p, err := s.predictor.PredictProba(ctx, vec)
	if err != nil {
		return Result{}, fmt.Errorf("predict: %w", err)
	}
	return s.Grade(p)
}

// Grade builds the result for a raw probability.
func (s *ModelScorer) Grade(p float64) (Result, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}

	score := ScoreOf(p)
	tier := s.tierOf(score)
	return Result{
		Probability:    p,
		Score:          score,
		Tier:           tier,
		Recommendation: tier.Recommendation(),
		Advice:         adviceFor(s.adviceBandOf(score)),
		Bands:          s.Bands(),
	}, nil
}

// ScoreOf maps a probability to a percentage rounded to two decimals.
func ScoreOf(p float64) float64 {
	return math.Round(p*maxScoreValue*100) / 100
}

func (s *ModelScorer) tierOf(score float64) Tier {
	switch {
	case score >= s.highTier:
		return TierHigh
	case score >= s.moderateTier:
		return TierModerate
	default:
		return TierLow
	}
}

func (s *ModelScorer) adviceBandOf(score float64) Tier {
	switch {
	case score < s.adviceLow:
		return TierLow
	case score <= s.adviceHigh:
		return TierModerate
	default:
		return TierHigh
	}
}

// Bands returns the gauge ranges matching the tiers, lowest first.
func (s *ModelScorer) Bands() []Band {
	return []Band{
		{Tier: TierLow, From: 0, To: s.moderateTier},
		{Tier: TierModerate, From: s.moderateTier, To: s.highTier},
		{Tier: TierHigh, From: s.highTier, To: maxScoreValue},
	}
}
