package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/propensity/internal/domain/features"
	scoring "github.com/okian/propensity/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

type stubPredictor struct {
	p    float64
	err  error
	seen features.Vector
}

func (s *stubPredictor) PredictProba(_ context.Context, v features.Vector) (float64, error) {
	s.seen = v
	return s.p, s.err
}

var testSchema = features.ModelSchema{
	Version:     "test",
	Columns:     features.Schema{"age", "metier_retired", "metier_student"},
	Numeric:     []string{"age"},
	Categorical: []string{"metier"},
}

func TestModelScorer_Score(t *testing.T) {
	Convey("Given a model scorer", t, func() {
		pred := &stubPredictor{p: 0.43217}
		scorer := scoring.NewModelScorer(testSchema, pred)
		in := scoring.Input{Record: features.NewRecord(map[string]any{"age": 52, "metier": "retired"})}

		Convey("When scoring a valid prospect", func() {
			res, err := scorer.Score(context.Background(), in)

			Convey("Then the model sees the aligned vector", func() {
				So(err, ShouldBeNil)
				So(pred.seen, ShouldResemble, features.Vector{52, 1, 0})
			})

			Convey("And the result is graded", func() {
				So(res.Probability, ShouldEqual, 0.43217)
				So(res.Score, ShouldEqual, 43.22)
				So(res.Tier, ShouldEqual, scoring.TierHigh)
				So(res.Recommendation, ShouldStartWith, "High priority")
				So(res.Advice.Band, ShouldEqual, scoring.TierModerate)
				So(len(res.Advice.Actions), ShouldEqual, 4)
				So(len(res.Bands), ShouldEqual, 3)
			})
		})

		Convey("When the record does not fit the schema", func() {
			bad := scoring.Input{Record: features.NewRecord(map[string]any{"age": 52})}
			_, err := scorer.Score(context.Background(), bad)

			Convey("Then the alignment error is returned untouched", func() {
				So(errors.Is(err, features.ErrUnknownCategoricalAttribute), ShouldBeTrue)
				So(pred.seen, ShouldBeNil)
			})
		})

		Convey("When the predictor fails", func() {
			pred.err = errors.New("boom")
			_, err := scorer.Score(context.Background(), in)

			Convey("Then the error is wrapped", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "boom")
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scorer.Score(ctx, in)

			Convey("Then the model is not called", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(pred.seen, ShouldBeNil)
			})
		})
	})
}

func TestModelScorer_Grade(t *testing.T) {
	Convey("Given the default thresholds", t, func() {
		scorer := scoring.NewModelScorer(testSchema, &stubPredictor{})

		cases := []struct {
			p      float64
			tier   scoring.Tier
			advice scoring.Tier
		}{
			{0, scoring.TierLow, scoring.TierLow},
			{0.1499, scoring.TierLow, scoring.TierLow},
			{0.15, scoring.TierModerate, scoring.TierLow},
			{0.30, scoring.TierModerate, scoring.TierModerate},
			{0.40, scoring.TierHigh, scoring.TierModerate},
			{0.60, scoring.TierHigh, scoring.TierModerate},
			{0.6001, scoring.TierHigh, scoring.TierHigh},
			{1, scoring.TierHigh, scoring.TierHigh},
		}
		for _, tc := range cases {
			res, err := scorer.Grade(tc.p)
			So(err, ShouldBeNil)
			So(res.Tier, ShouldEqual, tc.tier)
			So(res.Advice.Band, ShouldEqual, tc.advice)
		}

		Convey("Then out of range probabilities are rejected", func() {
			for _, p := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
				_, err := scorer.Grade(p)
				So(errors.Is(err, scoring.ErrInvalidProbability), ShouldBeTrue)
			}
		})

		Convey("Then the gauge bands follow the tiers", func() {
			So(scorer.Bands(), ShouldResemble, []scoring.Band{
				{Tier: scoring.TierLow, From: 0, To: 15},
				{Tier: scoring.TierModerate, From: 15, To: 40},
				{Tier: scoring.TierHigh, From: 40, To: 100},
			})
		})
	})

	Convey("Given custom thresholds", t, func() {
		scorer := scoring.NewModelScorer(testSchema, &stubPredictor{},
			scoring.WithTierThresholds(70, 20),
			scoring.WithAdviceBands(10, 90),
			scoring.WithTierThresholds(10, 20), // ignored: high below moderate
		)

		res, err := scorer.Grade(0.5)
		So(err, ShouldBeNil)
		So(res.Tier, ShouldEqual, scoring.TierModerate)
		So(res.Advice.Band, ShouldEqual, scoring.TierModerate)
	})
}

func TestScoreOf(t *testing.T) {
	Convey("Given probabilities", t, func() {
		So(scoring.ScoreOf(0.123456), ShouldEqual, 12.35)
		So(scoring.ScoreOf(0), ShouldEqual, 0.0)
		So(scoring.ScoreOf(1), ShouldEqual, 100.0)
	})
}
