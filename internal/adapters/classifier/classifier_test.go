package classifier

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/propensity/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

var testSchema = features.ModelSchema{
	Version:     "test-v1",
	Columns:     features.Schema{"age", "metier_retired"},
	Numeric:     []string{"age"},
	Categorical: []string{"metier"},
}

const logisticJSON = `{
  "format": "logistic_regression",
  "version": "2024-05",
  "features": ["age", "metier_retired"],
  "coefficients": [0.05, 1.2],
  "intercept": -3
}`

func TestLoad_Logistic(t *testing.T) {
	Convey("Given a logistic export", t, func() {
		ctx := context.Background()
		m, err := Load(ctx, "model_bank_marketing_v1.json", []byte(logisticJSON), testSchema)

		Convey("Then it loads with its metadata", func() {
			So(err, ShouldBeNil)
			So(m.Info(), ShouldResemble, Info{Format: FormatLogistic, Version: "2024-05", Features: 2})
			So(m.Close(), ShouldBeNil)
		})

		Convey("When predicting", func() {
			p, err := m.PredictProba(ctx, features.Vector{60, 1})

			Convey("Then it applies the sigmoid of the linear score", func() {
				So(err, ShouldBeNil)
				So(p, ShouldAlmostEqual, 1/(1+math.Exp(-(-3+0.05*60+1.2))), 1e-12)
			})
		})

		Convey("When the vector has the wrong width", func() {
			_, err := m.PredictProba(ctx, features.Vector{60})
			So(errors.Is(err, ErrFeatureWidth), ShouldBeTrue)
		})
	})

	Convey("Given exports that do not match the schema", t, func() {
		ctx := context.Background()
		cases := []struct {
			name string
			body string
			kind error
		}{
			{"reordered", `{"format":"logistic_regression","features":["metier_retired","age"],"coefficients":[1,2],"intercept":0}`, ErrSchemaDrift},
			{"missing column", `{"format":"logistic_regression","features":["age"],"coefficients":[1],"intercept":0}`, ErrSchemaDrift},
			{"ragged", `{"format":"logistic_regression","features":["age","metier_retired"],"coefficients":[1],"intercept":0}`, ErrInvalidModel},
			{"other format", `{"format":"random_forest","features":[],"coefficients":[],"intercept":0}`, ErrUnsupportedFormat},
			{"broken json", `{"format":`, ErrInvalidModel},
		}
		for _, tc := range cases {
			_, err := Load(ctx, "m.json", []byte(tc.body), testSchema)
			So(errors.Is(err, tc.kind), ShouldBeTrue)
		}
	})

	Convey("Given an artifact without a usable format", t, func() {
		_, err := Load(context.Background(), "model.joblib", []byte{0x80, 0x04}, testSchema)
		So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)

		_, err = Load(context.Background(), "model.json", nil, testSchema)
		So(errors.Is(err, ErrInvalidModel), ShouldBeTrue)
	})
}

func TestDetectFormat(t *testing.T) {
	Convey("Given artifact keys and contents", t, func() {
		So(detectFormat("m.JSON", []byte("x")), ShouldEqual, FormatLogistic)
		So(detectFormat("m.onnx", []byte("{")), ShouldEqual, FormatONNX)
		So(detectFormat("latest", []byte("  {\"format\":1}")), ShouldEqual, FormatLogistic)
		So(detectFormat("latest", []byte{0x08, 0x07}), ShouldEqual, FormatONNX)
		So(detectFormat("model.pkl", []byte("{")), ShouldEqual, "")
	})
}

func TestSigmoid(t *testing.T) {
	Convey("Given extreme linear scores", t, func() {
		So(sigmoid(0), ShouldEqual, 0.5)
		So(sigmoid(-1000), ShouldEqual, 0.0)
		So(sigmoid(1000), ShouldEqual, 1.0)
		So(math.IsNaN(sigmoid(-1000)), ShouldBeFalse)
	})
}
