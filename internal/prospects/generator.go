package prospects

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/propensity/internal/domain/features"
	"github.com/okian/propensity/pkg/logger"
)

// Generator draws prospects uniformly from a simulator form.
type Generator struct {
	form features.Form
	rng  *rand.Rand
}

// NewGenerator creates a generator for form. A zero seed draws a random one.
func NewGenerator(form features.Form, seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{form: form, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns one prospect. Numeric values are snapped to the field step.
func (g *Generator) Next() Prospect {
	values := make(map[string]any, len(g.form.Choices)+len(g.form.Numeric))
	for _, c := range g.form.Choices {
		if len(c.Options) == 0 {
			continue
		}
		values[c.Attribute] = c.Options[g.rng.IntN(len(c.Options))]
	}
	for _, n := range g.form.Numeric {
		values[n.Attribute] = g.number(n)
	}
	return Prospect{ID: uuid.NewString(), Values: values}
}

func (g *Generator) number(n features.NumericField) float64 {
	v := n.Min + g.rng.Float64()*(n.Max-n.Min)
	if n.Step > 0 {
		v = n.Min + math.Round((v-n.Min)/n.Step)*n.Step
	}
	return math.Min(math.Max(v, n.Min), n.Max)
}

// generateProspects creates config.NumProspects prospects.
func generateProspects(ctx context.Context, config *Config, form features.Form, stats *Stats) ([]Prospect, error) {
	logger.Get().Info(ctx, "generating prospects", logger.Int("count", config.NumProspects))

	gen := NewGenerator(form, config.Seed)
	out := make([]Prospect, config.NumProspects)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		out[i] = gen.Next()
	}

	stats.ProspectsGenerated = len(out)
	return out, nil
}
