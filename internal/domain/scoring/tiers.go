package scoring

// Tier is a propensity level.
type Tier string

// Propensity tiers.
const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// Band is a gauge range in score points. The upper bound is exclusive except
// for the last band.
type Band struct {
	Tier Tier    `json:"tier"`
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// Advice is follow-up guidance for the sales representative.
type Advice struct {
	Band    Tier     `json:"band"`
	Summary string   `json:"summary"`
	Actions []string `json:"actions"`
}

var recommendations = map[Tier]string{
	TierHigh: "High priority: immediate opportunity. The client is very receptive; " +
		"close quickly by stressing the benefits and safety of the savings product.",
	TierModerate: "Medium priority: promising client, strengthen the pitch. " +
		"The client hesitates but can be won with a personalised offer focused on flexibility.",
	TierLow: "Low priority: do not give up, but allocate few resources. " +
		"Spend sales time on better qualified profiles to maximise return.",
}

// Recommendation returns the call-to-action text for the tier.
func (t Tier) Recommendation() string {
	return recommendations[t]
}

func adviceFor(band Tier) Advice {
	switch band {
	case TierHigh:
		return Advice{
			Band:    TierHigh,
			Summary: "High probability of subscription",
			Actions: []string{
				"Contact the client quickly",
				"Finalise the subscription as soon as possible",
				"Offer suitable complementary services",
				"Highlight current promotions or exclusive offers",
				"Confirm the details and keep the process simple",
			},
		}
	case TierModerate:
		return Advice{
			Band:    TierModerate,
			Summary: "Medium probability of subscription",
			Actions: []string{
				"Contact the client with a personalised pitch",
				"Highlight the concrete benefits of the product",
				"Plan a close follow-up to answer questions",
				"Anticipate likely objections and prepare answers",
			},
		}
	default:
		return Advice{
			Band:    TierLow,
			Summary: "Low probability of subscription",
			Actions: []string{
				"Do not invest much time in this client for now",
				"Plan a light follow-up in a few weeks",
				"Note the client's preferences for a future contact",
				"Stay courteous and keep the relationship",
			},
		}
	}
}
