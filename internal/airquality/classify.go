package airquality

import "encoding/json"

// Tier is a named AQI severity band. Tiers are ordered from least to most severe.
type Tier int

const (
	TierGood Tier = iota
	TierModerate
	TierUnhealthySensitive
	TierUnhealthy
	TierSevere
)

// Upper bounds (inclusive) of every tier except Severe, which is unbounded.
const (
	goodMax               = 50
	moderateMax           = 100
	unhealthySensitiveMax = 150
	unhealthyMax          = 200
)

// Classify maps a US AQI value to its tier. Band boundaries belong to the lower tier.
func Classify(aqi int) Tier {
	switch {
	case aqi <= goodMax:
		return TierGood
	case aqi <= moderateMax:
		return TierModerate
	case aqi <= unhealthySensitiveMax:
		return TierUnhealthySensitive
	case aqi <= unhealthyMax:
		return TierUnhealthy
	default:
		return TierSevere
	}
}

// Guidance is the health advice shown for a tier.
type Guidance struct {
	Recommended []string `json:"recommended"`
	Avoid       []string `json:"avoid"`
}

type tierMeta struct {
	name     string
	label    string
	status   string
	color    string
	guidance Guidance
}

var (
	unhealthyGuidance = Guidance{
		Recommended: []string{"Wear N95 masks outdoors", "Run air purifiers"},
		Avoid:       []string{"Prolonged outdoor exertion", "High traffic zones"},
	}

	tiers = map[Tier]tierMeta{
		TierGood: {
			name:   "good",
			label:  "Good",
			status: "good",
			color:  "#10B981",
			guidance: Guidance{
				Recommended: []string{"Ventilate indoor spaces", "Outdoor physical activities"},
				Avoid:       []string{"No restrictions"},
			},
		},
		TierModerate: {
			name:   "moderate",
			label:  "Moderate",
			status: "moderate",
			color:  "#F59E0B",
			guidance: Guidance{
				Recommended: []string{"Monitor sensitive individuals"},
				Avoid:       []string{"Burning waste outdoors"},
			},
		},
		TierUnhealthySensitive: {
			name:     "unhealthy_sensitive",
			label:    "Unhealthy for Sensitive",
			status:   "unhealthy",
			color:    "#F97316",
			guidance: unhealthyGuidance,
		},
		TierUnhealthy: {
			name:     "unhealthy",
			label:    "Unhealthy",
			status:   "unhealthy",
			color:    "#F97316",
			guidance: unhealthyGuidance,
		},
		TierSevere: {
			name:   "severe",
			label:  "Severe",
			status: "severe",
			color:  "#EF4444",
			guidance: Guidance{
				Recommended: []string{"Remain indoors", "Seal windows", "Use air filtration"},
				Avoid:       []string{"All outdoor activities"},
			},
		},
	}
)

// GuidanceFor returns a copy of the advice for t.
func GuidanceFor(t Tier) Guidance {
	g := t.meta().guidance
	return Guidance{
		Recommended: append([]string(nil), g.Recommended...),
		Avoid:       append([]string(nil), g.Avoid...),
	}
}

func (t Tier) meta() tierMeta {
	if m, ok := tiers[t]; ok {
		return m
	}
	return tiers[TierSevere]
}

// String returns the machine name of the tier, e.g. "unhealthy_sensitive".
func (t Tier) String() string { return t.meta().name }

// Label is the human-readable tier name.
func (t Tier) Label() string { return t.meta().label }

// Status groups tiers that share presentation styling.
func (t Tier) Status() string { return t.meta().status }

// Color is the hex colour used when rendering the tier.
func (t Tier) Color() string { return t.meta().color }

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
