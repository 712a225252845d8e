package matching

// MatchWeights weights the four pre-screening sub-scores. Each weight lies in
// [0,1]; they sum to 1 by convention only.
type MatchWeights struct {
	Skills     float64 `json:"skills" mapstructure:"skills" validate:"gte=0,lte=1"`
	Experience float64 `json:"experience" mapstructure:"experience" validate:"gte=0,lte=1"`
	Location   float64 `json:"location" mapstructure:"location" validate:"gte=0,lte=1"`
	Seniority  float64 `json:"seniority" mapstructure:"seniority" validate:"gte=0,lte=1"`
}

// DefaultWeights returns skills 0.40, experience 0.25, location 0.20,
// seniority 0.15.
func DefaultWeights() MatchWeights {
	return MatchWeights{
		Skills:     0.40,
		Experience: 0.25,
		Location:   0.20,
		Seniority:  0.15,
	}
}

// Sum returns the total of all weights.
func (w MatchWeights) Sum() float64 {
	return w.Skills + w.Experience + w.Location + w.Seniority
}

// PartialWeights carries caller overrides; nil fields keep the base value.
type PartialWeights struct {
	Skills     *float64 `json:"skills,omitempty" mapstructure:"skills"`
	Experience *float64 `json:"experience,omitempty" mapstructure:"experience"`
	Location   *float64 `json:"location,omitempty" mapstructure:"location"`
	Seniority  *float64 `json:"seniority,omitempty" mapstructure:"seniority"`
}

// Merge returns w with every non-nil override applied.
func (w MatchWeights) Merge(p PartialWeights) MatchWeights {
	if p.Skills != nil {
		w.Skills = *p.Skills
	}
	if p.Experience != nil {
		w.Experience = *p.Experience
	}
	if p.Location != nil {
		w.Location = *p.Location
	}
	if p.Seniority != nil {
		w.Seniority = *p.Seniority
	}
	return w
}

// Blend is the ratio used to combine the algorithmic and AI scores into the
// final score.
type Blend struct {
	Algorithmic float64 `json:"algorithmic" mapstructure:"algorithmic" validate:"gte=0,lte=1"`
	AI          float64 `json:"ai" mapstructure:"ai" validate:"gte=0,lte=1"`
}

// DefaultBlend returns 0.4 algorithmic, 0.6 AI.
func DefaultBlend() Blend {
	return Blend{Algorithmic: 0.4, AI: 0.6}
}

// Apply combines the two scores and clamps the result to [0,100].
func (b Blend) Apply(algorithmic, ai float64) float64 {
	return Clamp(b.Algorithmic*algorithmic+b.AI*ai, 0, 100)
}

// Clamp limits v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
