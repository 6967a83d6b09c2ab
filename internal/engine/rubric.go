package engine

import (
	"encoding/json"
	"sort"
)

// RubricSpec is the scoring contract for a boss encounter. Loaded from the
// rubric store as JSON and validated before use.
type RubricSpec struct {
	Slug               string      `json:"slug"`
	MaxScore           int         `json:"max_score"`
	Dimensions         []Dimension `json:"dimensions"`
	GradeBands         []GradeBand `json:"grade_bands"`
	AutofailConditions []string    `json:"autofail_conditions"`
}

// Dimension is one scored axis with discrete achievement bands.
type Dimension struct {
	Key   string `json:"key"`
	Title string `json:"title,omitempty"`
	Bands []Band `json:"bands"`
}

type Band struct {
	Level int    `json:"level"`
	Score int    `json:"score"`
	Label string `json:"label,omitempty"`
}

type GradeBand struct {
	MinScore int    `json:"min_score"`
	Label    string `json:"label"`
}

// EvalChoice is the judge's output. It may reference dimensions or levels the
// rubric does not define; scoring tolerates both.
type EvalChoice struct {
	Dimensions        []DimensionChoice `json:"dimensions"`
	AutofailTriggered []string          `json:"autofail_conditions_triggered"`
}

type DimensionChoice struct {
	Key       string `json:"key"`
	Level     int    `json:"level"`
	Rationale string `json:"rationale,omitempty"`
}

type DimensionScore struct {
	Key       string
	Level     int
	Score     int
	Rationale string
}

type EvalResult struct {
	TotalScore        int
	MaxScore          int
	Grade             string
	Breakdown         []DimensionScore
	AutofailTriggered bool
	AutofailReasons   []string
}

// ParseRubric decodes and validates a stored rubric spec.
func ParseRubric(data []byte) (*RubricSpec, error) {
	var spec RubricSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, RubricError{Slug: "?", Reason: "invalid JSON: " + err.Error()}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate rejects malformed rubrics at load time. Only judge output is
// tolerated at scoring time; stored rubrics must be well formed.
func (r *RubricSpec) Validate() error {
	if r.MaxScore <= 0 {
		return RubricError{Slug: r.Slug, Reason: "max_score must be positive"}
	}
	if len(r.Dimensions) == 0 {
		return RubricError{Slug: r.Slug, Reason: "at least one dimension required"}
	}
	for _, d := range r.Dimensions {
		if d.Key == "" {
			return RubricError{Slug: r.Slug, Reason: "dimension with empty key"}
		}
		if len(d.Bands) == 0 {
			return RubricError{Slug: r.Slug, Reason: "dimension " + d.Key + " has no bands"}
		}
		for _, b := range d.Bands {
			if b.Score < 0 {
				return RubricError{Slug: r.Slug, Reason: "dimension " + d.Key + " has a negative band score"}
			}
		}
	}
	if len(r.GradeBands) == 0 {
		return RubricError{Slug: r.Slug, Reason: "at least one grade band required"}
	}
	hasZero := false
	for _, g := range r.GradeBands {
		if g.MinScore < 0 {
			return RubricError{Slug: r.Slug, Reason: "grade band with negative min_score"}
		}
		if g.MinScore == 0 {
			hasZero = true
		}
	}
	if !hasZero {
		return RubricError{Slug: r.Slug, Reason: "grade bands must include a 0-minimum band"}
	}
	return nil
}

// Score grades a judge's choice against a rubric. Judge noise degrades
// instead of erroring: unknown dimension keys are dropped, and a level the
// dimension does not define falls back to its lowest band. The autofail
// override is applied after clamping, so it always wins.
func Score(r *RubricSpec, choice EvalChoice) EvalResult {
	byKey := make(map[string]*Dimension, len(r.Dimensions))
	for i := range r.Dimensions {
		byKey[r.Dimensions[i].Key] = &r.Dimensions[i]
	}

	total := 0
	var breakdown []DimensionScore
	for _, dc := range choice.Dimensions {
		dim, ok := byKey[dc.Key]
		if !ok {
			continue
		}
		band := bandForLevel(dim.Bands, dc.Level)
		total += band.Score
		breakdown = append(breakdown, DimensionScore{
			Key:       dc.Key,
			Level:     band.Level,
			Score:     band.Score,
			Rationale: dc.Rationale,
		})
	}

	if total < 0 {
		total = 0
	}
	if total > r.MaxScore {
		total = r.MaxScore
	}

	reasons := intersectSorted(choice.AutofailTriggered, r.AutofailConditions)
	autofail := len(reasons) > 0
	if autofail {
		total = 0
	}

	return EvalResult{
		TotalScore:        total,
		MaxScore:          r.MaxScore,
		Grade:             r.GradeFor(total),
		Breakdown:         breakdown,
		AutofailTriggered: autofail,
		AutofailReasons:   reasons,
	}
}

// GradeFor picks the grade band with the highest min_score at or under total.
// "F" is the fallback when no band qualifies; Validate guarantees a 0-minimum
// band exists, so the fallback is unreachable for loaded rubrics.
func (r *RubricSpec) GradeFor(total int) string {
	best := ""
	bestMin := -1
	for _, g := range r.GradeBands {
		if g.MinScore <= total && g.MinScore > bestMin {
			best = g.Label
			bestMin = g.MinScore
		}
	}
	if best == "" {
		return "F"
	}
	return best
}

// LetterGrade maps a plain 0-100 quest score to the letter scale used by the
// boss trigger's grade gate. Boss strikes get their grade from the rubric's
// own bands instead.
func LetterGrade(score int) string {
	switch {
	case score >= 95:
		return "S"
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 50:
		return "C"
	default:
		return "F"
	}
}

// bandForLevel finds the band matching level, falling back to the band with
// the lowest level when the judge invents one.
func bandForLevel(bands []Band, level int) Band {
	lowest := bands[0]
	for _, b := range bands {
		if b.Level == level {
			return b
		}
		if b.Level < lowest.Level {
			lowest = b
		}
	}
	return lowest
}

// intersectSorted returns the sorted, de-duplicated intersection of two
// string sets.
func intersectSorted(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range a {
		if inB[s] && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
