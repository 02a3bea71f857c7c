package model

// Kind distinguishes the two recommendation endpoints.
type Kind string

const (
	// KindArea ranks districts for a business category.
	KindArea Kind = "area"
	// KindIndustry ranks business categories for a district.
	KindIndustry Kind = "industry"
)

// RecommendationItem is one normalized entry of a recommendation list.
// Label and Reason are always strings; Score is nil when the backend sent no
// finite number.
type RecommendationItem struct {
	Label  string   `json:"label" yaml:"label"`
	Group  string   `json:"group,omitempty" yaml:"group,omitempty"`
	Reason string   `json:"reason" yaml:"reason"`
	Score  *float64 `json:"score" yaml:"score"`
}

// HasScore reports whether a numeric score is present.
func (r RecommendationItem) HasScore() bool {
	return r.Score != nil
}

// ScoreOrZero returns the score, or 0 when absent.
func (r RecommendationItem) ScoreOrZero() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// Recommendations is an ordered recommendation list. Order is the backend's.
type Recommendations []RecommendationItem

// Empty reports whether the list has no entries.
func (r Recommendations) Empty() bool {
	return len(r) == 0
}
