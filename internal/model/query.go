package model

// User roles on the home form.
const (
	RoleOwner    = "owner"
	RolePreOwner = "pre-owner"
)

// AreaQuery asks which districts suit a business category.
type AreaQuery struct {
	GuName        string `json:"gu_name"`
	CategorySmall string `json:"category_small"`
	// Industry is an alternative spelling of the category some backends read.
	Industry string `json:"industry,omitempty"`
}

// GroupKey is the sub-list key used when the response is grouped.
func (q AreaQuery) GroupKey() string {
	if q.CategorySmall != "" {
		return q.CategorySmall
	}
	return q.Industry
}

// IndustryQuery asks which business categories suit a district.
type IndustryQuery struct {
	GuName string `json:"gu_name"`
	Region string `json:"region"`
	// District mirrors Region; the backend route reads this key.
	District string `json:"district,omitempty"`
}

// WithDistrict fills District from Region when unset.
func (q IndustryQuery) WithDistrict() IndustryQuery {
	if q.District == "" {
		q.District = q.Region
	}
	return q
}

// GroupKey is the sub-list key used when the response is grouped.
func (q IndustryQuery) GroupKey() string {
	return q.Region
}

// ReportQuery requests a market report.
type ReportQuery struct {
	Role          string `json:"role"`
	GuName        string `json:"gu_name"`
	Region        string `json:"region"`
	CategoryLarge string `json:"category_large"`
	CategorySmall string `json:"category_small"`
	Purpose       string `json:"purpose"`
}
