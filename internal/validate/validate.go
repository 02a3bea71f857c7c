// Package validate checks user input before any request is issued and
// decides which page a completed home form leads to.
package validate

import (
	"regexp"
	"strings"

	"github.com/sells-group/site-advisor/internal/model"
)

// Route names the page a valid form leads to.
type Route string

const (
	RouteNone              Route = ""
	RouteReport            Route = "report"
	RouteRecommendArea     Route = "recommend-area"
	RouteRecommendIndustry Route = "recommend-industry"
)

// Problem is one failed check.
type Problem struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Result holds the problems found and, when valid, the route to take.
type Result struct {
	Problems []Problem `json:"problems,omitempty" yaml:"problems,omitempty"`
	Route    Route     `json:"route,omitempty" yaml:"route,omitempty"`
	// Notice is shown alongside a valid result, e.g. a redirect explanation.
	Notice string `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// Valid reports whether no problems were found.
func (r Result) Valid() bool {
	return len(r.Problems) == 0
}

// Err returns nil for a valid result, otherwise an *Error.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &Error{Problems: r.Problems}
}

func (r *Result) require(ok bool, field, message string) {
	if !ok {
		r.Problems = append(r.Problems, Problem{Field: field, Message: message})
	}
}

// Error lists failed checks. Its message is the first problem's.
type Error struct {
	Problems []Problem
}

func (e *Error) Error() string {
	if len(e.Problems) == 0 {
		return "invalid input"
	}
	return e.Problems[0].Message
}

// Fields returns the names of the failing fields in check order.
func (e *Error) Fields() []string {
	out := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		out = append(out, p.Field)
	}
	return out
}

// Messages shown to the user.
const (
	MsgGuRequired            = "자치구를 선택해주세요!"
	MsgCategoryRequired      = "업종을 선택해주세요!"
	MsgRegionRequired        = "지역을 선택해주세요!"
	MsgCategoryLargeRequired = "대분류 업종을 선택해주세요!"
	MsgCategorySmallRequired = "소분류 업종을 선택해주세요!"
	MsgMonthlySalesRequired  = "월 평균 매출을 입력해주세요!"
	MsgPurposeRequired       = "이용 목적을 선택해주세요!"
	MsgDistrictRequired      = "지역을 선택해주세요!"
	MsgDistrictFirst         = "지역을 먼저 선택해주세요!"
	MsgDongRequired          = "AI 업종 추천은 세부 동 단위 지역을 선택한 경우에만 이용할 수 있어요."
	NoticeTooBroad           = "선택한 지역이 너무 넓어 지역 추천 페이지로 이동합니다."
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// AreaQuery requires a district and a category.
func AreaQuery(q model.AreaQuery) Result {
	var r Result
	r.require(!blank(q.GuName), "gu_name", MsgGuRequired)
	r.require(!blank(q.CategorySmall) || !blank(q.Industry), "category_small", MsgCategoryRequired)
	if r.Valid() {
		r.Route = RouteRecommendArea
	}
	return r
}

// IndustryQuery requires a district and a region.
func IndustryQuery(q model.IndustryQuery) Result {
	var r Result
	r.require(!blank(q.GuName), "gu_name", MsgGuRequired)
	r.require(!blank(q.Region) || !blank(q.District), "region", MsgRegionRequired)
	if r.Valid() {
		r.Route = RouteRecommendIndustry
	}
	return r
}

// ReportQuery requires every field the report is computed from.
func ReportQuery(q model.ReportQuery) Result {
	var r Result
	r.require(!blank(q.GuName), "gu_name", MsgGuRequired)
	r.require(!blank(q.Region), "region", MsgRegionRequired)
	r.require(!blank(q.CategoryLarge), "category_large", MsgCategoryLargeRequired)
	r.require(!blank(q.CategorySmall), "category_small", MsgCategorySmallRequired)
	if r.Valid() {
		r.Route = RouteReport
	}
	return r
}

var dongPattern = regexp.MustCompile(`^(.+구)\s(.+동)$`)

// SplitDistrict splits a "<gu>구 <dong>동" label. dongLevel is false for any
// broader label, in which case gu is the whole trimmed label.
func SplitDistrict(label string) (gu, dong string, dongLevel bool) {
	label = strings.TrimSpace(label)
	m := dongPattern.FindStringSubmatch(label)
	if m == nil {
		return label, "", false
	}
	return m[1], m[2], true
}

// District is a selected district option: a display label and its code.
type District struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

func (d District) selected() bool {
	return !blank(d.Label) && !blank(d.Value)
}

// HomeForm is the input of the home page.
type HomeForm struct {
	CategoryLarge string
	CategorySmall string
	MonthlySales  float64
	Purpose       string
	District      District
}

// OwnerForm checks the form of a current business owner. A dong-level
// district leads to the report, anything broader to area recommendations.
func OwnerForm(f HomeForm) Result {
	var r Result
	r.require(!blank(f.CategoryLarge), "category_large", MsgCategoryLargeRequired)
	r.require(!blank(f.CategorySmall), "category_small", MsgCategorySmallRequired)
	r.require(f.MonthlySales > 0, "monthly_sales", MsgMonthlySalesRequired)
	r.require(!blank(f.Purpose), "purpose", MsgPurposeRequired)
	r.require(f.District.selected(), "district", MsgDistrictRequired)
	if r.Valid() {
		routeByDistrict(&r, f.District.Label)
	}
	return r
}

// PreOwnerForm checks the form of a prospective owner. Only the categories
// are required; without a dong-level district it leads to area
// recommendations.
func PreOwnerForm(f HomeForm) Result {
	var r Result
	r.require(!blank(f.CategoryLarge), "category_large", MsgCategoryLargeRequired)
	r.require(!blank(f.CategorySmall), "category_small", MsgCategorySmallRequired)
	if r.Valid() {
		routeByDistrict(&r, f.District.Label)
	}
	return r
}

// IndustryLookup checks the request for industry recommendations, which is
// only offered for a dong-level district.
func IndustryLookup(d District) Result {
	var r Result
	r.require(d.selected(), "district", MsgDistrictFirst)
	if !r.Valid() {
		return r
	}
	r.require(strings.HasSuffix(strings.TrimSpace(d.Label), "동"), "district", MsgDongRequired)
	if r.Valid() {
		r.Route = RouteRecommendIndustry
	}
	return r
}

func routeByDistrict(r *Result, label string) {
	if _, _, dong := SplitDistrict(label); dong {
		r.Route = RouteReport
		return
	}
	r.Route = RouteRecommendArea
	r.Notice = NoticeTooBroad
}
