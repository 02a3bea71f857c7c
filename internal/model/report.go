package model

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Chart keys of the report-level series.
const (
	ChartStoreYearly     = "store_yearly"
	ChartSurvival        = "survival"
	ChartRent            = "rent"
	ChartOpenClose       = "open_close"
	ChartOperatingPeriod = "operating_period"
	ChartFloating        = "floating"
	ChartSales           = "sales"
	ChartZoneNames       = "zone_names"
)

// Per-zone sales series under chart_data.sales.<zone id>.
var ZoneSalesKeys = []string{
	"sales_by_day",
	"sales_by_hour",
	"sales_by_gender",
	"sales_by_age_group",
	"weekday_vs_weekend",
	"avg_price_per_order",
}

var titleCharts = []struct {
	fragment string
	key      string
}{
	{"상권 변화", ChartStoreYearly},
	{"생존율", ChartSurvival},
	{"임대료", ChartRent},
	{"개폐업", ChartOpenClose},
}

// ChartKeyForTitle maps a section title to the chart drawn beside it, or ""
// when the section has no chart.
func ChartKeyForTitle(title string) string {
	for _, tc := range titleCharts {
		if strings.Contains(title, tc.fragment) {
			return tc.key
		}
	}
	return ""
}

// Section is one titled block of report prose.
type Section struct {
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content" yaml:"content"`
	ChartKey string `json:"chart_key,omitempty" yaml:"chart_key,omitempty"`
}

// Report is a market report for a district and category.
type Report struct {
	Summary   string                     `json:"summary" yaml:"summary"`
	Sections  []Section                  `json:"sections" yaml:"sections"`
	ChartData map[string]json.RawMessage `json:"chart_data,omitempty" yaml:"-"`
	ZoneIDs   []string                   `json:"zone_ids,omitempty" yaml:"zone_ids,omitempty"`
	ZoneTexts map[string]string          `json:"zone_texts,omitempty" yaml:"zone_texts,omitempty"`
}

// Empty reports whether the report carries no content at all.
func (r *Report) Empty() bool {
	return r == nil || (r.Summary == "" && len(r.Sections) == 0 && len(r.ZoneTexts) == 0)
}

// Series is a labelled numeric chart series. Open and Close are only set by
// the open/close chart.
type Series struct {
	Labels []string  `json:"labels" yaml:"labels"`
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Open   []float64 `json:"open,omitempty" yaml:"open,omitempty"`
	Close  []float64 `json:"close,omitempty" yaml:"close,omitempty"`
}

// Series decodes the report-level chart under key.
func (r *Report) Series(key string) (Series, bool) {
	if r == nil {
		return Series{}, false
	}
	raw, ok := r.ChartData[key]
	if !ok {
		return Series{}, false
	}
	return decodeSeries(gjson.ParseBytes(raw))
}

// ZoneSeries decodes a per-zone sales chart.
func (r *Report) ZoneSeries(zoneID, key string) (Series, bool) {
	if r == nil {
		return Series{}, false
	}
	raw, ok := r.ChartData[ChartSales]
	if !ok {
		return Series{}, false
	}
	zone := gjson.GetBytes(raw, gjson.Escape(zoneID))
	if !zone.IsObject() {
		return Series{}, false
	}
	return decodeSeries(zone.Get(key))
}

// ZoneName returns the display name of a zone, falling back to its id.
func (r *Report) ZoneName(zoneID string) string {
	if r != nil {
		if raw, ok := r.ChartData[ChartZoneNames]; ok {
			if name := gjson.GetBytes(raw, gjson.Escape(zoneID)); name.Exists() && name.String() != "" {
				return name.String()
			}
		}
	}
	return zoneID
}

func decodeSeries(v gjson.Result) (Series, bool) {
	if !v.IsObject() {
		return Series{}, false
	}
	s := Series{}
	for _, l := range v.Get("labels").Array() {
		s.Labels = append(s.Labels, l.String())
	}
	s.Values = floats(v.Get("values"))
	s.Open = floats(v.Get("open"))
	s.Close = floats(v.Get("close"))
	return s, true
}

func floats(v gjson.Result) []float64 {
	if !v.IsArray() {
		return nil
	}
	arr := v.Array()
	out := make([]float64, 0, len(arr))
	for _, x := range arr {
		out = append(out, x.Float())
	}
	return out
}
