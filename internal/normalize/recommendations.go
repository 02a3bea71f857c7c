// Package normalize maps the backend's varying payload shapes onto the
// canonical records in internal/model.
package normalize

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/model"
)

// Recommendations extracts the recommendation list of kind from p. key is the
// query's grouping value (category for area, region for industry) used when
// the backend returns a keyed mapping. A payload with no usable array yields
// an empty, non-nil list.
func Recommendations(p fetcher.Payload, kind model.Kind, key string) model.Recommendations {
	arr := selectArray(p.Result(), key)
	t := tables[kind]

	items := make(model.Recommendations, 0, len(arr))
	for _, raw := range arr {
		items = append(items, model.RecommendationItem{
			Label:  firstString(raw, t.label),
			Group:  firstString(raw, t.group),
			Reason: firstString(raw, t.reason),
			Score:  firstScore(raw, t.score),
		})
	}
	return items
}

func selectArray(root gjson.Result, key string) []gjson.Result {
	recs := root.Get("recommendations")
	switch {
	case recs.IsArray():
		return recs.Array()
	case recs.IsObject():
		return keyedArray(recs, key)
	case root.IsObject():
		return keyedArray(root, key)
	}
	return nil
}

// keyedArray returns the array under key. With no key, it falls back to the
// first member (document order) holding an array.
func keyedArray(obj gjson.Result, key string) []gjson.Result {
	if key != "" {
		v := obj.Get(gjson.Escape(key))
		if v.IsArray() {
			return v.Array()
		}
		return nil
	}
	var out []gjson.Result
	obj.ForEach(func(_, v gjson.Result) bool {
		if v.IsArray() {
			out = v.Array()
			return false
		}
		return true
	})
	return out
}

func firstString(item gjson.Result, keys []string) string {
	if !item.IsObject() {
		return ""
	}
	for _, k := range keys {
		v := item.Get(gjson.Escape(k))
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		return cleanString(coerce(v))
	}
	return ""
}

func coerce(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw
	default:
		// Objects and arrays keep their compact JSON form.
		return compact(v.Raw)
	}
}

func compact(raw string) string {
	var b strings.Builder
	inString, escaped := false, false
	for _, r := range raw {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		case !inString && (r == ' ' || r == '\n' || r == '\r' || r == '\t'):
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// cleanString strips carriage returns, trims, and NFC-normalizes s.
func cleanString(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSpace(s)
	return norm.NFC.String(s)
}

func firstScore(item gjson.Result, keys []string) *float64 {
	if !item.IsObject() {
		return nil
	}
	for _, k := range keys {
		v := item.Get(gjson.Escape(k))
		if v.Type != gjson.Number {
			continue
		}
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		return &f
	}
	return nil
}
