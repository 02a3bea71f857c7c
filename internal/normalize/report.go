package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/model"
)

// BackendError is a failure the backend reported about itself, through
// ok:false or a non-2xx status. Detail is surfaced to the user verbatim.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return e.Detail
}

// FromStatusError lifts a non-2xx fetch failure into a BackendError, taking
// the detail from the error payload when it carries one.
func FromStatusError(he *fetcher.HTTPStatusError) *BackendError {
	detail := detailOf(he.Payload.Result())
	if detail == "" {
		detail = he.Error()
	}
	return &BackendError{StatusCode: he.StatusCode, Detail: detail}
}

func detailOf(root gjson.Result) string {
	for _, k := range []string{"detail", "error"} {
		v := root.Get(k)
		if v.Exists() && v.Type != gjson.Null {
			if s := cleanString(coerce(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func backendFailure(root gjson.Result, status int) *BackendError {
	detail := detailOf(root)
	if detail == "" {
		detail = fmt.Sprintf("HTTP %d", status)
	}
	return &BackendError{StatusCode: status, Detail: detail}
}

func failed(root gjson.Result, status int) bool {
	if status != 0 && (status < 200 || status > 299) {
		return true
	}
	ok := root.Get("ok")
	return ok.Exists() && ok.Type == gjson.False
}

// Report extracts a market report. status is the HTTP status the payload
// arrived with; zero means unknown and is treated as success.
func Report(p fetcher.Payload, status int) (*model.Report, error) {
	root := p.Result()
	if failed(root, status) {
		return nil, backendFailure(root, status)
	}

	r := &model.Report{
		Summary: cleanString(coerceOrEmpty(root.Get("summary"))),
	}

	for _, s := range root.Get("sections").Array() {
		title := cleanString(coerceOrEmpty(s.Get("title")))
		r.Sections = append(r.Sections, model.Section{
			Title:    title,
			Content:  cleanString(coerceOrEmpty(s.Get("content"))),
			ChartKey: model.ChartKeyForTitle(title),
		})
	}

	if cd := root.Get("chart_data"); cd.IsObject() {
		r.ChartData = make(map[string]json.RawMessage)
		cd.ForEach(func(k, v gjson.Result) bool {
			r.ChartData[k.String()] = json.RawMessage(v.Raw)
			return true
		})
	}

	for _, z := range root.Get("zone_ids").Array() {
		r.ZoneIDs = append(r.ZoneIDs, coerce(z))
	}

	if zt := root.Get("zone_texts"); zt.IsObject() {
		r.ZoneTexts = make(map[string]string)
		zt.ForEach(func(k, v gjson.Result) bool {
			r.ZoneTexts[k.String()] = cleanString(coerceOrEmpty(v))
			return true
		})
	}

	return r, nil
}

// Chat extracts the assistant reply.
func Chat(p fetcher.Payload, status int) (string, error) {
	root := p.Result()
	if failed(root, status) {
		return "", backendFailure(root, status)
	}
	resp := root.Get("response")
	if !resp.Exists() || resp.Type == gjson.Null {
		if detail := detailOf(root); detail != "" {
			return "", &BackendError{StatusCode: status, Detail: detail}
		}
		return "", nil
	}
	return cleanString(coerce(resp)), nil
}

func coerceOrEmpty(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return coerce(v)
}
