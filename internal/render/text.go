package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/validate"
	"github.com/sells-group/site-advisor/internal/view"
)

// Recommendations writes a recommendation page state.
func Recommendations(w io.Writer, kind model.Kind, st view.State[model.Recommendations], opts Options) error {
	switch opts.Format {
	case FormatJSON, FormatYAML:
		return encode(w, opts.Format, st)
	case FormatXLSX:
		return writeWorkbook(w, recommendationsWorkbook(kind, st.Data))
	}

	writeStatus(w, st.Phase, st.ErrorMessage, st.Notice)
	if len(st.Data) > 0 {
		formatRecommendations(w, kind, st.Data)
	} else if opts.Debug && st.Settled() {
		writeDebug(w, st.DebugPayload)
	}
	return nil
}

// Report writes a report page state.
func Report(w io.Writer, st view.State[*model.Report], opts Options) error {
	switch opts.Format {
	case FormatJSON, FormatYAML:
		return encode(w, opts.Format, st)
	case FormatXLSX:
		return writeWorkbook(w, reportWorkbook(st.Data))
	}

	writeStatus(w, st.Phase, st.ErrorMessage, st.Notice)
	if st.Data.Empty() {
		if opts.Debug && st.Settled() {
			writeDebug(w, st.DebugPayload)
		}
		return nil
	}
	formatReport(w, st.Data)
	return nil
}

// Validation writes a validation result.
func Validation(w io.Writer, r validate.Result, opts Options) error {
	switch opts.Format {
	case FormatJSON, FormatYAML:
		return encode(w, opts.Format, r)
	case FormatXLSX:
		return eris.New("render: xlsx output is not available for validation")
	}

	if r.Valid() {
		_, _ = fmt.Fprintf(w, "valid: route %s\n", r.Route)
		if r.Notice != "" {
			_, _ = fmt.Fprintln(w, r.Notice)
		}
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FIELD\tPROBLEM")
	_, _ = fmt.Fprintln(tw, "-----\t-------")
	for _, p := range r.Problems {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", p.Field, p.Message)
	}
	_ = tw.Flush()
	return nil
}

// Chat writes a conversation transcript.
func Chat(w io.Writer, msgs []model.ChatMessage, opts Options) error {
	switch opts.Format {
	case FormatJSON, FormatYAML:
		return encode(w, opts.Format, msgs)
	case FormatXLSX:
		return writeWorkbook(w, chatWorkbook(msgs))
	}
	for _, m := range msgs {
		_, _ = fmt.Fprintf(w, "[%s] %s\n", m.Role, m.Content)
	}
	return nil
}

func writeStatus(w io.Writer, phase view.Phase, errMsg, notice string) {
	switch phase {
	case view.PhaseLoading:
		_, _ = fmt.Fprintln(w, "loading...")
	case view.PhaseError:
		_, _ = fmt.Fprintf(w, "error: %s\n", errMsg)
	}
	if notice != "" {
		_, _ = fmt.Fprintln(w, notice)
	}
}

func labelHeader(kind model.Kind) string {
	if kind == model.KindIndustry {
		return "CATEGORY"
	}
	return "DISTRICT"
}

func formatScore(s *float64) string {
	if s == nil {
		return "-"
	}
	return strconv.FormatFloat(*s, 'f', -1, 64)
}

func formatRecommendations(out io.Writer, kind model.Kind, items model.Recommendations) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if kind == model.KindIndustry {
		_, _ = fmt.Fprintln(w, "#\tGROUP\tCATEGORY\tSCORE\tREASON")
		_, _ = fmt.Fprintln(w, "-\t-----\t--------\t-----\t------")
		for i, it := range items {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, it.Group, it.Label, formatScore(it.Score), it.Reason)
		}
	} else {
		_, _ = fmt.Fprintf(w, "#\t%s\tSCORE\tREASON\n", labelHeader(kind))
		_, _ = fmt.Fprintln(w, "-\t--------\t-----\t------")
		for i, it := range items {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, it.Label, formatScore(it.Score), it.Reason)
		}
	}
	_ = w.Flush()
}

func formatReport(out io.Writer, r *model.Report) {
	if r.Summary != "" {
		_, _ = fmt.Fprintf(out, "%s\n\n", r.Summary)
	}
	for _, s := range r.Sections {
		_, _ = fmt.Fprintf(out, "## %s\n%s\n", s.Title, s.Content)
		if s.ChartKey != "" {
			if series, ok := r.Series(s.ChartKey); ok {
				formatSeries(out, series)
			}
		}
		_, _ = fmt.Fprintln(out)
	}

	zones := append([]string(nil), r.ZoneIDs...)
	if len(zones) == 0 {
		for id := range r.ZoneTexts {
			zones = append(zones, id)
		}
		sort.Strings(zones)
	}
	for _, id := range zones {
		text, ok := r.ZoneTexts[id]
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(out, "[%s] %s\n", r.ZoneName(id), text)
	}
}

func formatSeries(out io.Writer, s model.Series) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, label := range s.Labels {
		switch {
		case s.Values != nil:
			_, _ = fmt.Fprintf(w, "  %s\t%s\n", label, at(s.Values, i))
		case s.Open != nil || s.Close != nil:
			_, _ = fmt.Fprintf(w, "  %s\topen %s\tclose %s\n", label, at(s.Open, i), at(s.Close, i))
		}
	}
	_ = w.Flush()
}

func at(vs []float64, i int) string {
	if i >= len(vs) {
		return "-"
	}
	return strconv.FormatFloat(vs[i], 'f', -1, 64)
}

func writeDebug(w io.Writer, p fetcher.Payload) {
	if len(p) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, p, "", "  "); err != nil {
		buf.Reset()
		buf.Write(p)
	}
	_, _ = fmt.Fprintf(w, "raw payload:\n%s\n", buf.String())
}
