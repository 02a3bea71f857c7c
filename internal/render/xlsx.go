package render

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/site-advisor/internal/model"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

type sheetData struct {
	name string
	rows [][]any
}

func writeWorkbook(w io.Writer, sheets []sheetData) error {
	f := xlsx.NewFile()
	for _, sd := range sheets {
		name := sd.name
		if len([]rune(name)) > maxSheetName {
			name = string([]rune(name)[:maxSheetName])
		}
		sheet, err := f.AddSheet(name)
		if err != nil {
			return eris.Wrapf(err, "render: add sheet %s", name)
		}
		for _, values := range sd.rows {
			row := sheet.AddRow()
			for _, v := range values {
				cell := row.AddCell()
				switch x := v.(type) {
				case float64:
					cell.SetFloat(x)
				case int:
					cell.SetInt(x)
				case *float64:
					if x != nil {
						cell.SetFloat(*x)
					}
				case string:
					cell.SetString(x)
				}
			}
		}
	}
	return eris.Wrap(f.Write(w), "render: write workbook")
}

func recommendationsWorkbook(kind model.Kind, items model.Recommendations) []sheetData {
	sd := sheetData{name: "recommend_" + string(kind)}
	if kind == model.KindIndustry {
		sd.rows = append(sd.rows, []any{"rank", "group", "category", "score", "reason"})
		for i, it := range items {
			sd.rows = append(sd.rows, []any{i + 1, it.Group, it.Label, it.Score, it.Reason})
		}
	} else {
		sd.rows = append(sd.rows, []any{"rank", "district", "score", "reason"})
		for i, it := range items {
			sd.rows = append(sd.rows, []any{i + 1, it.Label, it.Score, it.Reason})
		}
	}
	return []sheetData{sd}
}

func reportWorkbook(r *model.Report) []sheetData {
	summary := sheetData{name: "report", rows: [][]any{{"title", "content", "chart"}}}
	if r == nil {
		return []sheetData{summary}
	}
	summary.rows = append(summary.rows, []any{"summary", r.Summary, ""})
	for _, s := range r.Sections {
		summary.rows = append(summary.rows, []any{s.Title, s.Content, s.ChartKey})
	}
	sheets := []sheetData{summary}

	for _, key := range []string{model.ChartStoreYearly, model.ChartOpenClose, model.ChartSurvival, model.ChartOperatingPeriod, model.ChartRent, model.ChartFloating} {
		s, ok := r.Series(key)
		if !ok {
			continue
		}
		sheets = append(sheets, seriesSheet(key, s))
	}

	for _, zone := range r.ZoneIDs {
		for _, key := range model.ZoneSalesKeys {
			s, ok := r.ZoneSeries(zone, key)
			if !ok {
				continue
			}
			sheets = append(sheets, seriesSheet(zone+"_"+key, s))
		}
	}

	if len(r.ZoneTexts) > 0 {
		zt := sheetData{name: "zones", rows: [][]any{{"zone", "name", "text"}}}
		for _, zone := range r.ZoneIDs {
			if text, ok := r.ZoneTexts[zone]; ok {
				zt.rows = append(zt.rows, []any{zone, r.ZoneName(zone), text})
			}
		}
		sheets = append(sheets, zt)
	}
	return sheets
}

func seriesSheet(name string, s model.Series) sheetData {
	sd := sheetData{name: name}
	if s.Values != nil {
		sd.rows = append(sd.rows, []any{"label", "value"})
		for i, l := range s.Labels {
			sd.rows = append(sd.rows, []any{l, valueAt(s.Values, i)})
		}
		return sd
	}
	sd.rows = append(sd.rows, []any{"label", "open", "close"})
	for i, l := range s.Labels {
		sd.rows = append(sd.rows, []any{l, valueAt(s.Open, i), valueAt(s.Close, i)})
	}
	return sd
}

func valueAt(vs []float64, i int) *float64 {
	if i >= len(vs) {
		return nil
	}
	return &vs[i]
}

func chatWorkbook(msgs []model.ChatMessage) []sheetData {
	sd := sheetData{name: "chat", rows: [][]any{{"role", "content"}}}
	for _, m := range msgs {
		sd.rows = append(sd.rows, []any{m.Role, m.Content})
	}
	return []sheetData{sd}
}
