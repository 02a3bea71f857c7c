package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/validate"
	"github.com/sells-group/site-advisor/internal/view"
)

func score(f float64) *float64 { return &f }

func areaState() view.State[model.Recommendations] {
	return view.State[model.Recommendations]{
		Phase: view.PhaseSuccess,
		Data: model.Recommendations{
			{Label: "강남구 역삼동", Reason: "직장인 유동인구", Score: score(0.82)},
			{Label: "강남구 삼성동", Reason: "임대료 적정"},
		},
		HasData:    true,
		Generation: 1,
	}
}

func sampleReport(t *testing.T) *model.Report {
	t.Helper()
	var chart map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`{
		"survival": {"labels": ["1년","3년","5년"], "values": [80, 60, 45]},
		"open_close": {"labels": [2023], "open": [10], "close": [7]},
		"sales": {"3110": {"sales_by_day": {"labels": ["월"], "values": [100]}}},
		"zone_names": {"3110": "역삼역"}
	}`), &chart))
	return &model.Report{
		Summary: "역삼동 카페 상권 요약",
		Sections: []model.Section{
			{Title: "2. 생존율", Content: "생존율이 높습니다.", ChartKey: model.ChartSurvival},
			{Title: "👉 종합 평가", Content: "추천"},
		},
		ChartData: chart,
		ZoneIDs:   []string{"3110"},
		ZoneTexts: map[string]string{"3110": "직장인 점심 수요"},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, " yaml ": FormatYAML, "xlsx": FormatXLSX} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
	assert.True(t, FormatXLSX.Binary())
	assert.False(t, FormatJSON.Binary())
}

func TestRecommendations_Text(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Recommendations(&buf, model.KindArea, areaState(), Options{Format: FormatText}))

	out := buf.String()
	assert.Contains(t, out, "DISTRICT")
	assert.Contains(t, out, "강남구 역삼동")
	assert.Contains(t, out, "0.82")
	assert.Contains(t, out, "-")
}

func TestRecommendations_TextIndustry(t *testing.T) {
	t.Parallel()
	st := view.State[model.Recommendations]{
		Phase: view.PhaseSuccess,
		Data:  model.Recommendations{{Label: "카페", Group: "음식", Reason: "수요", Score: score(3)}},
	}
	var buf bytes.Buffer
	require.NoError(t, Recommendations(&buf, model.KindIndustry, st, Options{}))
	assert.Contains(t, buf.String(), "GROUP")
	assert.Contains(t, buf.String(), "음식")
}

func TestRecommendations_EmptyWithDebug(t *testing.T) {
	t.Parallel()
	st := view.State[model.Recommendations]{
		Phase:        view.PhaseSuccess,
		Data:         model.Recommendations{},
		Notice:       view.NoResultsNotice,
		DebugPayload: fetcher.Payload(`{"unexpected":{"shape":1}}`),
	}

	var plain bytes.Buffer
	require.NoError(t, Recommendations(&plain, model.KindArea, st, Options{}))
	assert.Contains(t, plain.String(), view.NoResultsNotice)
	assert.NotContains(t, plain.String(), "raw payload")

	var debug bytes.Buffer
	require.NoError(t, Recommendations(&debug, model.KindArea, st, Options{Debug: true}))
	assert.Contains(t, debug.String(), "raw payload")
	assert.Contains(t, debug.String(), `"unexpected"`)
}

func TestRecommendations_ErrorAndLoading(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	st := areaState()
	st.Phase = view.PhaseError
	st.ErrorMessage = "HTTP 503 Service Unavailable bad gateway"
	require.NoError(t, Recommendations(&buf, model.KindArea, st, Options{}))
	assert.Contains(t, buf.String(), "error: HTTP 503")
	assert.Contains(t, buf.String(), "강남구 역삼동", "previous data still shown")

	buf.Reset()
	require.NoError(t, Recommendations(&buf, model.KindArea, view.State[model.Recommendations]{Phase: view.PhaseLoading}, Options{}))
	assert.Equal(t, "loading...\n", buf.String())
}

func TestRecommendations_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Recommendations(&buf, model.KindArea, areaState(), Options{Format: FormatJSON}))

	var got struct {
		Phase string `json:"phase"`
		Data  []struct {
			Label string   `json:"label"`
			Score *float64 `json:"score"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "success", got.Phase)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "강남구 역삼동", got.Data[0].Label)
	assert.Nil(t, got.Data[1].Score)
}

func TestRecommendations_YAML(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Recommendations(&buf, model.KindArea, areaState(), Options{Format: FormatYAML}))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "success", got["phase"])
	assert.Len(t, got["data"], 2)
}

func TestRecommendations_XLSX(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Recommendations(&buf, model.KindArea, areaState(), Options{Format: FormatXLSX}))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "recommend_area", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "district", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "강남구 역삼동", sheet.Rows[1].Cells[1].String())
}

func TestReport_Text(t *testing.T) {
	t.Parallel()
	st := view.State[*model.Report]{Phase: view.PhaseSuccess, Data: sampleReport(t), HasData: true}

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, st, Options{}))
	out := buf.String()
	assert.Contains(t, out, "역삼동 카페 상권 요약")
	assert.Contains(t, out, "## 2. 생존율")
	assert.Contains(t, out, "5년")
	assert.Contains(t, out, "[역삼역] 직장인 점심 수요")
}

func TestReport_XLSX(t *testing.T) {
	t.Parallel()
	st := view.State[*model.Report]{Phase: view.PhaseSuccess, Data: sampleReport(t)}

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, st, Options{Format: FormatXLSX}))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	names := make([]string, 0, len(f.Sheets))
	for _, s := range f.Sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"report", "open_close", "survival", "3110_sales_by_day", "zones"}, names)
}

func TestReport_JSONKeepsChartData(t *testing.T) {
	t.Parallel()
	st := view.State[*model.Report]{Phase: view.PhaseSuccess, Data: sampleReport(t)}

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, st, Options{Format: FormatJSON}))
	assert.Contains(t, buf.String(), `"chart_data"`)
	assert.Contains(t, buf.String(), `"survival"`)
}

func TestValidation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Validation(&buf, validate.OwnerForm(validate.HomeForm{}), Options{}))
	assert.Contains(t, buf.String(), "FIELD")
	assert.Contains(t, buf.String(), "monthly_sales")

	buf.Reset()
	r := validate.Result{Route: validate.RouteRecommendArea, Notice: validate.NoticeTooBroad}
	require.NoError(t, Validation(&buf, r, Options{}))
	assert.Contains(t, buf.String(), "valid: route recommend-area")

	assert.Error(t, Validation(&buf, r, Options{Format: FormatXLSX}))
}

func TestChat(t *testing.T) {
	t.Parallel()
	msgs := []model.ChatMessage{{Role: model.RoleBot, Content: model.Greeting}, {Role: model.RoleUser, Content: "안녕"}}

	var buf bytes.Buffer
	require.NoError(t, Chat(&buf, msgs, Options{}))
	assert.Equal(t, "[bot] "+model.Greeting+"\n[user] 안녕\n", buf.String())

	buf.Reset()
	require.NoError(t, Chat(&buf, msgs, Options{Format: FormatXLSX}))
	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheets[0].Rows, 3)
}
