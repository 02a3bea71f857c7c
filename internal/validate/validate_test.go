package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-advisor/internal/model"
)

func TestSplitDistrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label     string
		gu, dong  string
		dongLevel bool
	}{
		{"강남구 역삼동", "강남구", "역삼동", true},
		{" 강남구 역삼1동 ", "강남구", "역삼1동", true},
		{"강남구", "강남구", "", false},
		{"서울특별시", "서울특별시", "", false},
		{"역삼동", "역삼동", "", false},
		{"강남구역삼동", "강남구역삼동", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		gu, dong, ok := SplitDistrict(tt.label)
		assert.Equal(t, tt.gu, gu, tt.label)
		assert.Equal(t, tt.dong, dong, tt.label)
		assert.Equal(t, tt.dongLevel, ok, tt.label)
	}
}

func TestAreaQuery(t *testing.T) {
	t.Parallel()

	r := AreaQuery(model.AreaQuery{GuName: "강남구", CategorySmall: "카페"})
	assert.True(t, r.Valid())
	assert.NoError(t, r.Err())
	assert.Equal(t, RouteRecommendArea, r.Route)

	r = AreaQuery(model.AreaQuery{GuName: " "})
	require.False(t, r.Valid())
	var verr *Error
	require.True(t, errors.As(r.Err(), &verr))
	assert.Equal(t, []string{"gu_name", "category_small"}, verr.Fields())
	assert.Equal(t, MsgGuRequired, r.Err().Error())

	assert.True(t, AreaQuery(model.AreaQuery{GuName: "강남구", Industry: "카페"}).Valid())
}

func TestIndustryQuery(t *testing.T) {
	t.Parallel()
	assert.True(t, IndustryQuery(model.IndustryQuery{GuName: "강남구", Region: "역삼동"}).Valid())
	assert.True(t, IndustryQuery(model.IndustryQuery{GuName: "강남구", District: "역삼동"}).Valid())

	r := IndustryQuery(model.IndustryQuery{Region: "역삼동"})
	require.Len(t, r.Problems, 1)
	assert.Equal(t, "gu_name", r.Problems[0].Field)
}

func TestReportQuery(t *testing.T) {
	t.Parallel()
	q := model.ReportQuery{Role: model.RoleOwner, GuName: "강남구", Region: "역삼동", CategoryLarge: "음식", CategorySmall: "카페"}
	r := ReportQuery(q)
	assert.True(t, r.Valid())
	assert.Equal(t, RouteReport, r.Route)

	r = ReportQuery(model.ReportQuery{})
	assert.Len(t, r.Problems, 4)
	assert.Equal(t, RouteNone, r.Route)
}

func validOwner() HomeForm {
	return HomeForm{
		CategoryLarge: "음식",
		CategorySmall: "카페",
		MonthlySales:  1200,
		Purpose:       "확장",
		District:      District{Label: "강남구 역삼동", Value: "1168064000"},
	}
}

func TestOwnerForm(t *testing.T) {
	t.Parallel()

	r := OwnerForm(validOwner())
	require.True(t, r.Valid())
	assert.Equal(t, RouteReport, r.Route)
	assert.Empty(t, r.Notice)

	broad := validOwner()
	broad.District = District{Label: "강남구", Value: "11680"}
	r = OwnerForm(broad)
	require.True(t, r.Valid())
	assert.Equal(t, RouteRecommendArea, r.Route)
	assert.Equal(t, NoticeTooBroad, r.Notice)
}

func TestOwnerForm_Problems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*HomeForm)
		field  string
	}{
		{"no large category", func(f *HomeForm) { f.CategoryLarge = "" }, "category_large"},
		{"no small category", func(f *HomeForm) { f.CategorySmall = "" }, "category_small"},
		{"zero sales", func(f *HomeForm) { f.MonthlySales = 0 }, "monthly_sales"},
		{"negative sales", func(f *HomeForm) { f.MonthlySales = -5 }, "monthly_sales"},
		{"no purpose", func(f *HomeForm) { f.Purpose = "" }, "purpose"},
		{"district without value", func(f *HomeForm) { f.District.Value = "" }, "district"},
		{"district without label", func(f *HomeForm) { f.District.Label = "" }, "district"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := validOwner()
			tt.mutate(&f)
			r := OwnerForm(f)
			require.Len(t, r.Problems, 1)
			assert.Equal(t, tt.field, r.Problems[0].Field)
			assert.Equal(t, RouteNone, r.Route)
		})
	}
}

func TestPreOwnerForm(t *testing.T) {
	t.Parallel()

	r := PreOwnerForm(HomeForm{CategoryLarge: "음식", CategorySmall: "카페"})
	require.True(t, r.Valid())
	assert.Equal(t, RouteRecommendArea, r.Route)

	r = PreOwnerForm(HomeForm{CategoryLarge: "음식", CategorySmall: "카페", District: District{Label: "마포구 서교동"}})
	assert.Equal(t, RouteReport, r.Route)

	r = PreOwnerForm(HomeForm{CategoryLarge: "음식"})
	assert.False(t, r.Valid())
}

func TestIndustryLookup(t *testing.T) {
	t.Parallel()

	r := IndustryLookup(District{Label: "강남구 역삼동", Value: "1"})
	require.True(t, r.Valid())
	assert.Equal(t, RouteRecommendIndustry, r.Route)

	r = IndustryLookup(District{})
	assert.Equal(t, MsgDistrictFirst, r.Err().Error())

	r = IndustryLookup(District{Label: "강남구", Value: "11680"})
	assert.Equal(t, MsgDongRequired, r.Err().Error())
}

func TestError_EmptyProblems(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "invalid input", (&Error{}).Error())
}
