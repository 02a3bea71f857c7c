package advisor

import (
	"context"

	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/validate"
	"github.com/sells-group/site-advisor/internal/view"
)

// AreaPage shows district recommendations for a category.
type AreaPage = view.Controller[model.AreaQuery, model.Recommendations]

// IndustryPage shows category recommendations for a district.
type IndustryPage = view.Controller[model.IndustryQuery, model.Recommendations]

// ReportPage shows a market report.
type ReportPage = view.Controller[model.ReportQuery, *model.Report]

// NewAreaPage creates an idle area recommendation page. Each page owns its
// own session tracker.
func NewAreaPage(ctx context.Context, c *Client) *AreaPage {
	return view.NewController(ctx, "recommend_area",
		func(ctx context.Context, q model.AreaQuery) (view.Outcome[model.Recommendations], error) {
			rec, err := c.RecommendArea(ctx, q)
			if err != nil {
				return view.Outcome[model.Recommendations]{}, err
			}
			return view.Outcome[model.Recommendations]{Data: rec.Items, Empty: rec.Items.Empty(), Payload: rec.Payload}, nil
		},
		func(q model.AreaQuery) error { return validate.AreaQuery(q).Err() },
	)
}

// NewIndustryPage creates an idle industry recommendation page.
func NewIndustryPage(ctx context.Context, c *Client) *IndustryPage {
	return view.NewController(ctx, "recommend_industry",
		func(ctx context.Context, q model.IndustryQuery) (view.Outcome[model.Recommendations], error) {
			rec, err := c.RecommendIndustry(ctx, q)
			if err != nil {
				return view.Outcome[model.Recommendations]{}, err
			}
			return view.Outcome[model.Recommendations]{Data: rec.Items, Empty: rec.Items.Empty(), Payload: rec.Payload}, nil
		},
		func(q model.IndustryQuery) error { return validate.IndustryQuery(q).Err() },
	)
}

// NewReportPage creates an idle report page.
func NewReportPage(ctx context.Context, c *Client) *ReportPage {
	return view.NewController(ctx, "report",
		func(ctx context.Context, q model.ReportQuery) (view.Outcome[*model.Report], error) {
			r, payload, err := c.Report(ctx, q)
			if err != nil {
				return view.Outcome[*model.Report]{Payload: payload}, err
			}
			return view.Outcome[*model.Report]{Data: r, Empty: r.Empty(), Payload: payload}, nil
		},
		func(q model.ReportQuery) error { return validate.ReportQuery(q).Err() },
	)
}
