package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/site-advisor/internal/advisor"
	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/render"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a market report for a district and category",
	Example: `  site-advisor report --gu 강남구 --region 역삼동 --category-large 음식 --category-small 카페 --purpose 창업
  site-advisor report ... --format xlsx --out report.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := renderOptions()
		if err != nil {
			return err
		}
		env, err := initAdvisor("client")
		if err != nil {
			return err
		}

		q := reportQueryFromFlags(cmd)
		st, err := runPage(cmd.Context(), advisor.NewReportPage(cmd.Context(), env.Client), q)
		if err != nil {
			return err
		}

		out, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		if err := render.Report(out, st, opts); err != nil {
			return err
		}
		return pageErr(st)
	},
}

// addReportFlags registers the flags identifying a report. chat reuses them
// as conversation context.
func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("role", model.RoleOwner, "owner or pre-owner")
	f.String("gu", "", "district (gu) name")
	f.String("region", "", "neighbourhood (dong) name")
	f.String("category-large", "", "large business category")
	f.String("category-small", "", "small business category")
	f.String("purpose", "", "purpose of the analysis")
}

func reportQueryFromFlags(cmd *cobra.Command) model.ReportQuery {
	role, _ := cmd.Flags().GetString("role")
	gu, _ := cmd.Flags().GetString("gu")
	region, _ := cmd.Flags().GetString("region")
	large, _ := cmd.Flags().GetString("category-large")
	small, _ := cmd.Flags().GetString("category-small")
	purpose, _ := cmd.Flags().GetString("purpose")
	return model.ReportQuery{
		Role:          role,
		GuName:        gu,
		Region:        region,
		CategoryLarge: large,
		CategorySmall: small,
		Purpose:       purpose,
	}
}

func init() {
	addReportFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}
