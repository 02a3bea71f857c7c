package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/site-advisor/internal/advisor"
	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/render"
)

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Recommend districts for a business category",
	Example: `  site-advisor area --gu 강남구 --category 카페
  site-advisor area --gu 마포구 --category 편의점 --format xlsx --out area.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := renderOptions()
		if err != nil {
			return err
		}
		env, err := initAdvisor("client")
		if err != nil {
			return err
		}

		gu, _ := cmd.Flags().GetString("gu")
		category, _ := cmd.Flags().GetString("category")
		industry, _ := cmd.Flags().GetString("industry")
		q := model.AreaQuery{GuName: gu, CategorySmall: category, Industry: industry}

		st, err := runPage(cmd.Context(), advisor.NewAreaPage(cmd.Context(), env.Client), q)
		if err != nil {
			return err
		}

		out, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		if err := render.Recommendations(out, model.KindArea, st, opts); err != nil {
			return err
		}
		return pageErr(st)
	},
}

var industryCmd = &cobra.Command{
	Use:     "industry",
	Short:   "Recommend business categories for a district",
	Example: `  site-advisor industry --gu 강남구 --region 역삼동`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := renderOptions()
		if err != nil {
			return err
		}
		env, err := initAdvisor("client")
		if err != nil {
			return err
		}

		gu, _ := cmd.Flags().GetString("gu")
		region, _ := cmd.Flags().GetString("region")
		q := model.IndustryQuery{GuName: gu, Region: region}

		st, err := runPage(cmd.Context(), advisor.NewIndustryPage(cmd.Context(), env.Client), q)
		if err != nil {
			return err
		}

		out, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		if err := render.Recommendations(out, model.KindIndustry, st, opts); err != nil {
			return err
		}
		return pageErr(st)
	},
}

func init() {
	areaCmd.Flags().String("gu", "", "district (gu) name, e.g. 강남구")
	areaCmd.Flags().String("category", "", "small business category, e.g. 카페")
	areaCmd.Flags().String("industry", "", "industry name, used when --category is empty")

	industryCmd.Flags().String("gu", "", "district (gu) name, e.g. 강남구")
	industryCmd.Flags().String("region", "", "neighbourhood (dong) name, e.g. 역삼동")

	rootCmd.AddCommand(areaCmd)
	rootCmd.AddCommand(industryCmd)
}
