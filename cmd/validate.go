package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/render"
	"github.com/sells-group/site-advisor/internal/validate"
)

const roleIndustry = "industry"

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a home form and print the page it leads to",
	Long:  "Runs the home page checks for an owner, a pre-owner, or an industry lookup without calling the backend.",
	Example: `  site-advisor validate --role owner --category-large 음식 --category-small 카페 --monthly-sales 1200 --purpose 확장 --district "강남구 역삼동"
  site-advisor validate --role industry --district 강남구`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := renderOptions()
		if err != nil {
			return err
		}

		role, _ := cmd.Flags().GetString("role")
		r, err := checkForm(role, homeFormFromFlags(cmd))
		if err != nil {
			return err
		}

		out, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		if err := render.Validation(out, r, opts); err != nil {
			return err
		}
		return r.Err()
	},
}

// checkForm dispatches to the checks for role.
func checkForm(role string, f validate.HomeForm) (validate.Result, error) {
	switch strings.TrimSpace(role) {
	case model.RoleOwner:
		return validate.OwnerForm(f), nil
	case model.RolePreOwner:
		return validate.PreOwnerForm(f), nil
	case roleIndustry:
		return validate.IndustryLookup(f.District), nil
	default:
		return validate.Result{}, eris.Errorf("unknown role %q (want owner, pre-owner or industry)", role)
	}
}

func homeFormFromFlags(cmd *cobra.Command) validate.HomeForm {
	large, _ := cmd.Flags().GetString("category-large")
	small, _ := cmd.Flags().GetString("category-small")
	sales, _ := cmd.Flags().GetFloat64("monthly-sales")
	purpose, _ := cmd.Flags().GetString("purpose")
	district, _ := cmd.Flags().GetString("district")
	code, _ := cmd.Flags().GetString("district-code")
	if code == "" {
		code = district
	}
	return validate.HomeForm{
		CategoryLarge: large,
		CategorySmall: small,
		MonthlySales:  sales,
		Purpose:       purpose,
		District:      validate.District{Label: district, Value: code},
	}
}

func init() {
	f := validateCmd.Flags()
	f.String("role", model.RoleOwner, "owner, pre-owner or industry")
	f.String("category-large", "", "large business category")
	f.String("category-small", "", "small business category")
	f.Float64("monthly-sales", 0, "monthly sales (owners only)")
	f.String("purpose", "", "purpose of the analysis (owners only)")
	f.String("district", "", `selected district label, e.g. "강남구 역삼동"`)
	f.String("district-code", "", "selected district code (defaults to the label)")
	rootCmd.AddCommand(validateCmd)
}
