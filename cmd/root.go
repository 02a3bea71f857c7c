package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-advisor/internal/config"
	"github.com/sells-group/site-advisor/internal/render"
)

var cfg *config.Config

// Global output flags.
var (
	outputFormat string
	outputPath   string
	debugOutput  bool
	loadTimeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "site-advisor",
	Short: "Commercial site-selection advisor",
	Long:  "Asks the site-selection backend for district and industry recommendations, market reports and chat answers, and renders them as tables, JSON, YAML or spreadsheets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&outputFormat, "format", "text", "output format: text, json, yaml or xlsx")
	pf.StringVarP(&outputPath, "out", "o", "", "write output to this file instead of stdout")
	pf.BoolVar(&debugOutput, "debug", false, "print the raw backend payload when a result is empty")
	pf.DurationVar(&loadTimeout, "timeout", 0, "give up waiting after this long (0 waits for the backend)")
}

// renderOptions resolves the global output flags.
func renderOptions() (render.Options, error) {
	f, err := render.ParseFormat(outputFormat)
	if err != nil {
		return render.Options{}, err
	}
	if f.Binary() && outputPath == "" {
		return render.Options{}, eris.Errorf("--format %s needs --out", f)
	}
	return render.Options{Format: f, Debug: debugOutput}, nil
}

// openOutput returns the writer selected by --out. The caller closes it.
func openOutput(cmd *cobra.Command) (io.WriteCloser, error) {
	if outputPath == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, eris.Wrapf(err, "create %s", outputPath)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// withTimeout applies --timeout to ctx.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if loadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, loadTimeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
