package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/site-advisor/internal/advisor"
	"github.com/sells-group/site-advisor/internal/render"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask the advisor about a report",
	Long:  "Sends one message with --message, or reads one message per line from stdin until EOF. Report flags give the advisor context.",
	Example: `  site-advisor chat --gu 강남구 --region 역삼동 --message "점심 매출이 높은 이유는?"
  site-advisor chat --gu 강남구 --region 역삼동 --report-file report.txt`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := renderOptions()
		if err != nil {
			return err
		}
		env, err := initAdvisor("client")
		if err != nil {
			return err
		}

		rc, err := reportContextFromFlags(cmd)
		if err != nil {
			return err
		}
		conv := advisor.NewConversation(env.Client, rc)

		message, _ := cmd.Flags().GetString("message")
		if message == "" {
			return chatLoop(cmd.Context(), conv, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		}

		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()
		if _, err := conv.Send(ctx, message); err != nil {
			return err
		}

		out, err := openOutput(cmd)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck
		return render.Chat(out, conv.Messages(), opts)
	},
}

// chatLoop sends each input line as one turn. A failed turn is reported and
// the loop continues.
func chatLoop(ctx context.Context, conv *advisor.Conversation, in io.Reader, out, errOut io.Writer) error {
	msgs := conv.Messages()
	fmt.Fprintf(out, "[%s] %s\n", msgs[0].Role, msgs[0].Content)

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		turnCtx, cancel := withTimeout(ctx)
		reply, err := conv.Send(turnCtx, sc.Text())
		cancel()
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if reply != "" {
			fmt.Fprintf(out, "[bot] %s\n", reply)
		}
	}
	return sc.Err()
}

func reportContextFromFlags(cmd *cobra.Command) (advisor.ReportContext, error) {
	q := reportQueryFromFlags(cmd)
	rc := advisor.ReportContext{
		Role:          q.Role,
		GuName:        q.GuName,
		Region:        q.Region,
		CategoryLarge: q.CategoryLarge,
		CategorySmall: q.CategorySmall,
		Purpose:       q.Purpose,
	}
	if path, _ := cmd.Flags().GetString("report-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return rc, err
		}
		rc.ReportText = string(b)
	}
	return rc, nil
}

func init() {
	addReportFlags(chatCmd)
	chatCmd.Flags().StringP("message", "m", "", "message to send; omit to read lines from stdin")
	chatCmd.Flags().String("report-file", "", "report text to discuss")
	rootCmd.AddCommand(chatCmd)
}
