package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/csvdash/internal/ai"
	"github.com/KaramelBytes/csvdash/internal/dashboard"
	"github.com/KaramelBytes/csvdash/internal/table"
	"github.com/KaramelBytes/csvdash/internal/utils"
)

var (
	aiJSON  bool
	aiPlain bool
	askText string
)

var insightsCmd = &cobra.Command{
	Use:   "insights <file>",
	Short: "Ask the model for insights about a sample of the CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adv, t, err := prepareAI(args[0])
		if err != nil {
			return err
		}
		ans, err := adv.Insights(cmd.Context(), t)
		if err != nil {
			return fmt.Errorf("error generating insights: %w", err)
		}
		return printAnswer(cmd.OutOrStdout(), "AI Insights Generated", ans)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <file> [question...]",
	Short: "Ask the model a question about a sample of the CSV file",
	Example: `  csvdash ask sales.csv "Which region grew fastest?"
  csvdash ask sales.csv --question "Any outliers in revenue?" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := askText
		if question == "" {
			question = strings.Join(args[1:], " ")
		}
		if strings.TrimSpace(question) == "" {
			return ai.ErrEmptyQuestion
		}
		adv, t, err := prepareAI(args[0])
		if err != nil {
			return err
		}
		ans, err := adv.Ask(cmd.Context(), t, question)
		if err != nil {
			return fmt.Errorf("error generating answer: %w", err)
		}
		return printAnswer(cmd.OutOrStdout(), "Answer from AI", ans)
	},
}

// prepareAI checks the key before reading the file so a misconfigured run fails fast.
func prepareAI(path string) (dashboard.Advisor, *table.Table, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := c.RequireAPIKey(); err != nil {
		return nil, nil, err
	}
	t, err := openTable(path)
	if err != nil {
		return nil, nil, err
	}
	return newAdvisor(c), t, nil
}

func printAnswer(out io.Writer, title string, ans *ai.Answer) error {
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] model=%s request_id=%s prompt_tokens~%d\n", ai.DefaultModel, ans.RequestID, ans.PromptTokens)
	}
	if aiJSON {
		b, err := utils.PrettyJSON(ans)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	}
	fmt.Fprintf(out, "✅ %s\n\n", title)
	if aiPlain {
		fmt.Fprintln(out, ans.Text)
		return nil
	}
	rendered, err := glamour.Render(ans.Text, "dark")
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: markdown rendering failed: %v\n", err)
		rendered = ans.Text + "\n"
	}
	fmt.Fprint(out, rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(askCmd)
	for _, c := range []*cobra.Command{insightsCmd, askCmd} {
		c.Flags().BoolVar(&aiJSON, "json", false, "print the answer as JSON")
		c.Flags().BoolVar(&aiPlain, "plain", false, "print the answer without Markdown rendering")
	}
	askCmd.Flags().StringVarP(&askText, "question", "q", "", "question to ask (instead of positional words)")
}
