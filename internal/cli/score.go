package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pendergraft/trustscore/internal/insights/domain"
	"github.com/pendergraft/trustscore/pkg/client"
)

func createScoreCmd() *cobra.Command {
	var to, from, chain string
	var jsonOutput bool
	var failBelow int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score the destination contract of a transaction",
		Long: `Ask the server for the trust panel of a transaction and print it.

The overall line is 🟩 good, 🟧 average or 🟥 poor. When the score cannot be
computed the panel says so and explains why.

EXAMPLES:
  # Score a contract you are about to call
  trustscore score --to 0xdAC17F958D2ee523a2206206994597C13D831ec7 --from 0xYourAddress

  # Another chain, JSON output
  trustscore score --to 0x... --from 0x... --chain eip155:137 --json

  # Fail (exit 1) unless the overall result is at least average
  trustscore score --to 0x... --from 0x... --fail-below 2
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				if config := loadProjectConfigSilent(); config != nil {
					from = config.From
				}
			}
			if from == "" {
				return fmt.Errorf("--from is required (or set from in %s)", projectConfigFile)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c := client.New(getServer(), client.WithUserAgent("trustscore-cli/"+cmd.Root().Version))
			tx := client.Transaction{"from": from, "to": to}
			insights, err := c.GetInsights(ctx, tx, getChain(chain))
			if err != nil {
				return fmt.Errorf("failed to get insights: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(map[string]any{"insights": insights}); err != nil {
					return err
				}
			} else {
				printInsights(out, insights)
			}

			if failBelow > 0 {
				if score := overallScore(insights); score < failBelow {
					return fmt.Errorf("overall score %d is below %d", score, failBelow)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "destination contract address (required)")
	cmd.Flags().StringVar(&from, "from", "", "sender address (default from config)")
	cmd.Flags().StringVar(&chain, "chain", "", "CAIP-2 chain ID (default from config, else eip155:1)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().IntVar(&failBelow, "fail-below", 0, "exit with an error if the overall score is below this (1-3)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

var markerColors = map[string]*color.Color{
	domain.MarkerGreen:   color.New(color.FgGreen),
	domain.MarkerOrange:  color.New(color.FgYellow),
	domain.MarkerRed:     color.New(color.FgRed),
	domain.MarkerWarning: color.New(color.FgYellow, color.Bold),
}

// printInsights writes the panel one line per insight, colouring each value
// after the marker that starts its label.
func printInsights(w io.Writer, insights client.Insights) {
	width := 0
	for _, in := range insights {
		if n := len([]rune(in.Label)); n > width {
			width = n
		}
	}

	for _, in := range insights {
		if in.Label == domain.LabelSeparator {
			color.New(color.Faint).Fprintln(w, strings.Repeat("─", width+12))
			continue
		}

		pad := strings.Repeat(" ", width-len([]rune(in.Label)))
		fmt.Fprintf(w, "%s%s  ", in.Label, pad)
		if c := markerColor(in.Label); c != nil {
			c.Fprintln(w, in.Value)
		} else {
			fmt.Fprintln(w, in.Value)
		}
	}
}

func markerColor(label string) *color.Color {
	for marker, c := range markerColors {
		if strings.HasPrefix(label, marker) {
			return c
		}
	}
	return nil
}

// overallScore reads the aggregate back from the overall line's marker.
// An unavailable panel scores 0.
func overallScore(insights client.Insights) int {
	for _, in := range insights {
		if !strings.HasSuffix(in.Label, domain.LabelOverall) {
			continue
		}
		switch {
		case strings.HasPrefix(in.Label, domain.MarkerGreen):
			return 3
		case strings.HasPrefix(in.Label, domain.MarkerOrange):
			return 2
		case strings.HasPrefix(in.Label, domain.MarkerRed):
			return 1
		}
		return 0
	}
	return 0
}
