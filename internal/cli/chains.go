package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pendergraft/trustscore/pkg/client"
)

func createChainsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List chains the server can score",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(getServer())
			list, err := c.ListChains(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list chains: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"chains": list})
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No chains configured")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CHAIN\tEXPLORER")
			for _, ch := range list {
				fmt.Fprintf(w, "%s\t%s\n", ch.ChainID, ch.Explorer)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}
