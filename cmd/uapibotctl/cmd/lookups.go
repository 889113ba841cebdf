package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/uapibot/uapibot/pkg/protocol"
)

func newLookupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookups",
		Short: "Show per-command lookup statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp protocol.LookupsResponse
			if err := apiGet("/api/v1/lookups", &resp); err != nil {
				return err
			}

			if len(resp.Commands) == 0 {
				fmt.Println("No lookups handled yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COMMAND\tHANDLED\tERRORS\tLAST TARGET\tLAST AT")
			for _, c := range resp.Commands {
				lastAt := ""
				if !c.LastAt.IsZero() {
					lastAt = c.LastAt.Format("15:04:05")
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
					c.Command, c.Handled, c.Errors, c.LastTarget, lastAt,
				)
			}
			w.Flush()
			fmt.Printf("\nTotal: %d handled, %d errors\n", resp.Total, resp.Errors)
			return nil
		},
	}
}
