package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show per-model request usage",
	Long:  `Prints the per-minute and per-day request counts of each configured model from the last saved quota snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		status := a.tracker.Status()
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tMINUTE\tDAY")
		for _, s := range status {
			fmt.Fprintf(w, "%s\t%d/%d\t%d/%d\n", s.Model, s.MinuteUsed, s.RPM, s.DayUsed, s.RPD)
		}
		return w.Flush()
	},
}

func init() {
	quotaCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(quotaCmd)
}
