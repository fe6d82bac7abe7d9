package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "akinator",
	Short: "A guessing game that learns which questions work",
	Long: `Akinator asks yes/no questions about something you are thinking of and
then guesses what it is. Questions come from a learned cache, a rotating
set of language models kept within their free-tier quotas, or built-in
templates when neither is available. Every finished game makes the next
one better.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".akinator.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
