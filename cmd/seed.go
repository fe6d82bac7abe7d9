package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maxwell142857/cs5500-group6/internal/game"
	"github.com/maxwell142857/cs5500-group6/internal/progress"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load curated questions into the question cache",
	Long: `Reads a YAML file mapping each domain to an ordered list of questions and
stores them as cached questions at those positions. Existing questions keep
their learned scores.

  animal:
    - Is it a mammal?
    - Does it live in water?`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedFile maps a domain to its questions in asking order.
type seedFile map[string][]string

func readSeedFile(path string) (seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	for domain := range sf {
		if _, err := game.NormalizeDomain(domain); err != nil {
			return nil, err
		}
	}
	return sf, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	sf, err := readSeedFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	domains := make([]string, 0, len(sf))
	total := 0
	for d, qs := range sf {
		domains = append(domains, d)
		total += len(qs)
	}
	sort.Strings(domains)

	reporter := progress.NewReporter("Seeding questions")
	reporter.Start(total)
	done := 0
	for _, d := range domains {
		domain, _ := game.NormalizeDomain(d)
		for i, text := range sf[d] {
			if _, err := a.questions.Seed(ctx, domain, i, text); err != nil {
				return fmt.Errorf("seeding %s question %d: %w", domain, i+1, err)
			}
			done++
			reporter.Update(done, domain)
		}
	}
	reporter.Finish()

	log.Info().Int("questions", done).Int("domains", len(domains)).Msg("seed complete")
	return nil
}
