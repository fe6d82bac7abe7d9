package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [domain]",
	Short: "Play a game in the terminal",
	Long:  `Think of something in a domain (animal, food, movie, ...) and answer the questions. The game learns from the result.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var domain string
	if len(args) == 1 {
		domain = args[0]
	} else {
		p := promptui.Prompt{Label: "What kind of thing are you thinking of", Default: "animal"}
		if domain, err = p.Run(); err != nil {
			return fmt.Errorf("domain prompt: %w", err)
		}
	}

	s, err := a.engine.StartGame(ctx, domain)
	if err != nil {
		return err
	}
	fmt.Printf("Think of a %s. I'll ask you some yes/no questions.\n\n", s.Domain)

	for {
		q, err := a.engine.NextQuestion(ctx, s.ID)
		if err != nil {
			return err
		}
		sel := promptui.Select{
			Label: fmt.Sprintf("Q%d: %s", q.Number, q.Text),
			Items: []string{"Yes", "No", "Don't know"},
		}
		_, choice, err := sel.Run()
		if err != nil {
			return fmt.Errorf("answer prompt: %w", err)
		}
		res, err := a.engine.SubmitAnswer(ctx, s.ID, q.ID, choice)
		if err != nil {
			return err
		}
		if res.ShouldGuess {
			break
		}
	}

	g, err := a.engine.MakeGuess(ctx, s.ID)
	if err != nil {
		return err
	}
	fmt.Printf("\nI think it's... %s!\n\n", g.Entity)

	confirm := promptui.Select{Label: "Was I right", Items: []string{"Yes", "No"}}
	_, verdict, err := confirm.Run()
	if err != nil {
		return fmt.Errorf("result prompt: %w", err)
	}
	correct := verdict == "Yes"

	var actual string
	if !correct {
		p := promptui.Prompt{
			Label: "What were you thinking of",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("please enter an answer")
				}
				return nil
			},
		}
		if actual, err = p.Run(); err != nil {
			return fmt.Errorf("actual entity prompt: %w", err)
		}
	}

	if _, err := a.engine.SubmitResult(ctx, s.ID, correct, actual); err != nil {
		return err
	}
	if correct {
		fmt.Println("Got it! Thanks for playing.")
	} else {
		fmt.Printf("Thanks! I'll remember %s next time.\n", strings.TrimSpace(actual))
	}
	return nil
}
