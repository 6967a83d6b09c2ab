package root

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codequest/internal/engine"
	"codequest/internal/ui"
)

func newStrikeCmd() *cobra.Command {
	var user string
	var choicePath string

	cmd := &cobra.Command{
		Use:   "strike",
		Short: "Resolve a boss strike from a judge's rubric choice",
		Long: `Score the judge collaborator's rubric choice against the active encounter.

The choice file is the judge's JSON output: per-dimension levels plus any
triggered autofail conditions. Use "-" to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if choicePath == "" {
				return errors.New("--choice is required")
			}

			var data []byte
			var err error
			if choicePath == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(choicePath)
			}
			if err != nil {
				return fmt.Errorf("read choice: %w", err)
			}
			var choice engine.EvalChoice
			if err := json.Unmarshal(data, &choice); err != nil {
				return fmt.Errorf("parse choice: %w", err)
			}

			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.StrikeBoss(ctx, user, choice)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSword, "Strike: "+res.Boss.Title))
			fmt.Fprintf(out, "%s %d/%d (grade %s)\n", ui.Key.Render("Score:"), res.Eval.TotalScore, res.Eval.MaxScore, res.Eval.Grade)
			for _, d := range res.Eval.Breakdown {
				fmt.Fprintf(out, "- %s: level %d (+%d)\n", d.Key, d.Level, d.Score)
			}
			if res.Eval.AutofailTriggered {
				fmt.Fprintf(out, "%s autofail: %v\n", ui.Bad.Render(ui.IconError), res.Eval.AutofailReasons)
			}
			fmt.Fprintf(out, "%s %d → %d (-%d)\n", ui.Key.Render("Boss HP:"), res.Delta.BossHPBefore, res.Delta.BossHPAfter, res.Delta.Damage)
			if res.Delta.IntegrityDamage > 0 {
				fmt.Fprintf(out, "%s %d → %d\n", ui.Warn.Render(ui.IconShield+" Integrity:"), res.Delta.IntegrityBefore, res.Delta.IntegrityAfter)
			}

			switch res.Result {
			case "win":
				fmt.Fprintf(out, "%s %s defeated! +%d XP\n", ui.BadgeVictory, res.Boss.Title, res.XPAwarded)
			case "loss":
				fmt.Fprintf(out, "%s Integrity exhausted. The encounter is lost.\n", ui.BadgeDefeat)
			default:
				fmt.Fprintf(out, "%s The boss still stands. Strike again.\n", ui.Muted.Render(ui.IconBoss))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "main", "Profile key")
	cmd.Flags().StringVarP(&choicePath, "choice", "c", "", "Path to the judge's EvalChoice JSON (\"-\" for stdin)")

	return cmd
}
