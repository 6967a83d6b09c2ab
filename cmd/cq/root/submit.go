package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"codequest/internal/engine"
	"codequest/internal/ui"
)

func newSubmitCmd() *cobra.Command {
	var user string
	var score int
	var passed bool
	var engage bool

	cmd := &cobra.Command{
		Use:   "submit <quest-slug>",
		Short: "Record a graded quest submission",
		Long: `Record the grading collaborator's verdict for a quest submission.

The score (0-100) and pass/fail flag come from whatever graded the code;
this command only advances the progression engine.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("quest slug is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if score < 0 || score > 100 {
				return errors.New("score must be 0-100")
			}
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.SubmitQuest(ctx, user, args[0], score, passed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verdict := ui.Bad.Render("failed")
			if passed {
				verdict = ui.Good.Render("passed")
			}
			fmt.Fprintf(out, "%s %s %s (score %d, grade %s)\n",
				ui.Heading(ui.IconQuest, args[0]), verdict, ui.Muted.Render(fmt.Sprintf("%s → %s", res.PrevState, res.Progress.State)), score, res.Grade)
			fmt.Fprintln(out, ui.LabelValue("Attempts", res.Progress.Attempts))
			fmt.Fprintln(out, ui.LabelValue("Best score", res.Progress.BestScore))
			if res.XPAwarded > 0 {
				fmt.Fprintf(out, "%s +%d XP\n", ui.Gold.Render(ui.IconSparkle), res.XPAwarded)
			}
			for _, ev := range res.Unlocks {
				fmt.Fprintf(out, "%s %s unlocked: %s\n", ui.Warn.Render(ui.IconUnlock), ev.Type, ev.Label)
			}

			if res.BossSpawn != nil {
				fmt.Fprintf(out, "%s %s appears!\n", ui.Bad.Render(ui.IconBoss), ui.Title.Render(res.BossSpawn.Title))
				if engage {
					run, err := svc.StartRun(ctx, user, res.BossSpawn.ID)
					if err != nil {
						var active engine.ActiveRunError
						if errors.As(err, &active) {
							fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" An encounter is already active; finish it first."))
							return nil
						}
						return err
					}
					fmt.Fprintf(out, "%s Encounter started (HP %d). Strike with: %s\n",
						ui.Good.Render(ui.IconSword), run.HPRemaining, ui.Key.Render("cq strike --choice <file>"))
				} else {
					fmt.Fprintf(out, "%s Engage with: %s\n", ui.Muted.Render("💡"), ui.Key.Render("cq submit --engage"))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "main", "Profile key")
	cmd.Flags().IntVarP(&score, "score", "s", 0, "Graded score (0-100)")
	cmd.Flags().BoolVarP(&passed, "passed", "p", false, "Submission passed grading")
	cmd.Flags().BoolVar(&engage, "engage", true, "Start the encounter immediately when a boss spawns")

	return cmd
}
