package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"codequest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show profile stats, unlocks, and the active encounter",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.ProfileRepo().GetOrCreate(ctx, user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Profile: "+p.Key))
			fmt.Fprintln(out, ui.LabelValue("XP", p.XP))
			fmt.Fprintln(out, ui.LabelValue("Integrity", fmt.Sprintf("%d/100", p.Integrity)))
			fmt.Fprintln(out, "")

			tracks, err := svc.QuestRepo().ListTracks(ctx)
			if err != nil {
				return err
			}
			if len(tracks) > 0 {
				fmt.Fprintln(out, ui.H2.Render("📊 Tracks"))
				for _, t := range tracks {
					n, err := svc.ProgressRepo().CountCompletedOnTrack(ctx, user, t.ID)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "- %s: %d completed\n", t.Title, n)
				}
				fmt.Fprintln(out, "")
			}

			if len(p.Flags.BossesUnlocked) > 0 || len(p.Flags.LayoutsUnlocked) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconUnlock+" Unlocks"))
				for _, id := range p.Flags.BossesUnlocked {
					fmt.Fprintf(out, "- boss %s\n", ui.Muted.Render(id))
				}
				for _, id := range p.Flags.LayoutsUnlocked {
					fmt.Fprintf(out, "- layout %s\n", ui.Muted.Render(id))
				}
				fmt.Fprintln(out, "")
			}

			run, err := svc.BossRepo().ActiveRun(ctx, user)
			if err != nil {
				return err
			}
			if run != nil {
				boss, err := svc.BossRepo().Get(ctx, run.BossID)
				if err != nil {
					return err
				}
				name := fmt.Sprintf("boss %d", run.BossID)
				maxHP := run.HPRemaining
				if boss != nil {
					name = boss.Title
					maxHP = boss.MaxHP
				}
				fmt.Fprintln(out, ui.H2.Render(ui.IconBoss+" Active encounter"))
				fmt.Fprintf(out, "- %s: HP %d/%d\n", ui.Title.Render(name), run.HPRemaining, maxHP)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "main", "Profile key")

	return cmd
}
