package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"codequest/internal/ui"
)

func newPracticeCmd() *cobra.Command {
	var user string
	var maxItems int
	var worlds []string
	var projects []string

	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Show today's practice gauntlet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			today := time.Now().UTC()
			plan, err := svc.DailyPlan(ctx, user, today, maxItems, worlds, projects)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTarget, "Practice Gauntlet "+plan.Date))
			if plan.Stats.StreakDays > 0 {
				fmt.Fprintf(out, "%s %d-day streak, %d completed today\n",
					ui.Gold.Render(ui.IconFlame), plan.Stats.StreakDays, plan.Stats.CompletedToday)
			}
			if len(plan.Items) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing to practice yet. Run `cq seed` and submit some quests."))
				return nil
			}
			for i, item := range plan.Items {
				icon := ui.IconQuest
				if item.ItemType == "boss" {
					icon = ui.IconBoss
				}
				fmt.Fprintf(out, "%d. %s %s %s %s\n", i+1, icon, ui.H2.Render(item.Title),
					ui.DifficultyBadge(item.Difficulty), ui.Muted.Render("("+item.Category+")"))
				fmt.Fprintf(out, "   %s\n", ui.Muted.Render(item.Rationale))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "main", "Profile key")
	cmd.Flags().IntVarP(&maxItems, "max", "m", 0, "Max items (0 = config default)")
	cmd.Flags().StringSliceVarP(&worlds, "world", "w", nil, "Only include these world slugs")
	cmd.Flags().StringSliceVarP(&projects, "project", "p", nil, "Only include these track slugs")

	return cmd
}
