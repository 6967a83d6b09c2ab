package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"codequest/internal/storage"
	"codequest/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "quests",
		Short: "List quests with per-profile progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			quests, err := svc.QuestRepo().ListAll(ctx)
			if err != nil {
				return err
			}
			rows, err := svc.ProgressRepo().ListByProfile(ctx, user)
			if err != nil {
				return err
			}
			byQuest := make(map[int64]storage.QuestProgress, len(rows))
			for _, r := range rows {
				byQuest[r.QuestID] = r
			}

			out := cmd.OutOrStdout()
			lastWorld := ""
			for _, q := range quests {
				if q.WorldSlug != lastWorld {
					fmt.Fprintln(out, ui.Heading(ui.IconQuest, q.WorldSlug))
					lastWorld = q.WorldSlug
				}
				state := "available"
				detail := ""
				if p, ok := byQuest[q.ID]; ok {
					state = p.State
					detail = fmt.Sprintf(" (best %d, %d attempts)", p.BestScore, p.Attempts)
				}
				fmt.Fprintf(out, "- %s %s [%s]%s\n", ui.Muted.Render(q.Slug), q.Title, ui.StateText(state), ui.Muted.Render(detail))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "main", "Profile key")

	return cmd
}
