package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"codequest/internal/ui"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in world/track/quest/boss catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tracks, quests, bosses, err := svc.SeedCatalog(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s seeded %d tracks, %d quests, %d bosses\n",
				ui.Good.Render(ui.IconSparkle+" Catalog"), tracks, quests, bosses)
			return nil
		},
	}

	return cmd
}
