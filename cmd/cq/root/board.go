package root

import (
	"context"

	"github.com/spf13/cobra"

	"codequest/internal/tui"
)

func newBoardCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, svc, user, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "main", "Profile key")

	return cmd
}
