package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codequest/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "cq",
	Short:         "Local-first coding RPG progression engine",
	Long:          "Codequest tracks quest progress, spawns rubric-graded boss fights, and builds a deterministic daily practice gauntlet.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newSeedCmd(),
		newSubmitCmd(),
		newStrikeCmd(),
		newPracticeCmd(),
		newStatusCmd(),
		newQuestsCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
