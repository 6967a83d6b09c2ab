package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"codequest/internal/engine"
)

func RunBoard(ctx context.Context, svc *engine.Service, profileKey string, out io.Writer) error {
	m := newBoardModel(ctx, svc, profileKey)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
