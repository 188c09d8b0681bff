package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
)

func RunBoard(ctx context.Context, svc *engine.Service, actor string, sweepEvery time.Duration, out io.Writer) error {
	m := newBoardModel(ctx, svc, actor, sweepEvery)
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
