package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

type boardModel struct {
	ctx   context.Context
	svc   *engine.Service
	actor string

	sweepEvery time.Duration

	width  int
	height int

	snaps    []*engine.Snapshot
	kid      int // index into snaps
	selected int // index into current kid's chore list

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	snaps []*engine.Snapshot
	err   error
}

type actedMsg struct {
	log string
	err error
}

type sweepTickMsg time.Time

func newBoardModel(ctx context.Context, svc *engine.Service, actor string, sweepEvery time.Duration) boardModel {
	return boardModel{
		ctx:        ctx,
		svc:        svc,
		actor:      actor,
		sweepEvery: sweepEvery,
		loading:    true,
		lastLog:    "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd())
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{snaps: m.svc.Cache().Snapshots()}
	}
}

func (m boardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.sweepEvery, func(t time.Time) tea.Msg {
		return sweepTickMsg(t)
	})
}

func (m boardModel) claimCmd(kidID, choreID uuid.UUID, name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.Claim(m.ctx, kidID, choreID, m.actor); err != nil {
			return actedMsg{err: err}
		}
		return actedMsg{log: "Claimed " + name + "."}
	}
}

func (m boardModel) approveCmd(kidID, choreID uuid.UUID, name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.Approve(m.ctx, kidID, choreID, m.actor); err != nil {
			return actedMsg{err: err}
		}
		return actedMsg{log: "Approved " + name + "."}
	}
}

func (m boardModel) disapproveCmd(kidID, choreID uuid.UUID, name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.Disapprove(m.ctx, kidID, choreID, m.actor); err != nil {
			return actedMsg{err: err}
		}
		return actedMsg{log: "Disapproved " + name + "."}
	}
}

func (m boardModel) sweepCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.Sweep(m.ctx); err != nil {
			return actedMsg{err: err}
		}
		return actedMsg{log: fmt.Sprintf("Swept at %s.", time.Now().Format("15:04:05"))}
	}
}

func (m boardModel) current() (*engine.Snapshot, *engine.ChoreStatus) {
	if m.kid < 0 || m.kid >= len(m.snaps) {
		return nil, nil
	}
	snap := m.snaps[m.kid]
	if m.selected < 0 || m.selected >= len(snap.Chores) {
		return snap, nil
	}
	return snap, &snap.Chores[m.selected]
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.snaps = msg.snaps
		if m.kid >= len(m.snaps) {
			m.kid = len(m.snaps) - 1
		}
		if m.kid < 0 {
			m.kid = 0
		}
		m.clampSelected()
		return m, nil
	case actedMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, m.loadCmd()
		}
		m.lastLog = msg.log
		return m, m.loadCmd()
	case sweepTickMsg:
		return m, tea.Batch(m.sweepCmd(), m.tickCmd())
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "s":
			m.lastLog = "Sweeping…"
			return m, m.sweepCmd()
		case "left", "h":
			if m.kid > 0 {
				m.kid--
				m.clampSelected()
			}
			return m, nil
		case "right", "l", "tab":
			if m.kid < len(m.snaps)-1 {
				m.kid++
				m.clampSelected()
			}
			return m, nil
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if snap, _ := m.current(); snap != nil && m.selected < len(snap.Chores)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			snap, cs := m.current()
			if snap == nil || cs == nil {
				return m, nil
			}
			if !cs.CanClaim {
				m.lastLog = "Cannot claim " + cs.ChoreName + " right now."
				return m, nil
			}
			m.lastLog = "Claiming " + cs.ChoreName + "…"
			return m, m.claimCmd(snap.KidID, cs.ChoreID, cs.ChoreName)
		case "a":
			snap, cs := m.current()
			if snap == nil || cs == nil {
				return m, nil
			}
			if !cs.CanApprove {
				m.lastLog = "Nothing to approve on " + cs.ChoreName + "."
				return m, nil
			}
			m.lastLog = "Approving " + cs.ChoreName + "…"
			return m, m.approveCmd(snap.KidID, cs.ChoreID, cs.ChoreName)
		case "d":
			snap, cs := m.current()
			if snap == nil || cs == nil {
				return m, nil
			}
			m.lastLog = "Disapproving " + cs.ChoreName + "…"
			return m, m.disapproveCmd(snap.KidID, cs.ChoreID, cs.ChoreName)
		}
	}
	return m, nil
}

func (m *boardModel) clampSelected() {
	snap, _ := m.current()
	if snap == nil {
		m.selected = 0
		return
	}
	if m.selected >= len(snap.Chores) {
		m.selected = len(snap.Chores) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}
	if m.loading {
		return "KidsChores — loading…\n"
	}
	if len(m.snaps) == 0 {
		return "KidsChores — no kids yet. Run `kc load` first.\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := "\n" + m.lastLog

	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	var tabs []string
	for i, s := range m.snaps {
		label := s.KidName
		if i == m.kid {
			label = ui.SelectedRow.Render(" " + label + " ")
		} else {
			label = ui.Muted.Render(" " + label + " ")
		}
		tabs = append(tabs, label)
	}
	return ui.Heading(ui.IconChore, "KidsChores") + "  " + strings.Join(tabs, " ")
}

func (m boardModel) renderSidebar() string {
	snap := m.snaps[m.kid]
	lines := []string{snap.KidName}
	lines = append(lines, "Balance "+ui.Points(snap.Balance))
	if snap.Streak > 0 {
		lines = append(lines, fmt.Sprintf("%s %d day streak", ui.IconFire, snap.Streak))
	}
	if len(snap.Badges) > 0 {
		lines = append(lines, "")
		lines = append(lines, "Badges")
		for _, b := range snap.Badges {
			lines = append(lines, "- "+b)
		}
	}
	week := snap.Rollups[engine.PeriodWeekly]
	lines = append(lines, "")
	lines = append(lines, "This week")
	lines = append(lines, fmt.Sprintf("- %d done, %s earned", week.Approved, ui.Points(week.PointsEarned)))
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ←/→ or h/l: kid")
	lines = append(lines, "- ↑/↓ or j/k: chore")
	lines = append(lines, "- c/space: claim")
	lines = append(lines, "- a: approve, d: disapprove")
	lines = append(lines, "- s: sweep, r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	snap := m.snaps[m.kid]
	var out []string
	out = append(out, "Chores")
	if len(snap.Chores) == 0 {
		out = append(out, "(nothing assigned)")
		return strings.Join(out, "\n")
	}
	for i, cs := range snap.Chores {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		due := ""
		if cs.DaysOverdue > 0 {
			due = ui.Bad.Render(fmt.Sprintf("  %dd late", cs.DaysOverdue))
		} else if cs.DueDate != nil {
			due = ui.Muted.Render("  due " + cs.DueDate.Format("Jan 2"))
		}
		streak := ""
		if cs.Streak > 1 {
			streak = fmt.Sprintf("  %s%d", ui.IconFire, cs.Streak)
		}
		out = append(out, fmt.Sprintf("%s%-24s %s  %s%s%s",
			cursor, cs.ChoreName, ui.StateText(string(cs.State)), ui.Points(cs.Points), due, streak))
	}
	return strings.Join(out, "\n")
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
