package main

import (
	"context"
	"fmt"
	"time"

	cl "coinsec/internal/cli"
	"coinsec/internal/game"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	boostStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

func newPlayCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in an interactive terminal session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession()
			if err != nil {
				return err
			}
			client := newClient(apiBase)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			snap, err := client.Fetch(ctx, sess.Address, "")
			cancel()
			if err != nil {
				return err
			}

			m := playModel{
				client:  client,
				address: sess.Address,
				snap:    snap,
				energy:  progress.New(progress.WithDefaultGradient()),
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type tickMsg time.Time

type snapshotMsg struct {
	snap     game.Snapshot
	declined bool
}

type playErrMsg struct{ err error }

type playModel struct {
	client  *cl.Client
	address string
	snap    game.Snapshot
	energy  progress.Model
	lastErr error
	msg     string
	taps    int
}

func (m playModel) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m playModel) tickCmd() tea.Cmd {
	client, address := m.client, m.address
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		snap, err := client.Tick(ctx, address)
		if err != nil {
			return playErrMsg{err}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m playModel) tapCmd() tea.Cmd {
	client, address := m.client, m.address
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := client.Tap(ctx, address)
		if err != nil {
			return playErrMsg{err}
		}
		return snapshotMsg{snap: res.Snapshot, declined: !res.Accepted}
	}
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "enter":
			return m, m.tapCmd()
		}
	case tea.WindowSizeMsg:
		w := msg.Width - 20
		if w < 10 {
			w = 10
		}
		if w > 60 {
			w = 60
		}
		m.energy.Width = w
	case tickMsg:
		return m, tea.Batch(m.tickCmd(), tickEvery())
	case snapshotMsg:
		m.snap = msg.snap
		m.lastErr = nil
		if msg.declined {
			m.msg = "Out of energy."
		} else {
			m.msg = ""
			m.taps++
		}
	case playErrMsg:
		m.lastErr = msg.err
	}
	return m, nil
}

func (m playModel) View() string {
	s := titleStyle.Render("COINSEC") + "\n\n"
	s += statStyle.Render(fmt.Sprintf("Points   %s", formatPoints(m.snap.Points))) + "\n"
	s += statStyle.Render(fmt.Sprintf("Per tap  %s", formatPoints(m.snap.PointsPerTap))) + "\n"
	s += statStyle.Render(fmt.Sprintf("Passive  %s / min", formatPoints(m.snap.PassiveIncome))) + "\n\n"

	ratio := 0.0
	if m.snap.MaxEnergy > 0 {
		ratio = m.snap.Energy / m.snap.MaxEnergy
	}
	s += "Energy " + m.energy.ViewAs(ratio) + "\n"

	if m.snap.BoosterEndTime != nil {
		remaining := time.Until(*m.snap.BoosterEndTime).Round(time.Second)
		if remaining > 0 {
			s += boostStyle.Render(fmt.Sprintf("BOOSTED for %s more", remaining)) + "\n"
		}
	}
	if m.msg != "" {
		s += "\n" + errStyle.Render(m.msg) + "\n"
	}
	if m.lastErr != nil {
		s += "\n" + errStyle.Render("error: "+m.lastErr.Error()) + "\n"
	}
	s += "\n" + footerStyle.Render(fmt.Sprintf("%d taps this session  ·  space to tap  ·  q to quit", m.taps)) + "\n"
	return s
}
