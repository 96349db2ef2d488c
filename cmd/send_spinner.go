package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/neuroledger/internal/adapters/transport/ws"
	"github.com/bnema/neuroledger/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	sendOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	sendFailedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	sendDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// sendFunc performs one round trip and returns the server reply.
type sendFunc func(context.Context) (ws.Reply, error)

type replyMsg struct {
	reply ws.Reply
	err   error
	at    time.Time
}

// sendProgress tracks one in-flight command until the server answers.
type sendProgress struct {
	spinner spinner.Model
	command domain.Command
	target  string
	started time.Time
	now     func() time.Time
	send    tea.Cmd

	finished time.Time
	reply    ws.Reply
	err      error
	done     bool
}

func newSendProgress(command domain.Command, target string, now func() time.Time, send tea.Cmd) sendProgress {
	return sendProgress{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		command: command,
		target:  target,
		started: now(),
		now:     now,
		send:    send,
	}
}

func (m sendProgress) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.send)
}

func (m sendProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case replyMsg:
		m.done = true
		m.reply = msg.reply
		m.err = msg.err
		m.finished = msg.at
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m sendProgress) View() string {
	if !m.done {
		elapsed := m.now().Sub(m.started)
		return fmt.Sprintf("%s %s %s -> %s %s",
			m.spinner.View(),
			m.command.Kind.Name,
			shortID(m.command.ID),
			m.target,
			sendDimStyle.Render(formatElapsed(elapsed)),
		)
	}

	elapsed := formatElapsed(m.finished.Sub(m.started))
	switch {
	case m.err != nil:
		return sendFailedStyle.Render(fmt.Sprintf("x %s %s not delivered after %s", m.command.Kind.Name, shortID(m.command.ID), elapsed)) + "\n"
	case !m.reply.OK:
		return sendFailedStyle.Render(fmt.Sprintf("x %s %s rejected (%s) in %s", m.command.Kind.Name, shortID(m.command.ID), m.reply.Error, elapsed)) + "\n"
	default:
		return sendOKStyle.Render(fmt.Sprintf("ok %s %s answered in %s", m.command.Kind.Name, shortID(m.command.ID), elapsed)) + "\n"
	}
}

func shortID(id domain.CommandID) string {
	return id.String()[:8]
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// runSendSpinner renders progress for command on output until send returns.
func runSendSpinner(ctx context.Context, output io.Writer, command domain.Command, target string, send sendFunc) (ws.Reply, error) {
	sendCmd := func() tea.Msg {
		reply, err := send(ctx)
		return replyMsg{reply: reply, err: err, at: time.Now()}
	}

	p := tea.NewProgram(
		newSendProgress(command, target, time.Now, sendCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return ws.Reply{}, err
	}

	progress, ok := finalModel.(sendProgress)
	if !ok {
		return ws.Reply{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return progress.reply, progress.err
}
