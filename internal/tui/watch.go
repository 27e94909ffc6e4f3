// Package tui renders a live terminal view of one order's payment status,
// fed by a bridge observer.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hrejuh/upiwatch/internal/bridge"
	"github.com/hrejuh/upiwatch/internal/model"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(18)
	confirmedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	waitingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

type snapshotMsg model.OrderPaymentStatus

type finishedMsg bridge.Outcome

// watchModel is the bubbletea model behind `upiwatch watch --tui`.
type watchModel struct {
	snapshot  *model.OrderPaymentStatus
	orderID   string
	outcome   bridge.Outcome
	spinner   spinner.Model
	delivered int
	quitting  bool
}

func newWatchModel(orderID string) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return watchModel{
		orderID: orderID,
		outcome: bridge.OutcomeRunning,
		spinner: s,
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case snapshotMsg:
		snapshot := model.OrderPaymentStatus(msg)
		m.snapshot = &snapshot
		m.delivered++
		return m, nil
	case finishedMsg:
		m.outcome = bridge.Outcome(msg)
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.quitting && m.snapshot == nil {
		return ""
	}

	view := titleStyle.Render("Watching order "+m.orderID) + "\n\n"

	if m.snapshot == nil {
		view += m.spinner.View() + " waiting for first snapshot...\n"
	} else {
		confirmed := waitingStyle.Render("no")
		if m.snapshot.PaymentConfirmed {
			confirmed = confirmedStyle.Render("yes")
		}
		view += labelStyle.Render("Order status") + string(m.snapshot.Status) + "\n"
		view += labelStyle.Render("Payment confirmed") + confirmed + "\n"
		view += labelStyle.Render("Auto verified") + fmt.Sprintf("%v", m.snapshot.AutoVerified) + "\n"
		if m.snapshot.VerificationID != "" {
			view += labelStyle.Render("Verification") + m.snapshot.VerificationID + "\n"
		}
		view += labelStyle.Render("Snapshots") + fmt.Sprintf("%d", m.delivered) + "\n"
	}

	view += "\n"
	switch m.outcome {
	case bridge.OutcomeRunning:
		view += m.spinner.View() + " " + helpStyle.Render("watching, press q to stop")
	case bridge.OutcomeConfirmed:
		view += confirmedStyle.Render("✓ payment confirmed")
	case bridge.OutcomeExhausted:
		view += waitingStyle.Render("watch budget exhausted without confirmation")
	case bridge.OutcomeCancelled:
		view += helpStyle.Render("watch cancelled")
	}
	return view + "\n"
}

// Watch runs the live view until the observation ends or the user quits.
// It returns the terminal outcome of the observation.
func Watch(ctx context.Context, observer bridge.StatusObserver, orderID string) (bridge.Outcome, error) {
	program := tea.NewProgram(newWatchModel(orderID))

	handle, err := observer.Observe(ctx, orderID, func(s model.OrderPaymentStatus) {
		program.Send(snapshotMsg(s))
	})
	if err != nil {
		return bridge.OutcomeRunning, fmt.Errorf("failed to start observation: %w", err)
	}
	defer handle.Stop()

	go func() {
		<-handle.Done()
		program.Send(finishedMsg(handle.Result()))
	}()

	if _, err := program.Run(); err != nil {
		return handle.Result(), fmt.Errorf("watch view failed: %w", err)
	}
	return handle.Result(), nil
}
