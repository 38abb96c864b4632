package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/tokenshield/internal/notify"
)

// waitForToasts blocks until the manager reports a change. The app re-arms it
// after every toastsChangedMsg.
func waitForToasts(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return toastsChangedMsg{}
	}
}

func renderToasts(active []notify.Notification) string {
	if len(active) == 0 {
		return ""
	}
	rows := make([]string, 0, len(active))
	for _, n := range active {
		icon, style := "✓ ", toastSuccess
		if n.Kind == notify.KindError {
			icon, style = "✗ ", toastError
		}
		if n.State != notify.StateVisible {
			style = toastFading
		}
		rows = append(rows, style.Render(icon+n.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rows...)
}

// newestDismissible picks the most recent toast that is not already leaving.
func newestDismissible(active []notify.Notification) (string, bool) {
	for i := len(active) - 1; i >= 0; i-- {
		if active[i].State != notify.StateLeaving {
			return active[i].ID, true
		}
	}
	return "", false
}

func toastSummary(active []notify.Notification) string {
	parts := make([]string, 0, len(active))
	for _, n := range active {
		parts = append(parts, string(n.Kind)+":"+n.State.String())
	}
	return strings.Join(parts, ",")
}
