// Package tui is the terminal front end: a create screen and a search screen
// sharing one request tracker and one notification manager.
package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/lifecycle"
	"github.com/jask/tokenshield/internal/notify"
	"github.com/jask/tokenshield/internal/search"
)

// Customers is the transport used by both screens.
type Customers interface {
	CreateCustomer(ctx context.Context, r customer.Record) (customer.Created, error)
	search.Lookup
}

// Options wires the app root. Tracker and Logger are optional.
type Options struct {
	Client          Customers
	Notifier        *notify.Manager
	Tracker         *lifecycle.Tracker
	IDLookup        bool
	Timeout         time.Duration
	ToastDuration   time.Duration
	SuccessDuration time.Duration
	Logger          *slog.Logger
}

// deps are shared by the screens of one app root.
type deps struct {
	client          Customers
	tracker         *lifecycle.Tracker
	notifier        *notify.Manager
	timeout         time.Duration
	toastDuration   time.Duration
	successDuration time.Duration
	logger          *slog.Logger
	keys            keyMap
}

// logFailure records a failed call. A rejected session token is logged as a
// warning with a login hint.
func (d *deps) logFailure(op string, err error) {
	if customer.IsUnauthorized(err) {
		d.logger.Warn(op+": session token rejected, run tokenshield -login", "err", err)
		return
	}
	d.logger.Error(op, "err", err)
}

type screen interface {
	title() string
	focus() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view() string
	// teardown abandons in-flight work and resets the form.
	teardown()
	bindings() []key.Binding
}

const (
	screenCreate = iota
	screenSearch
)

// Model is the bubbletea root.
type Model struct {
	deps     *deps
	create   *createScreen
	search   *searchScreen
	screens  []screen
	active   int
	spinner  spinner.Model
	spinning bool
	help     help.Model
	width    int
	quitting bool
}

func New(opts Options) Model {
	d := &deps{
		client:          opts.Client,
		tracker:         opts.Tracker,
		notifier:        opts.Notifier,
		timeout:         opts.Timeout,
		toastDuration:   opts.ToastDuration,
		successDuration: opts.SuccessDuration,
		logger:          opts.Logger,
		keys:            defaultKeys(),
	}
	if d.tracker == nil {
		d.tracker = lifecycle.NewTracker()
	}
	if d.notifier == nil {
		d.notifier = notify.New()
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.timeout <= 0 {
		d.timeout = 15 * time.Second
	}
	if d.successDuration <= 0 {
		d.successDuration = 3 * time.Second
	}

	dispatcher := search.NewDispatcher(opts.Client,
		search.WithIDLookup(opts.IDLookup),
		search.WithLogger(d.logger),
	)
	create := newCreateScreen(d)
	srch := newSearchScreen(d, dispatcher)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle

	return Model{
		deps:    d,
		create:  create,
		search:  srch,
		screens: []screen{create, srch},
		active:  screenCreate,
		spinner: sp,
		help:    help.New(),
		width:   100,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForToasts(m.deps.notifier.Changes()),
		m.screens[m.active].focus(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case toastsChangedMsg:
		m.deps.logger.Debug("toasts changed", "active", toastSummary(m.deps.notifier.Active()))
		return m, waitForToasts(m.deps.notifier.Changes())

	case spinner.TickMsg:
		if !m.deps.tracker.State().Pending {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// results go to their owner even when it is no longer active; the
	// screen's epoch check drops them.
	case createDoneMsg:
		return m, m.create.update(msg)
	case searchDoneMsg:
		return m, m.search.update(msg)

	case tea.KeyMsg:
		keys := m.deps.keys
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.deps.notifier.Close()
			return m, tea.Quit
		case key.Matches(msg, keys.Switch):
			return m, m.switchScreen()
		case key.Matches(msg, keys.Dismiss):
			if id, ok := newestDismissible(m.deps.notifier.Active()); ok {
				m.deps.notifier.Dismiss(id)
			}
			return m, nil
		}
	}

	cmd := m.screens[m.active].update(msg)
	return m, m.withSpinner(cmd)
}

func (m *Model) switchScreen() tea.Cmd {
	m.screens[m.active].teardown()
	m.active = (m.active + 1) % len(m.screens)
	m.deps.logger.Debug("screen switched", "to", m.screens[m.active].title())
	return m.screens[m.active].focus()
}

// withSpinner starts the spinner when an attempt has just begun.
func (m *Model) withSpinner(cmd tea.Cmd) tea.Cmd {
	if m.spinning || !m.deps.tracker.State().Pending {
		return cmd
	}
	m.spinning = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.screens[m.active].view())
	b.WriteString("\n\n")

	st := m.deps.tracker.State()
	switch {
	case st.Pending:
		b.WriteString(m.spinner.View() + pendingStyle.Render(" Working..."))
	case st.ErrorMessage != "":
		b.WriteString(errorSlotStyle.Render(st.ErrorMessage))
	}

	if toasts := renderToasts(m.deps.notifier.Active()); toasts != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(max(m.width-2, 0), lipgloss.Right, toasts))
	}

	b.WriteString("\n")
	keys := m.deps.keys
	b.WriteString(footerStyle.Render(m.help.View(helpKeys{
		screen: m.screens[m.active].bindings(),
		global: []key.Binding{keys.Switch, keys.Dismiss, keys.Quit},
	})))
	return appStyle.Render(b.String())
}

func (m Model) header() string {
	parts := []string{headerAppStyle.Render("TokenShield")}
	for i, s := range m.screens {
		style := inactiveTabStyle
		if i == m.active {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(s.title()))
	}
	return headerBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}
