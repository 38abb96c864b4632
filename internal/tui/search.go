package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/search"
)

// searchFields is the ctrl+f cycle order.
var searchFields = []customer.Field{
	customer.FieldName,
	customer.FieldEmail,
	customer.FieldPhone,
	customer.FieldAccountNumber,
	customer.FieldAddress,
}

type searchScreen struct {
	*deps
	dispatcher *search.Dispatcher
	id         textinput.Model
	query      textinput.Model
	field      int
	cursor     int
	result     *customer.Record
	epoch      int
}

func newSearchScreen(d *deps, dispatcher *search.Dispatcher) *searchScreen {
	id := textinput.New()
	id.Prompt = ""
	id.Placeholder = "Enter customer ID"
	id.CharLimit = 64

	query := textinput.New()
	query.Prompt = ""
	query.CharLimit = 120

	s := &searchScreen{deps: d, dispatcher: dispatcher, id: id, query: query}
	s.query.Placeholder = s.currentField().Placeholder()
	return s
}

func (s *searchScreen) title() string { return "Search Customer" }

func (s *searchScreen) bindings() []key.Binding {
	return []key.Binding{s.keys.Next, s.keys.Field, s.keys.Enter, s.keys.Reset}
}

// inputs lists the focusable inputs; the id input only exists with id lookup.
func (s *searchScreen) inputs() []*textinput.Model {
	if s.dispatcher.IDLookup() {
		return []*textinput.Model{&s.id, &s.query}
	}
	return []*textinput.Model{&s.query}
}

func (s *searchScreen) currentField() customer.Field { return searchFields[s.field] }

func (s *searchScreen) focus() tea.Cmd {
	ins := s.inputs()
	if s.cursor >= len(ins) {
		s.cursor = 0
	}
	s.id.Blur()
	s.query.Blur()
	return ins[s.cursor].Focus()
}

func (s *searchScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchDoneMsg:
		s.settle(msg)
		return nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Submit), key.Matches(msg, s.keys.Enter):
			return s.submit()
		case key.Matches(msg, s.keys.Field):
			s.field = (s.field + 1) % len(searchFields)
			s.query.Placeholder = s.currentField().Placeholder()
			return nil
		case key.Matches(msg, s.keys.Reset):
			s.teardown()
			return s.focus()
		case key.Matches(msg, s.keys.Next):
			return s.move(1)
		case key.Matches(msg, s.keys.Prev):
			return s.move(-1)
		}
	}

	in := s.inputs()[s.cursor]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

func (s *searchScreen) move(dir int) tea.Cmd {
	n := len(s.inputs())
	s.cursor = (s.cursor + dir + n) % n
	return s.focus()
}

func (s *searchScreen) currentQuery() search.Query {
	q := search.Query{Criterion: customer.Criterion{Field: s.currentField(), Query: s.query.Value()}}
	if s.dispatcher.IDLookup() {
		q.ID = s.id.Value()
	}
	return q
}

// submit runs the dispatcher's decision rule. Missing input is reported in
// the error slot without starting an attempt.
func (s *searchScreen) submit() tea.Cmd {
	if s.tracker.State().Pending {
		return nil
	}
	q := s.currentQuery()
	s.result = nil
	if _, err := s.dispatcher.Plan(q); err != nil {
		s.tracker.SetError(search.Message(err))
		return nil
	}

	attempt := s.tracker.Begin()
	epoch := s.epoch
	dispatcher, timeout := s.dispatcher, s.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rec, err := dispatcher.Dispatch(ctx, q)
		return searchDoneMsg{epoch: epoch, attempt: attempt, record: rec, err: err}
	}
}

func (s *searchScreen) settle(msg searchDoneMsg) {
	if msg.epoch != s.epoch {
		s.logger.Debug("dropping stale search result", "epoch", msg.epoch)
		return
	}
	if msg.err != nil {
		text := search.Message(msg.err)
		if !msg.attempt.Fail(text) {
			return
		}
		// missing input and no match stay in the error slot only
		if errors.Is(msg.err, customer.ErrInvalidInput) || customer.IsNotFound(msg.err) {
			return
		}
		s.logFailure("search customer", msg.err)
		s.notifier.Error(text, s.toastDuration)
		return
	}
	if !msg.attempt.Succeed() {
		return
	}
	rec := msg.record
	s.result = &rec
}

func (s *searchScreen) teardown() {
	s.epoch++
	s.tracker.Cancel()
	s.id.Reset()
	s.query.Reset()
	s.result = nil
	s.cursor = 0
}

func (s *searchScreen) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Search Customer"))
	b.WriteString("\n")

	ins := s.inputs()
	row := func(label string, in *textinput.Model) {
		style := labelStyle
		if in == ins[s.cursor] {
			style = focusLabel
		}
		b.WriteString(style.Render(label))
		b.WriteString(in.View())
		b.WriteString("\n")
	}

	if s.dispatcher.IDLookup() {
		row("Customer ID", &s.id)
		b.WriteString(hintStyle.Render("or search by field"))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("Search By"))
	for i, f := range searchFields {
		style := selectorOff
		if i == s.field {
			style = selectorOn
		}
		b.WriteString(style.Render(f.Label()))
	}
	b.WriteString("\n")
	row(s.currentField().Label(), &s.query)

	if s.result != nil {
		b.WriteString(renderCard(*s.result))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCard(r customer.Record) string {
	lines := make([]string, 0, len(customer.Fields)+1)
	lines = append(lines, titleStyle.UnsetMarginBottom().Render("Customer Details"))
	for _, f := range customer.Fields {
		v := r.Get(f)
		if v == "" {
			v = warnStyle.Render("n/a")
		}
		lines = append(lines, cardKeyStyle.Render(f.Label())+v)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
