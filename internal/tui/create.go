package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/tokenshield/internal/customer"
)

const (
	MsgCreated      = "Customer created successfully!"
	MsgCreateFailed = "Failed to create customer. Please try again."
)

type createScreen struct {
	*deps
	inputs []textinput.Model
	errs   customer.ValidationErrors
	cursor int
	epoch  int
}

func newCreateScreen(d *deps) *createScreen {
	s := &createScreen{deps: d, errs: customer.ValidationErrors{}}
	for _, f := range customer.Fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Placeholder()
		in.CharLimit = 120
		s.inputs = append(s.inputs, in)
	}
	return s
}

func (s *createScreen) title() string { return "Create Customer" }

func (s *createScreen) bindings() []key.Binding {
	return []key.Binding{s.keys.Next, s.keys.Enter, s.keys.Submit}
}

func (s *createScreen) focus() tea.Cmd {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
	return s.inputs[s.cursor].Focus()
}

func (s *createScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case createDoneMsg:
		s.settle(msg)
		return nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Submit):
			return s.submit()
		case key.Matches(msg, s.keys.Enter):
			if s.cursor == len(s.inputs)-1 {
				return s.submit()
			}
			return s.move(1)
		case key.Matches(msg, s.keys.Next):
			return s.move(1)
		case key.Matches(msg, s.keys.Prev):
			return s.move(-1)
		}
	}

	before := s.inputs[s.cursor].Value()
	var cmd tea.Cmd
	s.inputs[s.cursor], cmd = s.inputs[s.cursor].Update(msg)
	if s.inputs[s.cursor].Value() != before {
		s.errs.Clear(customer.Fields[s.cursor])
	}
	return cmd
}

func (s *createScreen) move(dir int) tea.Cmd {
	s.cursor = (s.cursor + dir + len(s.inputs)) % len(s.inputs)
	return s.focus()
}

func (s *createScreen) record() customer.Record {
	var r customer.Record
	for i, f := range customer.Fields {
		r.Set(f, s.inputs[i].Value())
	}
	return r
}

// submit validates the form and, when it passes, starts the create call.
// A submission while another attempt is pending is ignored.
func (s *createScreen) submit() tea.Cmd {
	if s.tracker.State().Pending {
		return nil
	}
	rec := s.record()
	// a new validation pass replaces the previous submit error too
	s.tracker.Clear()
	s.errs = customer.Validate(rec)
	if !s.errs.Valid() {
		s.logger.Debug("create blocked by validation", "fields", len(s.errs))
		return nil
	}

	attempt := s.tracker.Begin()
	epoch := s.epoch
	client, timeout := s.client, s.timeout
	rec = rec.Trimmed()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		created, err := client.CreateCustomer(ctx, rec)
		return createDoneMsg{epoch: epoch, attempt: attempt, created: created, err: err}
	}
}

func (s *createScreen) settle(msg createDoneMsg) {
	if msg.epoch != s.epoch {
		s.logger.Debug("dropping stale create result", "epoch", msg.epoch)
		return
	}
	if msg.err != nil {
		if !msg.attempt.Fail(MsgCreateFailed) {
			return
		}
		s.logFailure("create customer", msg.err)
		s.notifier.Error(MsgCreateFailed, s.toastDuration)
		return
	}
	if !msg.attempt.Succeed() {
		return
	}
	s.logger.Info("customer created", "id", msg.created.ID)
	s.reset()
	s.notifier.Success(MsgCreated, s.successDuration)
}

func (s *createScreen) reset() {
	for i := range s.inputs {
		s.inputs[i].Reset()
	}
	s.errs = customer.ValidationErrors{}
	s.cursor = 0
	s.focus()
}

func (s *createScreen) teardown() {
	s.epoch++
	s.tracker.Cancel()
	s.reset()
}

func (s *createScreen) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Create Customer"))
	b.WriteString("\n")
	for i, f := range customer.Fields {
		label := labelStyle
		if i == s.cursor {
			label = focusLabel
		}
		b.WriteString(label.Render(f.Label()))
		b.WriteString(s.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := s.errs[f]; ok {
			b.WriteString(fieldErr.Render(msg))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
