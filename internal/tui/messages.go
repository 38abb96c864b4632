package tui

import (
	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/lifecycle"
)

// createDoneMsg settles a create attempt started under epoch.
type createDoneMsg struct {
	epoch   int
	attempt lifecycle.Attempt
	created customer.Created
	err     error
}

// searchDoneMsg settles a search attempt started under epoch.
type searchDoneMsg struct {
	epoch   int
	attempt lifecycle.Attempt
	record  customer.Record
	err     error
}

// toastsChangedMsg is sent whenever the notification manager mutates.
type toastsChangedMsg struct{}
