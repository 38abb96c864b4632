package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jask/tokenshield/internal/customer"
)

// User-facing messages for each failure category.
const (
	MsgInvalidInput = "Please enter either a search term or customer ID"
	MsgNotFound     = "No customer found with the provided search criteria"
	MsgFailed       = "Failed to search customer. Please try again."
)

// Lookup is the transport used by the dispatcher. A nil record with a nil
// error means the service answered but matched nothing.
type Lookup interface {
	SearchCustomerByID(ctx context.Context, id string) (*customer.Record, error)
	SearchCustomerByToken(ctx context.Context, c customer.Criterion) (*customer.Record, error)
}

// Query holds the inputs of one search.
type Query struct {
	ID        string
	Criterion customer.Criterion
}

type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyID
	StrategyField
)

func (s Strategy) String() string {
	switch s {
	case StrategyID:
		return "id"
	case StrategyField:
		return "field"
	default:
		return "none"
	}
}

// Dispatcher picks exactly one lookup per query.
type Dispatcher struct {
	lookup   Lookup
	idLookup bool
	logger   *slog.Logger
}

type Option func(*Dispatcher)

// WithIDLookup enables or disables the identifier path. When disabled the ID
// of a query is ignored.
func WithIDLookup(enabled bool) Option {
	return func(d *Dispatcher) { d.idLookup = enabled }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

func NewDispatcher(lookup Lookup, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		lookup:   lookup,
		idLookup: true,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// IDLookup reports whether identifier search is enabled.
func (d *Dispatcher) IDLookup() bool { return d.idLookup }

// Plan applies the decision rule without calling the transport.
func (d *Dispatcher) Plan(q Query) (Strategy, error) {
	id := strings.TrimSpace(q.ID)
	if !d.idLookup {
		id = ""
	}
	switch {
	case id != "":
		return StrategyID, nil
	case !q.Criterion.Empty():
		if !q.Criterion.Field.Valid() {
			return StrategyNone, fmt.Errorf("%w: unknown field %q", customer.ErrInvalidInput, q.Criterion.Field)
		}
		return StrategyField, nil
	default:
		return StrategyNone, customer.ErrInvalidInput
	}
}

// Dispatch runs the single lookup chosen by Plan. It returns
// customer.ErrInvalidInput, customer.ErrNotFound or the transport error.
func (d *Dispatcher) Dispatch(ctx context.Context, q Query) (customer.Record, error) {
	strategy, err := d.Plan(q)
	if err != nil {
		return customer.Record{}, err
	}

	var rec *customer.Record
	switch strategy {
	case StrategyID:
		rec, err = d.lookup.SearchCustomerByID(ctx, strings.TrimSpace(q.ID))
	case StrategyField:
		rec, err = d.lookup.SearchCustomerByToken(ctx, customer.Criterion{
			Field: q.Criterion.Field,
			Query: strings.TrimSpace(q.Criterion.Query),
		})
	}
	d.logger.Debug("search dispatched", "strategy", strategy.String(), "err", err)

	switch {
	case err != nil && customer.IsNotFound(err):
		return customer.Record{}, fmt.Errorf("search by %s: %w", strategy, customer.ErrNotFound)
	case err != nil:
		return customer.Record{}, fmt.Errorf("search by %s: %w", strategy, err)
	case rec == nil:
		return customer.Record{}, fmt.Errorf("search by %s: %w", strategy, customer.ErrNotFound)
	}
	return *rec, nil
}

// Message maps a Dispatch error to the text shown in the error slot.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, customer.ErrInvalidInput):
		return MsgInvalidInput
	case customer.IsNotFound(err):
		return MsgNotFound
	default:
		return MsgFailed
	}
}
