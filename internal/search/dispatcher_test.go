package search

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/tokenshield/internal/customer"
)

type fakeLookup struct {
	byID    []string
	byToken []customer.Criterion
	rec     *customer.Record
	err     error
}

func (f *fakeLookup) SearchCustomerByID(_ context.Context, id string) (*customer.Record, error) {
	f.byID = append(f.byID, id)
	return f.rec, f.err
}

func (f *fakeLookup) SearchCustomerByToken(_ context.Context, c customer.Criterion) (*customer.Record, error) {
	f.byToken = append(f.byToken, c)
	return f.rec, f.err
}

var jo = customer.Record{
	Name:          "Jo",
	AccountNumber: "123456789",
	Email:         "a@b.co",
	Address:       "123 Main Street",
	Phone:         "9876543210",
}

func TestIdentifierTakesPriority(t *testing.T) {
	lookup := &fakeLookup{rec: &jo}
	d := NewDispatcher(lookup)

	got, err := d.Dispatch(context.Background(), Query{
		ID:        "C100",
		Criterion: customer.Criterion{Field: customer.FieldName, Query: "Jo"},
	})
	require.NoError(t, err)
	require.Equal(t, jo, got)
	require.Equal(t, []string{"C100"}, lookup.byID)
	require.Empty(t, lookup.byToken, "field criterion must not be sent")
}

func TestEmptyInputFailsBeforeAnyCall(t *testing.T) {
	lookup := &fakeLookup{rec: &jo}
	d := NewDispatcher(lookup)

	_, err := d.Dispatch(context.Background(), Query{
		ID:        "",
		Criterion: customer.Criterion{Field: customer.FieldName, Query: ""},
	})
	require.ErrorIs(t, err, customer.ErrInvalidInput)
	require.Equal(t, MsgInvalidInput, Message(err))

	_, err = d.Dispatch(context.Background(), Query{ID: "   ", Criterion: customer.Criterion{Field: customer.FieldEmail, Query: "\t"}})
	require.ErrorIs(t, err, customer.ErrInvalidInput)

	require.Empty(t, lookup.byID)
	require.Empty(t, lookup.byToken)
}

func TestFieldSearchSendsTrimmedCriterion(t *testing.T) {
	lookup := &fakeLookup{rec: &jo}
	d := NewDispatcher(lookup)

	_, err := d.Dispatch(context.Background(), Query{
		ID:        "  ",
		Criterion: customer.Criterion{Field: customer.FieldPhone, Query: " 9876543210 "},
	})
	require.NoError(t, err)
	require.Empty(t, lookup.byID)
	require.Equal(t, []customer.Criterion{{Field: customer.FieldPhone, Query: "9876543210"}}, lookup.byToken)
}

func TestIDLookupDisabledIgnoresIdentifier(t *testing.T) {
	lookup := &fakeLookup{rec: &jo}
	d := NewDispatcher(lookup, WithIDLookup(false))
	require.False(t, d.IDLookup())

	_, err := d.Dispatch(context.Background(), Query{
		ID:        "C100",
		Criterion: customer.Criterion{Field: customer.FieldAddress, Query: "123 Main Street"},
	})
	require.NoError(t, err)
	require.Empty(t, lookup.byID)
	require.Len(t, lookup.byToken, 1)

	_, err = d.Dispatch(context.Background(), Query{ID: "C100"})
	require.ErrorIs(t, err, customer.ErrInvalidInput)
}

func TestUnknownFieldIsInvalidInput(t *testing.T) {
	lookup := &fakeLookup{rec: &jo}
	d := NewDispatcher(lookup)

	strategy, err := d.Plan(Query{Criterion: customer.Criterion{Field: "ssn", Query: "123"}})
	require.Equal(t, StrategyNone, strategy)
	require.ErrorIs(t, err, customer.ErrInvalidInput)
	require.Empty(t, lookup.byToken)
}

func TestResultNormalization(t *testing.T) {
	cases := []struct {
		name    string
		rec     *customer.Record
		err     error
		wantErr error
		wantMsg string
	}{
		{name: "nil record", wantErr: customer.ErrNotFound, wantMsg: MsgNotFound},
		{
			name:    "404 transport",
			err:     &customer.TransportError{Op: "search by id", Status: http.StatusNotFound},
			wantErr: customer.ErrNotFound,
			wantMsg: MsgNotFound,
		},
		{
			name:    "500 transport",
			err:     &customer.TransportError{Op: "search by id", Status: http.StatusInternalServerError},
			wantMsg: MsgFailed,
		},
		{
			name:    "network",
			err:     &customer.TransportError{Op: "search by id", Err: errors.New("connection refused")},
			wantMsg: MsgFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDispatcher(&fakeLookup{rec: tc.rec, err: tc.err})
			_, err := d.Dispatch(context.Background(), Query{ID: "C100"})
			require.Error(t, err)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				var te *customer.TransportError
				require.ErrorAs(t, err, &te)
				require.False(t, errors.Is(err, customer.ErrNotFound))
			}
			require.Equal(t, tc.wantMsg, Message(err))
		})
	}
}

func TestMessageNil(t *testing.T) {
	require.Empty(t, Message(nil))
}
