package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/tokenshield/internal/api"
	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/database"
	"github.com/jask/tokenshield/internal/database/repository"
	"github.com/jask/tokenshield/internal/logging"
)

type staticToken string

func (s staticToken) Token() (string, error) { return string(s), nil }
func (s staticToken) Clear() error           { return nil }

var jo = customer.Record{
	Name:          "Jo Smith",
	AccountNumber: "123456789",
	Email:         "jo@example.com",
	Address:       "123 Main Street",
	Phone:         "9876543210",
}

func newVault(t *testing.T, token string) *httptest.Server {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))

	svc := NewService(repository.NewCustomerRepo(db), logging.Discard())
	srv := httptest.NewServer(NewServer(svc, token, logging.Discard()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, naming customer.Naming, token string) *api.Client {
	t.Helper()
	c, err := api.New(api.Options{BaseURL: srv.URL + "/api", Naming: naming, Tokens: staticToken(token)})
	require.NoError(t, err)
	return c
}

func TestRoundTripThroughClient(t *testing.T) {
	for _, naming := range []customer.Naming{customer.NamingCustomer, customer.NamingDetokenize} {
		t.Run(string(naming), func(t *testing.T) {
			ctx := context.Background()
			srv := newVault(t, "")
			c := newClient(t, srv, naming, "")

			created, err := c.CreateCustomer(ctx, jo)
			require.NoError(t, err)
			require.NotEmpty(t, created.ID)
			require.Equal(t, jo, created.Record)

			got, err := c.SearchCustomerByID(ctx, created.ID)
			require.NoError(t, err)
			require.Equal(t, jo, *got)

			for _, f := range customer.Fields {
				got, err := c.SearchCustomerByToken(ctx, customer.Criterion{Field: f, Query: jo.Get(f)})
				require.NoError(t, err, f)
				require.NotNil(t, got, f)
				require.Equal(t, jo, *got, f)
			}

			_, err = c.SearchCustomerByID(ctx, "missing")
			require.True(t, customer.IsNotFound(err))

			got, err = c.SearchCustomerByToken(ctx, customer.Criterion{Field: customer.FieldPhone, Query: "1111111111"})
			require.NoError(t, err)
			require.Nil(t, got)
		})
	}
}

func TestDetokenizeNameFallbacks(t *testing.T) {
	ctx := context.Background()
	srv := newVault(t, "")
	c := newClient(t, srv, "", "")

	_, err := c.CreateCustomer(ctx, jo)
	require.NoError(t, err)

	got, err := c.SearchCustomerByToken(ctx, customer.Criterion{Field: customer.FieldName, Query: "JO SMITH"})
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = c.SearchCustomerByToken(ctx, customer.Criterion{Field: customer.FieldName, Query: "Jo Smyth"})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, jo.Email, got.Email)

	got, err = c.SearchCustomerByToken(ctx, customer.Criterion{Field: customer.FieldName, Query: "Jon Smithers"})
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = c.SearchCustomerByToken(ctx, customer.Criterion{Field: customer.FieldEmail, Query: "JO@EXAMPLE.COM"})
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	srv := newVault(t, "")

	body := `{"customerName":"J","customerAccountNumber":"12","customerEmail":"bad","customerAddress":"short","customerPhone":"123"}`
	resp, err := http.Post(srv.URL+"/api/cid/customer", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "INVALID_INPUT", out.Error.Code)
	require.Equal(t, customer.MsgEmailInvalid, out.Error.Fields["customerEmail"])
	require.Len(t, out.Error.Fields, 5)
}

func TestDetokenizeRequiresSingleKnownKey(t *testing.T) {
	srv := newVault(t, "")
	for _, body := range []string{`{}`, `{"email":"a@b.co","mobileNo":"9876543210"}`, `{"ssn":"1"}`, `[1]`} {
		resp, err := http.Post(srv.URL+"/api/cid/detokenize", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestTokenRequired(t *testing.T) {
	ctx := context.Background()
	srv := newVault(t, "s3cret")

	_, err := newClient(t, srv, "", "wrong").SearchCustomerByID(ctx, "x")
	require.True(t, customer.IsUnauthorized(err))

	_, err = newClient(t, srv, "", "s3cret").SearchCustomerByID(ctx, "x")
	require.True(t, customer.IsNotFound(err))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDetokenizeReturnsOldestOfSameSecondDuplicates(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db))
	svc := NewService(repository.NewCustomerRepo(db), logging.Discard())

	for i := 0; i < 20; i++ {
		email := fmt.Sprintf("dup%d@example.com", i)
		a, b := jo, jo
		a.Email, b.Email = email, email
		b.AccountNumber = "555555555"

		first, err := svc.Create(ctx, a)
		require.NoError(t, err)
		_, err = svc.Create(ctx, b)
		require.NoError(t, err)

		got, err := svc.Detokenize(ctx, customer.Criterion{Field: customer.FieldEmail, Query: email})
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, first.ID, got.ID)
	}
}
