package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jask/tokenshield/internal/customer"
)

var columns = map[customer.Field]string{
	customer.FieldName:          "name",
	customer.FieldAccountNumber: "account_number",
	customer.FieldEmail:         "email",
	customer.FieldAddress:       "address",
	customer.FieldPhone:         "phone",
}

// name and email compare case-insensitively
var nocase = map[customer.Field]bool{
	customer.FieldName:  true,
	customer.FieldEmail: true,
}

const selectCustomer = `SELECT id, name, account_number, email, address, phone, created_at FROM customers`

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CustomerRepo handles customers.
type CustomerRepo struct {
	db DBTX
}

func NewCustomerRepo(db DBTX) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func (r *CustomerRepo) Insert(ctx context.Context, c Customer) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO customers(id, name, account_number, email, address, phone, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`, c.ID, c.Name, c.AccountNumber, c.Email, c.Address, c.Phone, c.CreatedAt)
	return err
}

// Get returns customer.ErrNotFound when id is unknown.
func (r *CustomerRepo) Get(ctx context.Context, id string) (Customer, error) {
	row := r.db.QueryRowContext(ctx, selectCustomer+` WHERE id = ?`, id)
	return scanCustomer(row)
}

// FindBy returns the oldest customer whose field equals value. Rows created
// within the same second keep insertion order.
func (r *CustomerRepo) FindBy(ctx context.Context, f customer.Field, value string) (Customer, error) {
	col, ok := columns[f]
	if !ok {
		return Customer{}, fmt.Errorf("%w: unknown field %q", customer.ErrInvalidInput, f)
	}
	cond := col + ` = ?`
	if nocase[f] {
		cond = col + ` = ? COLLATE NOCASE`
	}
	row := r.db.QueryRowContext(ctx, selectCustomer+` WHERE `+cond+` ORDER BY created_at, rowid LIMIT 1`, value)
	return scanCustomer(row)
}

// Names lists every stored name, oldest first.
func (r *CustomerRepo) Names(ctx context.Context) ([]NameEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM customers ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NameEntry
	for rows.Next() {
		var n NameEntry
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *CustomerRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, err
}

func scanCustomer(row *sql.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.AccountNumber, &c.Email, &c.Address, &c.Phone, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, customer.ErrNotFound
	}
	return c, err
}
