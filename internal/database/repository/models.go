package repository

import (
	"time"

	"github.com/jask/tokenshield/internal/customer"
)

// Customer represents a customers row.
type Customer struct {
	ID string
	customer.Record
	CreatedAt time.Time
}

// NameEntry is the projection used for fuzzy name matching.
type NameEntry struct {
	ID   string
	Name string
}
