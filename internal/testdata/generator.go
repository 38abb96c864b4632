package testdata

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/database"
	"github.com/jask/tokenshield/internal/database/repository"
)

var (
	firstNames = []string{"Asha", "Ravi", "Meera", "Jo", "Kiran", "Priya", "Arjun", "Leela", "Dev", "Nisha"}
	lastNames  = []string{"Sharma", "Iyer", "Patel", "Smith", "Rao", "Menon", "Das", "Kapoor"}
	streets    = []string{"Main Street", "MG Road", "Lake View Road", "Park Avenue", "Station Road"}
	cities     = []string{"Pune", "Chennai", "Bengaluru", "Kochi", "Jaipur"}
)

// Customer returns a random record that passes customer.Validate.
func Customer(rng *rand.Rand) customer.Record {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	return customer.Record{
		Name:          first + " " + last,
		AccountNumber: digits(rng, 9+rng.Intn(10)),
		Email:         fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), rng.Intn(1000)),
		Address:       fmt.Sprintf("%d %s, %s", 1+rng.Intn(999), streets[rng.Intn(len(streets))], cities[rng.Intn(len(cities))]),
		Phone:         fmt.Sprintf("%d%s", 6+rng.Intn(4), digits(rng, 9)),
	}
}

// Seed inserts n sample customers in one transaction and returns them in
// insertion order. Record contents depend only on seed; a failed insert rolls
// back the whole batch.
func Seed(ctx context.Context, db *sql.DB, n int, seed int64) ([]repository.Customer, error) {
	rng := rand.New(rand.NewSource(seed))
	now := database.Now()
	out := make([]repository.Customer, 0, n)
	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		repo := repository.NewCustomerRepo(tx)
		for i := 0; i < n; i++ {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			c := repository.Customer{
				ID:        id.String(),
				Record:    Customer(rng),
				CreatedAt: now.Add(time.Duration(i) * time.Second),
			}
			if err := repo.Insert(ctx, c); err != nil {
				return fmt.Errorf("seed customer %d: %w", i, err)
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func digits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.Intn(10))
	}
	return string(b)
}
