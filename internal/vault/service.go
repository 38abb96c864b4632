// Package vault is a local stand-in for the tokenization service. It stores
// customers in sqlite and answers the same endpoints the client calls.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/database"
	"github.com/jask/tokenshield/internal/database/repository"
)

// MaxNameDistance bounds the fuzzy fallback of name lookups.
const MaxNameDistance = 2

// Service implements create, lookup and detokenize on top of the repository.
type Service struct {
	repo   *repository.CustomerRepo
	logger *slog.Logger
}

func NewService(repo *repository.CustomerRepo, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates r and stores it under a fresh id. Invalid input is
// returned as customer.ValidationErrors.
func (s *Service) Create(ctx context.Context, r customer.Record) (repository.Customer, error) {
	r = r.Trimmed()
	if errs := customer.Validate(r); !errs.Valid() {
		return repository.Customer{}, errs
	}
	id, err := uuid.NewV7()
	if err != nil {
		return repository.Customer{}, fmt.Errorf("customer id: %w", err)
	}
	c := repository.Customer{
		ID:        id.String(),
		Record:    r,
		CreatedAt: database.Now(),
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return repository.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	s.logger.Info("customer created", slog.String("id", c.ID))
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (repository.Customer, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// Detokenize finds the customer matching crit. Names that match nothing
// exactly fall back to the closest stored name within MaxNameDistance.
// A nil customer means no match.
func (s *Service) Detokenize(ctx context.Context, crit customer.Criterion) (*repository.Customer, error) {
	query := strings.TrimSpace(crit.Query)
	if query == "" {
		return nil, customer.ErrInvalidInput
	}
	c, err := s.repo.FindBy(ctx, crit.Field, query)
	switch {
	case err == nil:
		return &c, nil
	case !errors.Is(err, customer.ErrNotFound):
		return nil, err
	case crit.Field != customer.FieldName:
		return nil, nil
	}

	id, ok, err := s.closestName(ctx, query)
	if err != nil || !ok {
		return nil, err
	}
	c, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fuzzy name match", slog.String("query", query), slog.String("id", id))
	return &c, nil
}

func (s *Service) closestName(ctx context.Context, query string) (string, bool, error) {
	names, err := s.repo.Names(ctx)
	if err != nil {
		return "", false, err
	}
	q := strings.ToLower(query)
	best, bestDist := "", MaxNameDistance+1
	for _, n := range names {
		// strict less keeps the oldest on ties
		if d := levenshtein.ComputeDistance(q, strings.ToLower(n.Name)); d < bestDist {
			best, bestDist = n.ID, d
		}
	}
	return best, best != "", nil
}
