package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-vendas-api/internal/ledger"
	"go-vendas-api/pkg/database"
	"go-vendas-api/pkg/validator"
)

var (
	ErrSaleNotFound     = errors.New("sale not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCustomerNotFound = errors.New("customer not found")

	ErrEANExists        = errors.New("EAN already exists")
	ErrEmailExists      = errors.New("email already exists")
	ErrEmailArchived    = errors.New("email belongs to a deleted customer")
	ErrCategoryInUse    = errors.New("category still has products")
	ErrCustomerHasSales = errors.New("customer has sales and cannot be deleted")
)

// Actor identifies who performs a mutation; it comes from the token claims.
type Actor struct {
	ID    string
	Name  string
	Email string
}

func (a Actor) userPayload() map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
	}
}

// validateRequest runs the struct tags and reports the first failure as a
// ledger validation error.
func validateRequest(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return &ledger.ValidationError{
			Field:   firstErr.FailedField,
			Message: fmt.Sprintf("failed on tag '%s'", firstErr.Tag),
		}
	}
	return nil
}

// persistenceError leaves domain errors untouched, turns values the database
// rejected into validation errors and wraps everything else coming out of the
// store. Only connection and serialization failures are marked retryable.
func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ledger.PersistenceError
	if errors.As(err, &pe) {
		if !pe.Transient {
			pe.Transient = database.IsTransient(pe.Err)
		}
		return err
	}
	switch {
	case ledger.IsValidation(err),
		errors.Is(err, ledger.ErrUniquenessConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		isDomainError(err):
		return err
	}
	if database.IsDataError(err) {
		log.Printf("⚠️ %s: value rejected by the database: %v", op, err)
		return ledger.NewValidationError("", "value rejected by the database: %v", err)
	}

	transient := database.IsTransient(err)
	if transient {
		log.Printf("⚠️ %s: transient database failure, safe to retry: %v", op, err)
	} else {
		log.Printf("❌ %s: %v", op, err)
	}
	return &ledger.PersistenceError{Op: op, Err: err, Transient: transient}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrSaleNotFound, ErrProductNotFound, ErrCategoryNotFound, ErrCustomerNotFound,
		ErrEANExists, ErrEmailExists, ErrEmailArchived, ErrCategoryInUse, ErrCustomerHasSales,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
