package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

const (
	saleNumberTag    = "VND"
	saleNumberDigits = 6

	// DefaultMaxAttempts bounds how often a creation is re-run after a
	// sale_number collision at commit time.
	DefaultMaxAttempts = 5
)

// NumberStore is the read side the allocator needs. Implementations must
// include soft-deleted sales so that numbers are never handed out twice.
type NumberStore interface {
	// HighestSaleNumber returns the numerically highest sale_number starting
	// with prefix, or "" when there is none.
	HighestSaleNumber(ctx context.Context, prefix string) (string, error)
	SaleNumberExists(ctx context.Context, number string) (bool, error)
}

// SaleNumberPrefix returns "VND-{year}-".
func SaleNumberPrefix(year int) string {
	return fmt.Sprintf("%s-%d-", saleNumberTag, year)
}

// FormatSaleNumber returns "VND-{year}-{seq zero padded to 6}".
func FormatSaleNumber(year, seq int) string {
	return fmt.Sprintf("%s%0*d", SaleNumberPrefix(year), saleNumberDigits, seq)
}

// ParseSaleNumber splits a sale number into its year and sequence.
func ParseSaleNumber(number string) (year, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != saleNumberTag {
		return 0, 0, fmt.Errorf("malformed sale number %q", number)
	}
	if year, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("malformed sale number %q: bad year", number)
	}
	if len(parts[2]) < saleNumberDigits {
		return 0, 0, fmt.Errorf("malformed sale number %q: short sequence", number)
	}
	if seq, err = strconv.Atoi(parts[2]); err != nil || seq <= 0 {
		return 0, 0, fmt.Errorf("malformed sale number %q: bad sequence", number)
	}
	return year, seq, nil
}

// Allocator hands out sale numbers scoped per calendar year. The scan is only
// an optimisation; the unique index on sale_number is what guarantees no
// duplicates, and Run re-executes the whole attempt when it fires.
type Allocator struct {
	MaxAttempts int
	Location    *time.Location
}

// NewAllocator returns an Allocator that derives the year in loc.
func NewAllocator(maxAttempts int, loc *time.Location) *Allocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Allocator{MaxAttempts: maxAttempts, Location: loc}
}

// Year returns the calendar year of at in the allocator's location.
func (a *Allocator) Year(at time.Time) int {
	return at.In(a.Location).Year()
}

// Next computes the next free sale number for the year of at.
func (a *Allocator) Next(ctx context.Context, store NumberStore, at time.Time) (string, error) {
	year := a.Year(at)
	prefix := SaleNumberPrefix(year)

	highest, err := store.HighestSaleNumber(ctx, prefix)
	if err != nil {
		return "", &PersistenceError{Op: "scan sale numbers", Err: err}
	}

	next := 1
	if highest != "" {
		_, seq, err := ParseSaleNumber(highest)
		if err != nil {
			return "", &PersistenceError{Op: "scan sale numbers", Err: err}
		}
		next = seq + 1
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := FormatSaleNumber(year, next)
		exists, err := store.SaleNumberExists(ctx, candidate)
		if err != nil {
			return "", &PersistenceError{Op: "check sale number", Err: err}
		}
		if !exists {
			return candidate, nil
		}
		next++
	}
}

// Run executes attempt and re-executes it while it fails with
// ErrUniquenessConflict, up to MaxAttempts times. attempt is expected to call
// Next and do all of its writes in one transaction, so a failed try leaves
// nothing behind and the next one rescans from scratch.
func (a *Allocator) Run(ctx context.Context, attempt func(ctx context.Context) error) error {
	for i := 1; i <= a.MaxAttempts; i++ {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrUniquenessConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Printf("⚠️ sale number taken concurrently, retrying (%d/%d)", i, a.MaxAttempts)
	}
	return fmt.Errorf("%w after %d attempts", ErrAllocationExhausted, a.MaxAttempts)
}
