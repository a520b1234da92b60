package hash

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// Hasher wraps bcrypt behind a bounded worker slot so that a burst of
// signups or logins cannot occupy every goroutine with CPU-heavy hashing.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

func New(workers int64) *Hasher {
	if workers <= 0 {
		workers = 4
	}
	return &Hasher{
		cost: bcrypt.DefaultCost,
		sem:  semaphore.NewWeighted(workers),
	}
}

func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Verify reports whether password matches the stored hash. A malformed
// stored hash fails closed and never surfaces as an error.
func (h *Hasher) Verify(ctx context.Context, password, hashed string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
