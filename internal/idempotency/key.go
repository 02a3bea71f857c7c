// Package idempotency generates the advisory keys attached to mutating
// backend requests so the backend may deduplicate retried attempts.
package idempotency

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header is the request header carrying the key.
const Header = "X-Idempotency-Key"

// Generator produces fresh keys. The zero value is not usable; use New.
type Generator struct {
	random func() (uuid.UUID, error)
	now    func() time.Time
	suffix func() uint64
}

// New returns a Generator backed by crypto/rand UUIDs.
func New() *Generator {
	return &Generator{
		random: uuid.NewRandom,
		now:    time.Now,
		suffix: rand.Uint64,
	}
}

// Key returns a fresh key: a random UUID when the cryptographic source is
// available, otherwise "<unix-millis>-<hex>" from the clock and a
// pseudo-random suffix.
func (g *Generator) Key() string {
	id, err := g.random()
	if err == nil {
		return id.String()
	}
	zap.L().Debug("idempotency: random source unavailable, using fallback key", zap.Error(err))
	return fmt.Sprintf("%d-%016x", g.now().UnixMilli(), g.suffix())
}

var defaultGenerator = New()

// NewKey returns a fresh key from the default generator.
func NewKey() string {
	return defaultGenerator.Key()
}
