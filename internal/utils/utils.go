package utils

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces collision-free identifiers for ledger records.
type IDGenerator interface {
	TransactionID() string
	ConversionID() string
	Reference() string
	EventID() string
}

// DefaultIDs issues UUIDv4 record ids and time-ordered ULID references.
type DefaultIDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewIDGenerator() *DefaultIDs {
	return &DefaultIDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *DefaultIDs) TransactionID() string {
	return uuid.NewString()
}

func (g *DefaultIDs) ConversionID() string {
	return "CONV-" + uuid.NewString()
}

// Reference returns a sortable reference such as "KUDI-01J9Z3...".
func (g *DefaultIDs) Reference() string {
	return "KUDI-" + g.ulid()
}

func (g *DefaultIDs) EventID() string {
	return "EVT-" + g.ulid()
}

func (g *DefaultIDs) ulid() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}
