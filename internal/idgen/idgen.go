// Package idgen issues identifiers for new entities and portal share tokens.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind selects the prefix of an entity id.
type Kind string

const (
	KindContact      Kind = "c"
	KindTask         Kind = "t"
	KindProject      Kind = "proj"
	KindProjectTask  Kind = "pt"
	KindSubscription Kind = "mrr"
	KindChatMessage  Kind = "msg"
	KindEmail        Kind = "e"
)

// ShareTokenBytes is the entropy of a portal share token (128 bits).
const ShareTokenBytes = 16

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a time-ordered id such as "t_01hq3z...". Ids issued within the
// same millisecond stay unique and sortable.
func New(kind Kind) string {
	return NewAt(kind, time.Now())
}

// NewAt is New with an explicit clock reading.
func NewAt(kind Kind, t time.Time) string {
	mu.Lock()
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	mu.Unlock()
	if err != nil {
		panic(fmt.Sprintf("idgen: ulid: %v", err))
	}
	return string(kind) + "_" + strings.ToLower(id.String())
}

// InvoiceID builds "<prefix>-<year>-<seq>" where seq is derived from the
// clock's millisecond fragment and bumped until taken reports it free.
func InvoiceID(prefix string, t time.Time, taken func(string) bool) string {
	seq := int(t.UnixMilli() % 1000)
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("%s-%d-%03d", prefix, t.Year(), (seq+i)%1000)
		if taken == nil || !taken(id) {
			return id
		}
	}
	// All 1000 fragments used this year: widen the sequence.
	for n := 1000; ; n++ {
		id := fmt.Sprintf("%s-%d-%d", prefix, t.Year(), n)
		if !taken(id) {
			return id
		}
	}
}

// ShareToken returns 128 bits from crypto/rand, lowercase hex encoded.
// It is the only access control on a public portal URL.
func ShareToken() (string, error) {
	b := make([]byte, ShareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("idgen: share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
