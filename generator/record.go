package generator

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// payloadAlphabet is the set of characters payloads are drawn from
const payloadAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Record is a single generated log record.
type Record struct {
	// Timestamp is the time the record was constructed
	Timestamp time.Time
	// Payload is the random alphanumeric body of the record
	Payload string
}

// UnixSeconds renders the timestamp as fractional seconds since the epoch
// with microsecond precision.
func (r Record) UnixSeconds() string {
	us := r.Timestamp.UnixMicro()
	frac := strconv.FormatInt(us%1_000_000, 10)
	return strconv.FormatInt(us/1_000_000, 10) + "." + strings.Repeat("0", 6-len(frac)) + frac
}

// RecordFactory builds records from a random source owned by a single worker.
// It is not safe for concurrent use.
type RecordFactory struct {
	rng *rand.Rand
	now func() time.Time
}

// NewRecordFactory creates a record factory seeded with seed. A zero seed is
// replaced with one read from crypto/rand.
func NewRecordFactory(seed int64) *RecordFactory {
	if seed == 0 {
		seed = entropySeed()
	}

	return &RecordFactory{
		rng: rand.New(rand.NewSource(seed)), // #nosec G404 -- payload entropy, not security
		now: time.Now,
	}
}

// Make returns a record with a payload of exactly size characters.
// A negative size yields an empty payload.
func (f *RecordFactory) Make(size int) Record {
	if size < 0 {
		size = 0
	}

	payload := make([]byte, size)
	for i := range payload {
		payload[i] = payloadAlphabet[f.rng.Intn(len(payloadAlphabet))]
	}

	return Record{
		Timestamp: f.now(),
		Payload:   string(payload),
	}
}

func entropySeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	// #nosec G115 -- any bit pattern is a valid seed
	return int64(binary.LittleEndian.Uint64(b[:]))
}
