package generator

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]*$`)

func TestRecordFactory_PayloadSize(t *testing.T) {
	factory := NewRecordFactory(0)

	for _, size := range []int{0, 1, 2, 10, 63, 64, 100, 1024, 65536} {
		record := factory.Make(size)
		assert.Len(t, record.Payload, size, "payload size for %d", size)
		assert.Regexp(t, alphanumeric, record.Payload)
	}
}

func TestRecordFactory_NegativeSize(t *testing.T) {
	record := NewRecordFactory(1).Make(-5)
	assert.Empty(t, record.Payload)
}

func TestRecordFactory_Timestamp(t *testing.T) {
	before := time.Now()
	record := NewRecordFactory(1).Make(10)
	after := time.Now()

	assert.False(t, record.Timestamp.Before(before))
	assert.False(t, record.Timestamp.After(after))
}

func TestRecordFactory_SeedIsDeterministic(t *testing.T) {
	a := NewRecordFactory(42)
	b := NewRecordFactory(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Make(32).Payload, b.Make(32).Payload)
	}
}

func TestRecordFactory_RandomSeedsDiffer(t *testing.T) {
	// Factories created back to back must not share a stream
	a := NewRecordFactory(0)
	b := NewRecordFactory(0)

	assert.NotEqual(t, a.Make(64).Payload, b.Make(64).Payload)
}

func TestRecordFactory_UsesWholeAlphabet(t *testing.T) {
	factory := NewRecordFactory(7)
	seen := make(map[rune]bool)
	for i := 0; i < 200; i++ {
		for _, c := range factory.Make(100).Payload {
			seen[c] = true
		}
	}
	assert.Len(t, seen, len(payloadAlphabet))
}

func TestRecord_UnixSeconds(t *testing.T) {
	record := Record{Timestamp: time.Unix(1700000000, 123456789)}
	assert.Equal(t, "1700000000.123456", record.UnixSeconds())

	record = Record{Timestamp: time.Unix(1700000000, 0)}
	assert.Equal(t, "1700000000.000000", record.UnixSeconds())
}

func BenchmarkRecordFactory_Make(b *testing.B) {
	factory := NewRecordFactory(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = factory.Make(100)
	}
}

func TestRecordFactory_ZeroSeedUsesEntropy(t *testing.T) {
	require.NotZero(t, entropySeed())
}

func TestRecord_UnixSecondsPadsFraction(t *testing.T) {
	record := Record{Timestamp: time.Unix(1700000000, 42_000)}
	assert.Equal(t, "1700000000.000042", record.UnixSeconds())
}
