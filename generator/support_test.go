package generator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/observiq/tailgen/output"
)

var errWriteFailed = errors.New("write failed")

// mockSink implements output.Sink for testing
type mockSink struct {
	mu        sync.Mutex
	writes    [][]byte
	opens     int
	closes    int
	flushes   int
	delay     time.Duration
	failAfter int // fail the write following this many successful writes, 0 disables
	openErr   error
}

func newMockSink() *mockSink {
	return &mockSink{
		writes: make([][]byte, 0),
	}
}

func (m *mockSink) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return &output.OpenError{Target: "mock", Err: m.openErr}
	}
	m.opens++
	return nil
}

func (m *mockSink) Write(_ context.Context, record output.LogRecord) error {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAfter > 0 && len(m.writes) >= m.failAfter {
		return &output.WriteError{Target: "mock", Err: errWriteFailed}
	}

	m.writes = append(m.writes, record.Message)
	return nil
}

func (m *mockSink) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

func (m *mockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *mockSink) getWrites() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.writes...)
}

func (m *mockSink) getCloses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockSink) getFlushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// sinkSet hands out one mockSink per worker
type sinkSet struct {
	mu    sync.Mutex
	sinks map[int]*mockSink
	setup func(id int, s *mockSink)
}

func newSinkSet(setup func(id int, s *mockSink)) *sinkSet {
	return &sinkSet{
		sinks: make(map[int]*mockSink),
		setup: setup,
	}
}

func (s *sinkSet) factory(id int) (output.Sink, error) {
	sink := newMockSink()
	if s.setup != nil {
		s.setup(id, sink)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks[id] = sink
	return sink, nil
}

func (s *sinkSet) get(id int) *mockSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sinks[id]
}
