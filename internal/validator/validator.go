// Package validator reads a generated log file back and reports how many
// records arrived, how many were duplicated and how many went missing.
package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nxadm/tail"
	"go.uber.org/zap"
)

const (
	// RecordIDLength is the number of trailing payload characters used
	// to identify a record.
	RecordIDLength = 8

	// DefaultIdleTimeout is how long a followed file may stay silent
	// before validation ends.
	DefaultIdleTimeout = 10 * time.Second
)

var (
	plainLine = regexp.MustCompile(`^\d+\.\d+ ([A-Za-z0-9]*)$`)
	payload   = regexp.MustCompile(`^[A-Za-z0-9]*$`)
	timestamp = regexp.MustCompile(`^\d+\.\d+$`)
)

// Options configures a validation run.
type Options struct {
	// Path is the file to read
	Path string
	// Expected is the number of records the generator wrote. Zero skips
	// the loss figures.
	Expected int
	// Follow keeps reading appended lines until IdleTimeout passes
	// without a new line
	Follow bool
	// IdleTimeout bounds the silence tolerated in follow mode
	IdleTimeout time.Duration
	// Poll watches the file by polling instead of inotify
	Poll bool
}

// Validate validates the options
func (o Options) Validate() error {
	if strings.TrimSpace(o.Path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if o.Expected < 0 {
		return fmt.Errorf("expected records cannot be negative, got %d", o.Expected)
	}
	if o.IdleTimeout < 0 {
		return fmt.Errorf("idle timeout cannot be negative, got %s", o.IdleTimeout)
	}
	return nil
}

// Results is the validation report.
type Results struct {
	TotalInputRecord     int
	TotalRecordFound     int
	UniqueRecordFound    int
	DuplicateRecordFound int
	MalformedRecordFound int
	MissingRecordFound   int
	PercentLoss          int
}

// JSON renders the report as a single JSON object.
func (r Results) JSON() ([]byte, error) {
	return json.Marshal(r)
}

// Validate reads every line of opts.Path and tallies the records found.
func Validate(ctx context.Context, logger *zap.Logger, opts Options) (Results, error) {
	if logger == nil {
		return Results{}, fmt.Errorf("logger cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return Results{}, fmt.Errorf("options validation failed: %w", err)
	}
	logger = logger.Named("validator")

	t, err := tail.TailFile(opts.Path, tail.Config{
		MustExist: true,
		Follow:    opts.Follow,
		ReOpen:    opts.Follow,
		Poll:      opts.Poll,
		Logger:    zap.NewStdLog(logger),
	})
	if err != nil {
		return Results{}, fmt.Errorf("tail %s: %w", opts.Path, err)
	}
	defer func() {
		if err := t.Stop(); err != nil {
			logger.Debug("Failed to stop tail", zap.Error(err))
		}
		t.Cleanup()
	}()

	c := newCounter()

	idle := opts.IdleTimeout
	if idle == 0 {
		idle = DefaultIdleTimeout
	}
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		// The idle timer only ends a followed read. Without Follow the
		// line channel closes at end of file.
		var timeout <-chan time.Time
		if opts.Follow {
			timeout = timer.C
		}

		select {
		case <-ctx.Done():
			logger.Info("Validation cancelled", zap.Int("records", c.total))
			return c.results(opts.Expected), nil
		case <-timeout:
			logger.Info("No new lines, ending validation",
				zap.Duration("idle_timeout", idle),
				zap.Int("records", c.total),
			)
			return c.results(opts.Expected), nil
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Wait(); err != nil && !errors.Is(err, tail.ErrStop) {
					return Results{}, fmt.Errorf("read %s: %w", opts.Path, err)
				}
				return c.results(opts.Expected), nil
			}
			if line.Err != nil {
				return Results{}, fmt.Errorf("read %s: %w", opts.Path, line.Err)
			}
			if !c.add(line.Text) {
				logger.Debug("Malformed record", zap.Int("line", line.Num), zap.String("text", line.Text))
			}
			if opts.Follow {
				resetTimer(timer, idle)
			}
		}
	}
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}

// counter tallies records by id
type counter struct {
	seen      map[string]struct{}
	total     int
	malformed int
}

func newCounter() *counter {
	return &counter{seen: make(map[string]struct{})}
}

// add records one line and reports whether it was well formed
func (c *counter) add(line string) bool {
	p, ok := parsePayload(line)
	if !ok {
		c.malformed++
		return false
	}
	c.total++
	c.seen[RecordID(p)] = struct{}{}
	return true
}

func (c *counter) results(expected int) Results {
	unique := len(c.seen)
	r := Results{
		TotalInputRecord:     expected,
		TotalRecordFound:     c.total,
		UniqueRecordFound:    unique,
		DuplicateRecordFound: c.total - unique,
		MalformedRecordFound: c.malformed,
	}
	if expected > 0 {
		missing := max(expected-unique, 0)
		r.MissingRecordFound = missing
		r.PercentLoss = missing * 100 / expected
	}
	return r
}

// RecordID returns the last RecordIDLength characters of a payload, or the
// whole payload when it is shorter.
func RecordID(p string) string {
	if len(p) <= RecordIDLength {
		return p
	}
	return p[len(p)-RecordIDLength:]
}

// parsePayload extracts the payload of a plain or json line
func parsePayload(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if strings.HasPrefix(line, "{") {
		return parseJSONPayload(line)
	}

	m := plainLine.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

type jsonRecord struct {
	Timestamp json.Number `json:"timestamp"`
	Message   *string     `json:"message"`
}

func parseJSONPayload(line string) (string, bool) {
	var rec jsonRecord
	dec := json.NewDecoder(bytes.NewReader([]byte(line)))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return "", false
	}
	if rec.Message == nil || !timestamp.MatchString(rec.Timestamp.String()) {
		return "", false
	}
	if !payload.MatchString(*rec.Message) {
		return "", false
	}
	return *rec.Message, true
}
