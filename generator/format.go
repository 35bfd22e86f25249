package generator

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// LineFormat selects how a record is rendered into a line.
type LineFormat string

const (
	// FormatPlain renders "<unix-seconds> <payload>"
	FormatPlain LineFormat = "plain"
	// FormatJSON renders one JSON object per line
	FormatJSON LineFormat = "json"
)

// tagPrefix is the prefix of every run tag
const tagPrefix = "performance-benchmarking"

// Tag returns the tag identifying a run of the given record size and global rate.
func Tag(sizeBytes, rate int) string {
	return fmt.Sprintf("%s.size-%d-rate-%d", tagPrefix, sizeBytes, rate)
}

// jsonLine is the json rendering of a record
type jsonLine struct {
	Timestamp json.Number `json:"timestamp"`
	Tag       string      `json:"tag,omitempty"`
	Worker    int         `json:"worker"`
	Message   string      `json:"message"`
}

// lineFormatter renders records for one worker
type lineFormatter struct {
	format LineFormat
	tag    string
	worker int
}

func newLineFormatter(format LineFormat, tag string, worker int) (*lineFormatter, error) {
	switch format {
	case "":
		format = FormatPlain
	case FormatPlain, FormatJSON:
	default:
		return nil, fmt.Errorf("invalid line format: %s, must be one of: plain, json", format)
	}

	return &lineFormatter{
		format: format,
		tag:    tag,
		worker: worker,
	}, nil
}

// Format renders the record without a trailing newline.
func (f *lineFormatter) Format(r Record) ([]byte, error) {
	ts := r.UnixSeconds()

	if f.format == FormatJSON {
		return json.Marshal(jsonLine{
			Timestamp: json.Number(ts),
			Tag:       f.tag,
			Worker:    f.worker,
			Message:   r.Payload,
		})
	}

	line := make([]byte, 0, len(ts)+1+len(r.Payload))
	line = append(line, ts...)
	line = append(line, ' ')
	line = append(line, r.Payload...)
	return line, nil
}
