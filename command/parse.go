package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Errors reported for records that cannot be turned into a Command.
var (
	ErrMalformed    = errors.New("malformed command record")
	ErrMissingField = errors.New("missing required field")
)

var newline = []byte{'\n'}

// Split breaks a frame into its newline separated records, in order.
// Empty and whitespace-only fragments are dropped.
func Split(frame []byte) [][]byte {
	var records [][]byte
	for _, fragment := range bytes.Split(frame, newline) {
		fragment = bytes.TrimSpace(fragment)
		if len(fragment) == 0 {
			continue
		}
		records = append(records, fragment)
	}
	return records
}

// Parse decodes a single record.
func Parse(record []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(record, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch Kind(env.TypeID) {
	case KindPlay:
		return Play{}, nil
	case KindPause:
		return Pause{}, nil
	case KindStop:
		return Stop{}, nil
	case KindSetSource:
		return parseSetSource(env.Data)
	case KindRewind:
		return parseRewind(env.Data)
	default:
		return Unknown{Raw: env.TypeID}, nil
	}
}

func parseSetSource(raw json.RawMessage) (Command, error) {
	var data sourceData
	if err := unmarshalData(raw, &data); err != nil {
		return nil, err
	}

	if data.URL == nil || strings.TrimSpace(*data.URL) == "" {
		return nil, fmt.Errorf("%w: %s data.url", ErrMissingField, KindSetSource)
	}

	return SetSource{URL: strings.TrimSpace(*data.URL)}, nil
}

func parseRewind(raw json.RawMessage) (Command, error) {
	var data rewindData
	if err := unmarshalData(raw, &data); err != nil {
		return nil, err
	}

	if len(data.Duration) == 0 || string(data.Duration) == "null" {
		return nil, fmt.Errorf("%w: %s data.duration", ErrMissingField, KindRewind)
	}

	seconds, err := parseSeconds(data.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s data.duration: %v", ErrMissingField, KindRewind, err)
	}

	return Rewind{Duration: seconds}, nil
}

// parseSeconds accepts a JSON number, truncated toward zero, or a string
// starting with a signed decimal integer ("15", "-30", "10s"). Anything after
// the leading integer is ignored, the way the kinohub web client reads it.
func parseSeconds(raw json.RawMessage) (int, error) {
	if bytes.HasPrefix(raw, []byte(`"`)) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		return leadingInt(text)
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", raw)
	}
	return truncate(f)
}

// leadingInt reads the signed decimal integer text starts with.
func leadingInt(text string) (int, error) {
	text = strings.TrimSpace(text)

	end := 0
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	digits := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, fmt.Errorf("not a number: %q", text)
	}

	n, err := strconv.ParseInt(text[:end], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("out of range: %q", text)
	}
	return truncate(float64(n))
}

func truncate(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return int(f), nil
}

func unmarshalData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: data: %v", ErrMalformed, err)
	}
	return nil
}

// Result is the outcome of parsing one record of a frame.
type Result struct {
	Record  []byte
	Command Command
	Err     error
}

// Decode parses every record of a frame, preserving their order.
// With batching disabled the whole frame is a single record.
func Decode(frame []byte, batching bool) []Result {
	var records [][]byte
	if batching {
		records = Split(frame)
	} else if trimmed := bytes.TrimSpace(frame); len(trimmed) > 0 {
		records = [][]byte{trimmed}
	}

	results := make([]Result, 0, len(records))
	for _, record := range records {
		cmd, err := Parse(record)
		results = append(results, Result{Record: record, Command: cmd, Err: err})
	}
	return results
}
