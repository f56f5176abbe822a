package job

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/adamwoolhether/appchains/internal/validate"
)

// Decode normalizes a single job status object.
// Missing Status.IdJob or Status.Status fails with ErrMalformedResponse.
func Decode(payload []byte) (Raw, error) {
	var ws wireStatus
	if err := unmarshal(payload, &ws); err != nil {
		return Raw{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if err := validate.Struct(ws); err != nil {
		return Raw{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	id, err := parseID(ws.Status.IdJob)
	if err != nil {
		return Raw{}, fmt.Errorf("%w: Status.IdJob: %w", ErrMalformedResponse, err)
	}

	status := *ws.Status.Status
	lower := strings.ToLower(status)

	raw := Raw{
		ID:        id,
		Status:    status,
		Completed: lower == StatusCompleted || lower == StatusCancelled,
		Succeeded: truthy(ws.Status.CompletedSuccesfully),
		Props:     ws.ResultProps,
		Source:    slices.Clone(json.RawMessage(payload)),
	}

	return raw, nil
}

// DecodeList normalizes a JSON array of job status objects, as returned
// by the batch status endpoint.
func DecodeList(payload []byte) ([]Raw, error) {
	var items []json.RawMessage
	if err := unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: expected array of statuses: %w", ErrMalformedResponse, err)
	}

	jobs := make([]Raw, 0, len(items))
	for i, item := range items {
		raw, err := Decode(item)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		jobs = append(jobs, raw)
	}

	return jobs, nil
}

// DecodeKeyed normalizes a JSON array of {"Key": ..., "Value": <status>}
// items, as returned by batch submission. Items without a Key are returned
// with an empty Key.
func DecodeKeyed(payload []byte) ([]Keyed, error) {
	var items []json.RawMessage
	if err := unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: expected array of keyed statuses: %w", ErrMalformedResponse, err)
	}

	keyed := make([]Keyed, 0, len(items))
	for i, item := range items {
		var wk wireKeyed
		if err := unmarshal(item, &wk); err != nil {
			return nil, fmt.Errorf("item[%d]: %w: %w", i, ErrMalformedResponse, err)
		}

		if err := validate.Struct(wk); err != nil {
			return nil, fmt.Errorf("item[%d]: %w: %w", i, ErrMalformedResponse, err)
		}

		var key string
		if !isNull(wk.Key) {
			k, err := parseID(wk.Key)
			if err != nil {
				return nil, fmt.Errorf("item[%d]: %w: Key: %w", i, ErrMalformedResponse, err)
			}
			key = k.String()
		}

		raw, err := Decode(wk.Value)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}

		keyed = append(keyed, Keyed{Key: key, Job: raw})
	}

	return keyed, nil
}

func unmarshal(payload []byte, dst any) error {
	d := json.NewDecoder(bytes.NewReader(payload))
	d.UseNumber()

	return d.Decode(dst)
}

// parseID accepts a JSON string or number.
func parseID(raw json.RawMessage) (ID, error) {
	if isNull(raw) {
		return ID{}, errors.New("missing")
	}

	var v any
	if err := unmarshal(raw, &v); err != nil {
		return ID{}, err
	}

	switch id := v.(type) {
	case string:
		if id == "" {
			return ID{}, errors.New("empty")
		}
		return StringID(id), nil
	case json.Number:
		return NumberID(id), nil
	default:
		return ID{}, fmt.Errorf("unexpected type %T", v)
	}
}

// isNumber reports whether b is exactly one JSON number.
func isNumber(b []byte) bool {
	if len(b) == 0 || (b[0] != '-' && (b[0] < '0' || b[0] > '9')) {
		return false
	}
	return json.Valid(b)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// truthy applies loose truthiness to CompletedSuccesfully, which older
// deployments send as a bool, an integer flag or a string.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case json.Number:
		f, err := strconv.ParseFloat(val.String(), 64)
		return err == nil && f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "", "0", "false":
			return false
		}
		return true
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return false
	}
}
