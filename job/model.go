package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is wrapped by every decode failure.
var ErrMalformedResponse = errors.New("malformed job status response")

// Terminal statuses, compared after lower-casing.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ID is the opaque identifier the server assigns to a submitted job. It
// remembers whether the server sent it as a JSON number or a JSON string
// and marshals back to the same form. IDs are comparable.
type ID struct {
	value  string
	number bool
}

// StringID returns an id the server sent as a JSON string.
func StringID(s string) ID {
	return ID{value: s}
}

// NumberID returns an id the server sent as a JSON number.
func NumberID(n json.Number) ID {
	return ID{value: n.String(), number: true}
}

// String returns the id as the server sent it, without JSON quoting.
func (id ID) String() string {
	return id.value
}

// IsNumber reports whether the server sent the id as a JSON number.
func (id ID) IsNumber() bool {
	return id.number
}

// IsZero reports whether id is the zero ID.
func (id ID) IsZero() bool {
	return id.value == ""
}

// Equal reports whether id and other are the same id in the same form.
func (id ID) Equal(other ID) bool {
	return id == other
}

// MarshalJSON writes the id in the form the server used.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.number {
		return json.Marshal(id.value)
	}

	b := []byte(id.value)
	if !isNumber(b) {
		return nil, fmt.Errorf("job id %q is not a JSON number", id.value)
	}
	return b, nil
}

// UnmarshalJSON accepts a non-empty JSON string or a JSON number.
func (id *ID) UnmarshalJSON(b []byte) error {
	v, err := parseID(b)
	if err != nil {
		return err
	}

	*id = v
	return nil
}

// Prop is a single result property as returned by the server.
type Prop struct {
	Type  string `json:"Type"`
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// IsType reports whether the property type matches t, ignoring case.
func (p Prop) IsType(t string) bool {
	return strings.EqualFold(p.Type, t)
}

// Text renders the property value as a string.
func (p Prop) Text() string {
	switch v := p.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Raw is the normalized form of one job status object.
type Raw struct {
	ID ID
	// Status is the status string exactly as the server sent it.
	Status string
	// Completed is true once Status is "completed" or "cancelled".
	Completed bool
	// Succeeded is only meaningful when Completed is true.
	Succeeded bool
	Props     []Prop
	// Source is the undecoded status object.
	Source json.RawMessage
}

// Keyed pairs a status object with the caller's correlation key.
type Keyed struct {
	Key string
	Job Raw
}

// /////////////////////////////////////////////////////////////////
// wire shapes

type wireStatus struct {
	Status      *wireJob `json:"Status" validate:"required"`
	ResultProps []Prop   `json:"ResultProps"`
}

type wireJob struct {
	IdJob                json.RawMessage `json:"IdJob" validate:"required"`
	Status               *string         `json:"Status" validate:"required"`
	CompletedSuccesfully any             `json:"CompletedSuccesfully"`
}

type wireKeyed struct {
	Key   json.RawMessage `json:"Key"`
	Value json.RawMessage `json:"Value" validate:"required"`
}
