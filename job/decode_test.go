package job_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/adamwoolhether/appchains/job"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignoreSource = cmpopts.IgnoreFields(job.Raw{}, "Source")

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		exp     job.Raw
	}{
		{
			name:    "completed with results",
			payload: `{"Status":{"IdJob":42,"Status":"Completed","CompletedSuccesfully":true},"ResultProps":[{"Type":"PlainText","Name":"A","Value":"x"}]}`,
			exp: job.Raw{
				ID:        job.NumberID("42"),
				Status:    "Completed",
				Completed: true,
				Succeeded: true,
				Props:     []job.Prop{{Type: "PlainText", Name: "A", Value: "x"}},
			},
		},
		{
			name:    "cancelled is terminal",
			payload: `{"Status":{"IdJob":"j-1","Status":"CANCELLED","CompletedSuccesfully":false}}`,
			exp:     job.Raw{ID: job.StringID("j-1"), Status: "CANCELLED", Completed: true},
		},
		{
			name:    "running",
			payload: `{"Status":{"IdJob":7,"Status":"Running"}}`,
			exp:     job.Raw{ID: job.NumberID("7"), Status: "Running"},
		},
		{
			name:    "queued with null success flag",
			payload: `{"Status":{"IdJob":7,"Status":"Queued","CompletedSuccesfully":null}}`,
			exp:     job.Raw{ID: job.NumberID("7"), Status: "Queued"},
		},
		{
			name:    "large numeric id keeps precision",
			payload: `{"Status":{"IdJob":9007199254740993,"Status":"completed","CompletedSuccesfully":1}}`,
			exp:     job.Raw{ID: job.NumberID("9007199254740993"), Status: "completed", Completed: true, Succeeded: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := job.Decode([]byte(tc.payload))
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if diff := cmp.Diff(tc.exp, got, ignoreSource); diff != "" {
				t.Errorf("unexpected job (-want +got):\n%s", diff)
			}

			if string(got.Source) != tc.payload {
				t.Errorf("exp source %s, got %s", tc.payload, got.Source)
			}
		})
	}
}

func TestDecode_Succeeded(t *testing.T) {
	testCases := []struct {
		flag string
		exp  bool
	}{
		{flag: `true`, exp: true},
		{flag: `false`, exp: false},
		{flag: `1`, exp: true},
		{flag: `0`, exp: false},
		{flag: `"true"`, exp: true},
		{flag: `"yes"`, exp: true},
		{flag: `"False"`, exp: false},
		{flag: `"0"`, exp: false},
		{flag: `""`, exp: false},
		{flag: `null`, exp: false},
	}

	for _, tc := range testCases {
		t.Run(tc.flag, func(t *testing.T) {
			payload := `{"Status":{"IdJob":1,"Status":"Completed","CompletedSuccesfully":` + tc.flag + `}}`

			got, err := job.Decode([]byte(payload))
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			if got.Succeeded != tc.exp {
				t.Errorf("exp succeeded %t, got %t", tc.exp, got.Succeeded)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `<html>`},
		{name: "missing status object", payload: `{"ResultProps":[]}`},
		{name: "missing job id", payload: `{"Status":{"Status":"Running"}}`},
		{name: "null job id", payload: `{"Status":{"IdJob":null,"Status":"Running"}}`},
		{name: "empty job id", payload: `{"Status":{"IdJob":"","Status":"Running"}}`},
		{name: "object job id", payload: `{"Status":{"IdJob":{},"Status":"Running"}}`},
		{name: "missing status string", payload: `{"Status":{"IdJob":3}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := job.Decode([]byte(tc.payload))
			if !errors.Is(err, job.ErrMalformedResponse) {
				t.Errorf("exp ErrMalformedResponse, got: %v", err)
			}
		})
	}
}

func TestDecodeList(t *testing.T) {
	payload := `[
		{"Status":{"IdJob":1,"Status":"Completed","CompletedSuccesfully":true}},
		{"Status":{"IdJob":2,"Status":"Running"}}
	]`

	got, err := job.DecodeList([]byte(payload))
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	exp := []job.Raw{
		{ID: job.NumberID("1"), Status: "Completed", Completed: true, Succeeded: true},
		{ID: job.NumberID("2"), Status: "Running"},
	}
	if diff := cmp.Diff(exp, got, ignoreSource); diff != "" {
		t.Errorf("unexpected jobs (-want +got):\n%s", diff)
	}

	t.Run("bad item", func(t *testing.T) {
		_, err := job.DecodeList([]byte(`[{"Status":{"IdJob":1,"Status":"Running"}},{}]`))
		if !errors.Is(err, job.ErrMalformedResponse) {
			t.Errorf("exp ErrMalformedResponse, got: %v", err)
		}
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := job.DecodeList([]byte(`{"Status":{"IdJob":1,"Status":"Running"}}`))
		if !errors.Is(err, job.ErrMalformedResponse) {
			t.Errorf("exp ErrMalformedResponse, got: %v", err)
		}
	})
}

func TestDecodeKeyed(t *testing.T) {
	payload := `[
		{"Key":"MelanomaDsAppv","Value":{"Status":{"IdJob":10,"Status":"Running"}}},
		{"Key":null,"Value":{"Status":{"IdJob":11,"Status":"Completed","CompletedSuccesfully":true}}},
		{"Value":{"Status":{"IdJob":12,"Status":"Queued"}}}
	]`

	got, err := job.DecodeKeyed([]byte(payload))
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	exp := []job.Keyed{
		{Key: "MelanomaDsAppv", Job: job.Raw{ID: job.NumberID("10"), Status: "Running"}},
		{Key: "", Job: job.Raw{ID: job.NumberID("11"), Status: "Completed", Completed: true, Succeeded: true}},
		{Key: "", Job: job.Raw{ID: job.NumberID("12"), Status: "Queued"}},
	}
	if diff := cmp.Diff(exp, got, ignoreSource); diff != "" {
		t.Errorf("unexpected items (-want +got):\n%s", diff)
	}

	t.Run("missing value", func(t *testing.T) {
		_, err := job.DecodeKeyed([]byte(`[{"Key":"A"}]`))
		if !errors.Is(err, job.ErrMalformedResponse) {
			t.Errorf("exp ErrMalformedResponse, got: %v", err)
		}
	})
}

func TestID_MarshalJSON(t *testing.T) {
	testCases := []struct {
		name  string
		idJob string
	}{
		{name: "number", idJob: `42`},
		{name: "large number", idJob: `9007199254740993`},
		{name: "string", idJob: `"j-7"`},
		{name: "numeric string", idJob: `"123"`},
		{name: "leading zeros", idJob: `"00123"`},
		{name: "signed string", idJob: `"+7"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := job.Decode([]byte(`{"Status":{"IdJob":` + tc.idJob + `,"Status":"Running"}}`))
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			b, err := json.Marshal(struct {
				JobIds []job.ID
			}{JobIds: []job.ID{raw.ID}})
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			exp := `{"JobIds":[` + tc.idJob + `]}`
			if string(b) != exp {
				t.Errorf("exp %s, got %s", exp, b)
			}
		})
	}
}

func TestID(t *testing.T) {
	num := job.NumberID("42")
	str := job.StringID("42")

	if num.Equal(str) {
		t.Error("exp number and string ids with the same text to differ")
	}
	if num.String() != "42" || str.String() != "42" {
		t.Errorf("exp text 42, got %q and %q", num.String(), str.String())
	}
	if !num.IsNumber() || str.IsNumber() {
		t.Error("exp only the number id to report IsNumber")
	}
	if !(job.ID{}).IsZero() || num.IsZero() {
		t.Error("exp only the zero id to report IsZero")
	}

	t.Run("invalid number", func(t *testing.T) {
		if _, err := json.Marshal(job.NumberID("00123")); err == nil {
			t.Error("exp error marshaling a non-JSON number")
		}
	})

	t.Run("unmarshal", func(t *testing.T) {
		var ids []job.ID
		if err := json.Unmarshal([]byte(`[5,"5"]`), &ids); err != nil {
			t.Fatalf("exp nil err, got: %v", err)
		}

		exp := []job.ID{job.NumberID("5"), job.StringID("5")}
		if diff := cmp.Diff(exp, ids); diff != "" {
			t.Errorf("unexpected ids (-want +got):\n%s", diff)
		}

		if err := json.Unmarshal([]byte(`[""]`), &ids); err == nil {
			t.Error("exp error for an empty id")
		}
	})
}

func TestProp(t *testing.T) {
	p := job.Prop{Type: "PLAINTEXT", Name: "A", Value: json.Number("3")}
	if !p.IsType("plaintext") {
		t.Error("exp case-insensitive type match")
	}
	if got := p.Text(); got != "3" {
		t.Errorf("exp text 3, got %q", got)
	}
	if got := (job.Prop{}).Text(); got != "" {
		t.Errorf("exp empty text for nil value, got %q", got)
	}
}
