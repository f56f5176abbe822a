package report_test

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/adamwoolhether/appchains/client/download"
	"github.com/adamwoolhether/appchains/job"
	"github.com/adamwoolhether/appchains/report"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestAssemble_PlainTextOnly(t *testing.T) {
	raw := job.Raw{
		ID:        job.NumberID("42"),
		Status:    "Completed",
		Completed: true,
		Succeeded: true,
		Props: []job.Prop{
			{Type: "PlainText", Name: "A", Value: "x"},
			{Type: "File", Name: "B", Value: "y"},
		},
	}

	rep := report.Assemble(raw)
	if !rep.Succeeded() {
		t.Error("exp succeeded report")
	}

	exp := []report.Result{{Name: "A", Value: report.Text{Data: "x"}}}
	if diff := cmp.Diff(exp, rep.Results()); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestAssemble_KeepsOrder(t *testing.T) {
	raw := job.Raw{
		ID: job.NumberID("1"),
		Props: []job.Prop{
			{Type: "plaintext", Name: "Z", Value: "1"},
			{Type: "pdf", Name: "Report", Value: "77"},
			{Type: "PLAINTEXT", Name: "A", Value: "2"},
			{Type: "PlainText", Name: "M", Value: nil},
		},
	}

	rep := report.Assemble(raw)
	if rep.Succeeded() {
		t.Error("exp unsuccessful report")
	}

	exp := []report.Result{
		{Name: "Z", Value: report.Text{Data: "1"}},
		{Name: "A", Value: report.Text{Data: "2"}},
		{Name: "M", Value: report.Text{Data: ""}},
	}
	if diff := cmp.Diff(exp, rep.Results()); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestAssemble_Empty(t *testing.T) {
	rep := report.Assemble(job.Raw{ID: job.NumberID("1"), Completed: true})
	if n := len(rep.Results()); n != 0 {
		t.Errorf("exp no results, got %d", n)
	}
}

func TestReport_Immutable(t *testing.T) {
	rep := report.New(true, []report.Result{{Name: "A", Value: report.Text{Data: "x"}}})

	results := rep.Results()
	results[0] = report.Result{Name: "changed"}

	if got, ok := rep.Lookup("A"); !ok || got.Value != (report.Text{Data: "x"}) {
		t.Errorf("exp report unchanged, got %+v", rep.Results())
	}
	if _, ok := rep.Lookup("changed"); ok {
		t.Error("exp mutation of Results() copy to be invisible")
	}
}

func TestKind(t *testing.T) {
	testCases := []struct {
		value report.Value
		exp   string
	}{
		{value: report.Text{}, exp: "TEXT"},
		{value: report.File{}, exp: "FILE"},
	}

	for _, tc := range testCases {
		if got := tc.value.Kind().String(); got != tc.exp {
			t.Errorf("exp %s, got %s", tc.exp, got)
		}
	}
}

type fakeSaver struct {
	mu    sync.Mutex
	saved map[string]string
	err   error
}

func (f *fakeSaver) Save(_ context.Context, u *url.URL, destPath string, _ ...download.Option) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[destPath] = u.String()
	return nil
}

func fileURL(id string) *url.URL {
	return &url.URL{Scheme: "https", Host: "api.example.com", Path: "/v2/GetReportFile", RawQuery: "idJob=" + id}
}

func TestAssembler_Files(t *testing.T) {
	saver := &fakeSaver{}
	a := report.Assembler{FileURL: fileURL, Saver: saver}

	raw := job.Raw{
		ID:        job.NumberID("42"),
		Completed: true,
		Succeeded: true,
		Props: []job.Prop{
			{Type: "PlainText", Name: "A", Value: "x"},
			{Type: "Pdf", Name: "Report", Value: "77"},
		},
	}

	rep := a.Assemble(raw)

	exp := []report.Result{
		{Name: "A", Value: report.Text{Data: "x"}},
		{Name: "Report", Value: report.File{Name: "report_42.pdf", Extension: "pdf", URL: fileURL("77")}},
	}
	if diff := cmp.Diff(exp, rep.Results(), cmpopts.IgnoreUnexported(report.File{})); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	if err := rep.SaveFiles(t.Context(), dir, 2); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	expSaved := map[string]string{filepath.Join(dir, "report_42.pdf"): fileURL("77").String()}
	if diff := cmp.Diff(expSaved, saver.saved); diff != "" {
		t.Errorf("unexpected saves (-want +got):\n%s", diff)
	}
}

func TestAssembler_SeveralFiles(t *testing.T) {
	saver := &fakeSaver{}
	a := report.Assembler{FileURL: fileURL, Saver: saver}

	rep := a.Assemble(job.Raw{
		ID: job.NumberID("9"),
		Props: []job.Prop{
			{Type: "pdf", Name: "Summary", Value: "5"},
			{Type: "PlainText", Name: "A", Value: "x"},
			{Type: "pdf", Name: "Detail", Value: "6"},
		},
	})

	var names []string
	for _, f := range rep.Files() {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"report_9_1.pdf", "report_9_2.pdf"}, names); diff != "" {
		t.Errorf("unexpected file names (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	if err := rep.SaveFiles(t.Context(), dir, 0); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	expSaved := map[string]string{
		filepath.Join(dir, "report_9_1.pdf"): fileURL("5").String(),
		filepath.Join(dir, "report_9_2.pdf"): fileURL("6").String(),
	}
	if diff := cmp.Diff(expSaved, saver.saved); diff != "" {
		t.Errorf("unexpected saves (-want +got):\n%s", diff)
	}
}

func TestReport_SaveFilesDuplicateName(t *testing.T) {
	rep := report.New(true, []report.Result{
		{Name: "A", Value: report.File{Name: "same.pdf", URL: fileURL("1")}},
		{Name: "B", Value: report.File{Name: "same.pdf", URL: fileURL("2")}},
	})

	if err := rep.SaveFiles(t.Context(), t.TempDir(), 0); !errors.Is(err, report.ErrDuplicateFile) {
		t.Errorf("exp ErrDuplicateFile, got: %v", err)
	}
}

func TestReport_SaveFilesError(t *testing.T) {
	boom := errors.New("boom")
	a := report.Assembler{FileURL: fileURL, Saver: &fakeSaver{err: boom}}

	rep := a.Assemble(job.Raw{ID: job.NumberID("1"), Props: []job.Prop{{Type: "pdf", Name: "R", Value: "5"}}})
	if err := rep.SaveFiles(t.Context(), t.TempDir(), 0); !errors.Is(err, boom) {
		t.Errorf("exp saver error, got: %v", err)
	}
}

func TestFile_NoSaver(t *testing.T) {
	a := report.Assembler{FileURL: fileURL}
	files := a.Assemble(job.Raw{ID: job.NumberID("1"), Props: []job.Prop{{Type: "pdf", Name: "R", Value: "5"}}}).Files()
	if len(files) != 1 {
		t.Fatalf("exp 1 file, got %d", len(files))
	}

	if err := files[0].SaveTo(t.Context(), t.TempDir()); !errors.Is(err, report.ErrNoSaver) {
		t.Errorf("exp ErrNoSaver, got: %v", err)
	}
}

func TestReport_Files(t *testing.T) {
	rep := report.New(true, []report.Result{
		{Name: "A", Value: report.Text{Data: "x"}},
		{Name: "B", Value: report.File{Name: "b.pdf"}},
		{Name: "C", Value: report.File{Name: "c.pdf"}},
	})

	var names []string
	for _, f := range rep.Files() {
		names = append(names, f.Name)
	}
	if !slices.Equal(names, []string{"b.pdf", "c.pdf"}) {
		t.Errorf("exp b.pdf, c.pdf; got %v", names)
	}
}
