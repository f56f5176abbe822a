package report

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"slices"

	"github.com/adamwoolhether/appchains/client/download"
)

// ErrNoSaver is returned when saving a File that was assembled without
// a [Saver].
var ErrNoSaver = errors.New("file result has no saver")

// ErrDuplicateFile is returned by [Report.SaveFiles] when two files would
// be written to the same path.
var ErrDuplicateFile = errors.New("duplicate file name")

// Kind tags the variant of a [Value].
type Kind int

// Value kinds.
const (
	KindText Kind = iota + 1
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindFile:
		return "FILE"
	default:
		return "UNKNOWN"
	}
}

// Value is the sum of result variants. Only [Text] and [File] implement it.
type Value interface {
	Kind() Kind
	value()
}

// Text is a plain text result.
type Text struct {
	Data string
}

func (Text) Kind() Kind { return KindText }
func (Text) value()     {}

// Saver streams a remote file to destPath.
type Saver interface {
	Save(ctx context.Context, u *url.URL, destPath string, opts ...download.Option) error
}

// File is a result stored server-side and fetched on demand.
type File struct {
	Name      string
	Extension string
	URL       *url.URL

	saver Saver
}

func (File) Kind() Kind { return KindFile }
func (File) value()     {}

// SaveAs downloads the file to fullPath.
func (f File) SaveAs(ctx context.Context, fullPath string, opts ...download.Option) error {
	if f.saver == nil {
		return ErrNoSaver
	}
	return f.saver.Save(ctx, f.URL, fullPath, opts...)
}

// SaveTo downloads the file into dir under its own name.
func (f File) SaveTo(ctx context.Context, dir string, opts ...download.Option) error {
	return f.SaveAs(ctx, filepath.Join(dir, f.Name), opts...)
}

// Result is one named output of a completed job.
type Result struct {
	Name  string
	Value Value
}

// Report is the user-facing outcome of a job. It is immutable.
type Report struct {
	succeeded bool
	results   []Result
}

// New builds a Report from results, which are copied.
func New(succeeded bool, results []Result) Report {
	return Report{succeeded: succeeded, results: slices.Clone(results)}
}

// Succeeded reports whether the job completed successfully.
func (r Report) Succeeded() bool {
	return r.succeeded
}

// Results returns a copy of the results in server order.
func (r Report) Results() []Result {
	return slices.Clone(r.results)
}

// Lookup returns the first result called name.
func (r Report) Lookup(name string) (Result, bool) {
	for _, res := range r.results {
		if res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}

// Files returns just the file results.
func (r Report) Files() []File {
	var files []File
	for _, res := range r.results {
		if f, ok := res.Value.(File); ok {
			files = append(files, f)
		}
	}
	return files
}
