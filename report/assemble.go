package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/adamwoolhether/appchains/client/download"
	"github.com/adamwoolhether/appchains/job"
	"golang.org/x/sync/errgroup"
)

// Result property types understood by the assembler.
const (
	TypePlainText = "plaintext"
	TypePDF       = "pdf"
)

// Assemble builds a Report from plain text properties only, keeping
// their server order. Any other property type is skipped.
func Assemble(raw job.Raw) Report {
	return Assembler{}.Assemble(raw)
}

// Assembler builds reports. The zero value emits text results only;
// setting FileURL also turns pdf properties into [File] results.
type Assembler struct {
	// FileURL resolves a pdf property value (a file id) to its download URL.
	FileURL func(fileID string) *url.URL
	// Saver is attached to every File result.
	Saver Saver
}

// Assemble converts raw into a Report. It performs no I/O and never fails.
func (a Assembler) Assemble(raw job.Raw) Report {
	results := make([]Result, 0, len(raw.Props))

	pdfs := 0
	for _, prop := range raw.Props {
		if prop.IsType(TypePDF) {
			pdfs++
		}
	}

	n := 0
	for _, prop := range raw.Props {
		switch strings.ToLower(prop.Type) {
		case TypePlainText:
			results = append(results, Result{Name: prop.Name, Value: Text{Data: prop.Text()}})
		case TypePDF:
			if a.FileURL == nil {
				continue
			}
			n++
			results = append(results, Result{
				Name: prop.Name,
				Value: File{
					Name:      fileName(raw.ID, n, pdfs),
					Extension: TypePDF,
					URL:       a.FileURL(prop.Text()),
					saver:     a.Saver,
				},
			})
		}
	}

	return Report{succeeded: raw.Succeeded, results: results}
}

// fileName names the nth of total pdf results of a job. A job's only pdf
// is report_<id>.pdf; several get an index suffix so they never collide.
func fileName(id job.ID, n, total int) string {
	base := strings.NewReplacer("/", "_", `\`, "_").Replace(id.String())
	if total <= 1 {
		return fmt.Sprintf("report_%s.%s", base, TypePDF)
	}
	return fmt.Sprintf("report_%s_%d.%s", base, n, TypePDF)
}

// SaveFiles downloads every File result into dir, at most limit at a time.
// A limit <= 0 means no limit. Two files with the same name fail with
// ErrDuplicateFile before anything is downloaded.
func (r Report) SaveFiles(ctx context.Context, dir string, limit int, opts ...download.Option) error {
	files := r.Files()

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateFile, f.Name)
		}
		seen[f.Name] = struct{}{}
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, f := range files {
		g.Go(func() error {
			if err := f.SaveTo(ctx, dir, opts...); err != nil {
				return fmt.Errorf("saving %s: %w", f.Name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
