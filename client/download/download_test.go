package download_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adamwoolhether/appchains/client/download"
)

var discard = slog.New(slog.DiscardHandler)

func TestStream(t *testing.T) {
	body := "%PDF-1.4 report body"
	sum := sha256.Sum256([]byte(body))

	dest := filepath.Join(t.TempDir(), "a", "b", "report_1.pdf")
	err := download.Stream(t.Context(), strings.NewReader(body), int64(len(body)), dest, discard,
		download.WithChecksum(sha256.New(), hex.EncodeToString(sum[:])),
		download.WithProgress(),
		download.WithFileMode(0o600),
	)
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(got) != body {
		t.Errorf("exp %q, got %q", body, got)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("exp mode 0600, got %o", mode)
	}

	assertNoTempFiles(t, filepath.Dir(dest))
}

func TestStream_Failures(t *testing.T) {
	testCases := []struct {
		name          string
		body          string
		contentLength int64
		opts          []download.Option
		expErr        error
	}{
		{
			name:          "short body",
			body:          "abc",
			contentLength: 10,
			expErr:        download.ErrContentLengthMismatch,
		},
		{
			name:          "checksum mismatch",
			body:          "abc",
			contentLength: -1,
			opts:          []download.Option{download.WithChecksum(sha256.New(), "deadbeef")},
			expErr:        download.ErrChecksumMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "out.pdf")

			err := download.Stream(t.Context(), strings.NewReader(tc.body), tc.contentLength, dest, discard, tc.opts...)
			if !errors.Is(err, tc.expErr) {
				t.Fatalf("exp %v, got: %v", tc.expErr, err)
			}

			var dlErr *download.Error
			if !errors.As(err, &dlErr) || dlErr.Detail == "" {
				t.Errorf("exp *download.Error with detail, got: %v", err)
			}

			if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("exp destination untouched, stat err: %v", err)
			}
			assertNoTempFiles(t, dir)
		})
	}
}

func TestStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	dir := t.TempDir()
	err := download.Stream(ctx, strings.NewReader("abc"), 3, filepath.Join(dir, "out.pdf"), discard)
	if !errors.Is(err, download.ErrDownloadCancelled) {
		t.Fatalf("exp ErrDownloadCancelled, got: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("exp context.Canceled, got: %v", err)
	}
	assertNoTempFiles(t, dir)
}

func TestStream_SkipExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.pdf")
	if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	if err := download.Stream(t.Context(), strings.NewReader("new"), 3, dest, nil, download.WithSkipExisting()); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(got) != "old" {
		t.Errorf("exp existing file kept, got %q", got)
	}
}

func TestOptions_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		opt  download.Option
	}{
		{name: "nil hash", opt: download.WithChecksum(nil, "abc")},
		{name: "empty checksum", opt: download.WithChecksum(sha256.New(), "")},
		{name: "zero mode", opt: download.WithFileMode(0)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out")
			if err := download.Stream(t.Context(), strings.NewReader(""), 0, dest, discard, tc.opt); err == nil {
				t.Error("exp error, got nil")
			}
		})
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, ".appchains-dl-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("exp temp files cleaned up, found %v", matches)
	}
}
