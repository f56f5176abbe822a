package download

import (
	"errors"
	"hash"
	"os"
)

const (
	defaultFileMode os.FileMode = 0o644
	defaultDirMode  os.FileMode = 0o755
)

// Option defines optional settings for saving a file.
type Option func(*options) error

type options struct {
	checksum     *checksumVerifier
	progress     bool
	skipExisting bool
	mode         os.FileMode
}

// WithChecksum enables checksum validation of the downloaded file.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

// WithProgress enables periodic progress logging via the logger
// supplied to Stream.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting makes Stream return nil immediately when the
// destination file already exists.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

// WithFileMode sets the permissions of the saved file. Defaults to 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(opts *options) error {
		if mode == 0 {
			return errors.New("file mode must not be zero")
		}
		opts.mode = mode
		return nil
	}
}

func (o options) fileMode() os.FileMode {
	if o.mode == 0 {
		return defaultFileMode
	}
	return o.mode
}

func (o options) dirMode() os.FileMode {
	return defaultDirMode
}
