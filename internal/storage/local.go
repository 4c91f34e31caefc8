package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Local stores blobs on a filesystem rooted at a fixed directory
type Local struct {
	fs afero.Fs
}

// NewLocal creates root if needed and confines every key to it
func NewLocal(root string) (*Local, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root, %w", err)
	}

	return NewLocalFs(afero.NewBasePathFs(osFs, root)), nil
}

func NewLocalFs(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	f, err := l.fs.OpenFile(key, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file, %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file, %w", err)
	}

	return f.Close()
}

func (l *Local) Get(_ context.Context, key string) (*Object, error) {
	f, err := l.fs.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to open file, %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat file, %w", err)
	}

	return &Object{
		Body: f,
		Size: stat.Size(),
	}, nil
}
