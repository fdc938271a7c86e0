package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type DiskStorage struct {
	dir string
}

var _ Storage = (*DiskStorage)(nil)

func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: dir}, nil
}

func (s *DiskStorage) Dir() string { return s.dir }

// Save writes the file under a fresh name and returns that name. A failed
// write removes the partial file.
func (s *DiskStorage) Save(ctx context.Context, f File) (name string, err error) {
	if f.Body == nil {
		return "", ErrNoFile
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = storedName(f.Name)
	path := filepath.Join(s.dir, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
			name = ""
		}
	}()

	if _, err := io.Copy(dst, f.Body); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

func (s *DiskStorage) Ping(ctx context.Context) error {
	fi, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
