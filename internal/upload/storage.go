// Package upload persists product images received as multipart files and
// hands back the reference string stored on the product.
package upload

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrNoFile = errors.New("no file uploaded")

type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Storage interface {
	// Save stores f and returns the reference recorded as the product imageUrl.
	Save(ctx context.Context, f File) (string, error)
	Ping(ctx context.Context) error
}

// storedName keeps the client's extension and replaces the rest with a uuid,
// so two uploads of "shirt.png" never collide and no client path leaks in.
func storedName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + ext
}
