package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

var _ ImageStore = (*Disk)(nil)

// Disk stores images as files under dir on an afero filesystem and serves
// them below publicPath.
type Disk struct {
	fs         afero.Fs
	dir        string
	publicPath string
}

// NewDisk creates dir if needed. publicPath is the URL prefix the server
// mounts Handler on, e.g. "/uploads".
func NewDisk(fs afero.Fs, dir, publicPath string) (*Disk, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir %s: %w", dir, err)
	}
	return &Disk{fs: fs, dir: dir, publicPath: path.Clean("/" + publicPath)}, nil
}

// Upload writes the image as <name><ext> and returns its URL path.
func (d *Disk) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, ok := ExtensionFor(contentType)
	if !ok {
		return "", fmt.Errorf("storage: unsupported content type %q", contentType)
	}

	filename := filepath.Base(name) + ext
	if err := afero.WriteFile(d.fs, filepath.Join(d.dir, filename), data, os.FileMode(0o644)); err != nil {
		return "", fmt.Errorf("storage: writing %s: %w", filename, err)
	}

	return d.publicPath + "/" + filename, nil
}

// PublicPath is the URL prefix uploaded files are served under.
func (d *Disk) PublicPath() string {
	return d.publicPath
}

// Handler serves uploaded files. Mount it with the public path stripped.
func (d *Disk) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(d.fs).Dir(d.dir))
}
