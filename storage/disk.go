package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

var _ Client = &Disk{}

// Disk stores blobs as plain files below a base directory.
type Disk struct {
	baseDir string
}

// NewDisk returns a Disk storing blobs below the given base directory.
func NewDisk(baseDir string) *Disk {
	return &Disk{baseDir: baseDir}
}

func (d *Disk) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	path := d.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, r)
	return err
}

func (d *Disk) Remove(ctx context.Context, key string) error {
	return os.Remove(d.Path(key))
}

func (d *Disk) Path(key string) string {
	return filepath.Join(d.baseDir, key)
}

func (d *Disk) URL(key string) string {
	return "/" + d.baseDir + "/" + key
}
