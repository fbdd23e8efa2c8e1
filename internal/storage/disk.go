package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

// Disk is a named file area addressed with slash separated relative paths.
type Disk struct {
	fs afero.Fs
}

func NewDisk(fs afero.Fs) *Disk {
	return &Disk{fs: fs}
}

// NewOSDisk roots a disk at dir on the local file system, creating dir when
// missing.
func NewOSDisk(dir string) (*Disk, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("osFs.MkdirAll -> %w", err)
	}

	return NewDisk(afero.NewBasePathFs(osFs, dir)), nil
}

func (d *Disk) Put(name string, data []byte) error {
	if err := d.MakeDirectory(path.Dir(name)); err != nil {
		return err
	}

	return afero.WriteFile(d.fs, name, data, 0o644)
}

// Create opens name for writing, creating parent directories.
func (d *Disk) Create(name string) (afero.File, error) {
	if err := d.MakeDirectory(path.Dir(name)); err != nil {
		return nil, err
	}

	return d.fs.Create(name)
}

func (d *Disk) Open(name string) (afero.File, error) {
	return d.fs.Open(name)
}

func (d *Disk) Exists(name string) (bool, error) {
	return afero.Exists(d.fs, name)
}

func (d *Disk) Size(name string) (int64, error) {
	info, err := d.fs.Stat(name)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

// Delete removes a file. Missing files are not an error.
func (d *Disk) Delete(name string) error {
	if err := d.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

func (d *Disk) MakeDirectory(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}

	return d.fs.MkdirAll(dir, 0o755)
}

func (d *Disk) DeleteDirectory(dir string) error {
	return d.fs.RemoveAll(dir)
}

// CopyTo streams the file at name into w.
func (d *Disk) CopyTo(w io.Writer, name string) (int64, error) {
	f, err := d.fs.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return io.Copy(w, f)
}
