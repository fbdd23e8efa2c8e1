package render

import (
	"archive/zip"
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// Archive streams files into a ZIP written to the underlying writer.
type Archive struct {
	zw      *zip.Writer
	entries int
}

func NewArchive(w io.Writer) *Archive {
	return &Archive{zw: zip.NewWriter(w)}
}

func (a *Archive) Add(name string, r io.Reader) error {
	fw, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("a.zw.CreateHeader -> %w", err)
	}

	if _, err = io.Copy(fw, r); err != nil {
		return fmt.Errorf("io.Copy -> %w", err)
	}
	a.entries++

	return nil
}

// AddFrom copies the stream returned by open and closes it.
func (a *Archive) AddFrom(name string, open func() (io.ReadCloser, error)) (err error) {
	rc, err := open()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, rc.Close())
	}()

	return a.Add(name, rc)
}

func (a *Archive) Entries() int {
	return a.entries
}

func (a *Archive) Close() error {
	return a.zw.Close()
}
