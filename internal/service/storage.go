package service

import (
	"github.com/spf13/afero"
)

// Disk is a storage root files are addressed in by relative name.
type Disk interface {
	Put(name string, data []byte) error
	Create(name string) (afero.File, error)
	Open(name string) (afero.File, error)
	Exists(name string) (bool, error)
	Delete(name string) error
	MakeDirectory(dir string) error
	DeleteDirectory(dir string) error
}
