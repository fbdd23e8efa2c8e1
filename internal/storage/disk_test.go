package storage

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisk(t *testing.T) {
	disk := NewDisk(afero.NewMemMapFs())

	require.NoError(t, disk.Put("qr-batches/1/a.txt", []byte("hello")))

	exists, err := disk.Exists("qr-batches/1/a.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	size, err := disk.Size("qr-batches/1/a.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)

	var buf bytes.Buffer
	_, err = disk.CopyTo(&buf, "qr-batches/1/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())

	require.NoError(t, disk.DeleteDirectory("qr-batches/1"))
	exists, err = disk.Exists("qr-batches/1/a.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDisk_DeleteMissing(t *testing.T) {
	disk := NewDisk(afero.NewMemMapFs())

	assert.NoError(t, disk.Delete("nothing/here.png"))
}

func TestNewOSDisk(t *testing.T) {
	disk, err := NewOSDisk(t.TempDir())
	require.NoError(t, err)

	f, err := disk.Create("nested/dir/file.bin")
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	size, err := disk.Size("nested/dir/file.bin")
	require.NoError(t, err)
	assert.EqualValues(t, 3, size)
}
