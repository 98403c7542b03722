package proto

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// File is a printer reached through a file: a device node such as
// /dev/usb/lp0, or a .prn dump that only records the job stream.
type File struct {
	f        afero.File
	readable bool
}

// OpenDevice opens a device node for reading and writing.
func OpenDevice(fs afero.Fs, path string) (*File, error) {
	f, err := fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open device %s", path)
	}
	return &File{f: f, readable: true}, nil
}

// CreateDump truncates path and records everything written to it. Reads
// report EOF, so status requests fail with a short read.
func CreateDump(fs afero.Fs, path string) (*File, error) {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "create dump %s", path)
	}
	return &File{f: f}, nil
}

func (f *File) Name() string {
	return f.f.Name()
}

func (f *File) Read(p []byte) (int, error) {
	if f.f == nil {
		return 0, io.ErrClosedPipe
	}
	if !f.readable {
		return 0, io.EOF
	}
	return f.f.Read(p)
}

func (f *File) Write(p []byte) (int, error) {
	if f.f == nil {
		return 0, io.ErrClosedPipe
	}
	return f.f.Write(p)
}

func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}
