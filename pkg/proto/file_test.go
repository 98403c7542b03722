package proto

import (
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tdprint/pkg/device/td2000"
)

func TestDumpRecordsJob(t *testing.T) {
	fs := afero.NewMemMapFs()

	dump, err := CreateDump(fs, "/out/job.prn")
	require.NoError(t, err)

	p := td2000.New(dump, zap.NewNop())
	job, err := td2000.NewJob([][]byte{make([]byte, 56)})
	require.NoError(t, err)
	require.NoError(t, p.Print(context.Background(), job))
	require.NoError(t, p.Close())

	bs, err := afero.ReadFile(fs, "/out/job.prn")
	require.NoError(t, err)
	assert.Equal(t, make([]byte, td2000.InvalidateLength), bs[:td2000.InvalidateLength])
	assert.Equal(t, td2000.PrintWithFeeding(), bs[len(bs)-1:])
}

func TestDumpStatusIsShortRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	dump, err := CreateDump(fs, "job.prn")
	require.NoError(t, err)

	_, err = td2000.New(dump, zap.NewNop()).Status(context.Background())
	assert.True(t, errors.Is(err, td2000.ErrShortRead))
}

func TestFileClosed(t *testing.T) {
	fs := afero.NewMemMapFs()
	dump, err := CreateDump(fs, "job.prn")
	require.NoError(t, err)
	require.NoError(t, dump.Close())
	require.NoError(t, dump.Close())

	_, err = dump.Write([]byte{0})
	assert.True(t, errors.Is(err, io.ErrClosedPipe))

	_, err = td2000.NewSession(dump).Invalidate()
	assert.True(t, errors.Is(err, td2000.ErrChannelClosed))
}

func TestOpenDevice(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := OpenDevice(fs, "/dev/usb/lp0")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/dev/usb/lp0", nil, 0o666))
	dev, err := OpenDevice(fs, "/dev/usb/lp0")
	require.NoError(t, err)
	defer dev.Close()

	n, err := dev.Write(td2000.Initialize())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "/dev/usb/lp0", dev.Name())
}

func TestSerialNotOpen(t *testing.T) {
	s := NewSerial("ttyTD")

	_, err := s.Write([]byte{0})
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
	_, err = s.Read(make([]byte, 1))
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
	assert.NoError(t, s.Close())
}
