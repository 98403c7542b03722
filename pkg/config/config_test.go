package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tdprint/pkg/device/td2000"
)

func isolate(t *testing.T) {
	t.Helper()
	orig := configPaths
	configPaths = func() []string { return nil }
	t.Cleanup(func() { configPaths = orig })
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[device]
kind = "dump"
path = "/tmp/job.prn"

[printer]
model = "TD-2135N"

[media]
size = "40x60"

[job]
compress = "tiff"
margin = 24
feed = false
zero_lines = true

[status]
timeout = "500ms"
delay = "1s"
check = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, KindDump, cfg.Device.Kind)
	assert.Equal(t, "/tmp/job.prn", cfg.Device.Path)
	assert.Equal(t, 115200, cfg.Device.Baud)
	assert.Equal(t, "TD-2135N", cfg.Printer.Model)
	assert.Equal(t, "40x60", cfg.Media.Size)
	assert.Equal(t, "tiff", cfg.Job.Compress)
	require.NotNil(t, cfg.Job.Margin)
	assert.Equal(t, 24, *cfg.Job.Margin)
	require.NotNil(t, cfg.Job.Feed)
	assert.False(t, *cfg.Job.Feed)
	assert.True(t, cfg.Job.ZeroLines)
	assert.Equal(t, 500*time.Millisecond, cfg.Status.Timeout)
	assert.Equal(t, time.Second, cfg.Status.Delay)
	assert.True(t, cfg.Status.Check)

	model, err := cfg.Model()
	require.NoError(t, err)
	assert.Equal(t, 84, model.HeadBytes)

	opts, err := cfg.JobOptions(afero.NewMemMapFs())
	require.NoError(t, err)
	job, err := td2000.NewJob([][]byte{make([]byte, 84)}, opts...)
	require.NoError(t, err)

	spec := job.Spec()
	assert.Equal(t, td2000.MediaDieCut, spec.Media)
	assert.Equal(t, td2000.CompressionTIFF, spec.Compression)
	assert.False(t, spec.Feed)
	assert.True(t, spec.ZeroLines)
	require.NotNil(t, spec.Margin)
	assert.Equal(t, uint16(24), *spec.Margin)

	popts, err := cfg.PrinterOptions()
	require.NoError(t, err)
	assert.Len(t, popts, 4)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, KindSerial, cfg.Device.Kind)
	assert.Equal(t, uint16(0x04F9), cfg.Device.VID)
	assert.Empty(t, cfg.Media.Size)
	assert.Equal(t, td2000.DefaultStatusTimeout, cfg.Status.Timeout)
	assert.Nil(t, cfg.Job.Margin)

	opts, err := cfg.JobOptions(afero.NewMemMapFs())
	require.NoError(t, err)
	job, err := td2000.NewJob([][]byte{make([]byte, 56)}, opts...)
	require.NoError(t, err)
	assert.Equal(t, td2000.MediaInfo58mm[:], job.Spec().MediaInfo)
	assert.True(t, job.Spec().Feed)
}

func TestLoadCustomMediaOverridesDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[media]
kind = "die-cut"
width_mm = 40
length_mm = 30
`))
	require.NoError(t, err)

	media, err := cfg.MediaSpec()
	require.NoError(t, err)
	assert.Equal(t, td2000.MediaDieCut, media.Type)
	assert.Equal(t, byte(40), media.WidthMM)
	assert.Equal(t, byte(30), media.LengthMM)
}

func TestLoadIgnoresHomeAndWorkingDir(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(home, []byte("[printer]\nmodel = \"TD-2135N\"\n"), 0o644))

	orig := configPaths
	configPaths = func() []string { return []string{home} }
	t.Cleanup(func() { configPaths = orig })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "TD-2135N", cfg.Printer.Model)

	configPaths = func() []string { return nil }
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "TD-2120N", cfg.Printer.Model)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestCustomMedia(t *testing.T) {
	fs := afero.NewMemMapFs()
	info := td2000.MediaInfo58mm
	info[0] = 0x40
	require.NoError(t, afero.WriteFile(fs, "/etc/tdprint/62mm.bin", info[:], 0o644))

	cfg := Default()
	cfg.Media = MediaConfig{Kind: "continuous", WidthMM: 62, InfoFile: "/etc/tdprint/62mm.bin"}

	opts, err := cfg.JobOptions(fs)
	require.NoError(t, err)
	job, err := td2000.NewJob([][]byte{make([]byte, 56)}, opts...)
	require.NoError(t, err)

	spec := job.Spec()
	assert.Equal(t, byte(62), spec.WidthMM)
	assert.Equal(t, info[:], spec.MediaInfo)

	require.NoError(t, afero.WriteFile(fs, "/etc/tdprint/short.bin", info[:100], 0o644))
	cfg.Media.InfoFile = "/etc/tdprint/short.bin"
	_, err = cfg.JobOptions(fs)
	assert.True(t, errors.Is(err, td2000.ErrMediaInfoLength))

	cfg.Media = MediaConfig{Kind: "roll", WidthMM: 62}
	_, err = cfg.JobOptions(fs)
	assert.True(t, errors.Is(err, td2000.ErrUnknownMedia))
}

func TestOpenDump(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.Device = DeviceConfig{Kind: KindDump, Path: "/out/label.prn"}

	ch, err := cfg.Open(fs, zap.NewNop())
	require.NoError(t, err)
	_, err = ch.Write(td2000.Initialize())
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	bs, err := afero.ReadFile(fs, "/out/label.prn")
	require.NoError(t, err)
	assert.Equal(t, td2000.Initialize(), bs)

	cfg.Device.Kind = "bluetooth"
	_, err = cfg.Open(fs, zap.NewNop())
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	assert.Equal(t, filepath.Join(home, "labels"), expandPath("~/labels"))
	assert.Equal(t, "/dev/usb/lp0", expandPath("/dev/usb/lp0"))
	assert.Equal(t, "", expandPath(""))
}
