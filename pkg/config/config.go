package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/gousb"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"tdprint/pkg/device/td2000"
	"tdprint/pkg/proto"
)

// Device kinds.
const (
	KindSerial = "serial"
	KindUSB    = "usb"
	KindFile   = "file"
	KindDump   = "dump"
)

type Config struct {
	Device  DeviceConfig  `koanf:"device"`
	Printer PrinterConfig `koanf:"printer"`
	Media   MediaConfig   `koanf:"media"`
	Job     JobConfig     `koanf:"job"`
	Status  StatusConfig  `koanf:"status"`
}

type DeviceConfig struct {
	Kind string `koanf:"kind"` // "serial", "usb", "file" or "dump"
	Path string `koanf:"path"` // port name substring, device node or dump file
	Baud int    `koanf:"baud"`
	VID  uint16 `koanf:"vid"`
	PID  uint16 `koanf:"pid"`
}

type PrinterConfig struct {
	Model     string `koanf:"model"`
	HeadBytes int    `koanf:"head_bytes"` // overrides the model's head width
}

// MediaConfig names a known size, or describes custom media with kind,
// width_mm and length_mm.
type MediaConfig struct {
	Size     string `koanf:"size"`
	Kind     string `koanf:"kind"` // "continuous" or "die-cut"
	WidthMM  int    `koanf:"width_mm"`
	LengthMM int    `koanf:"length_mm"`
	InfoFile string `koanf:"info_file"`
}

type JobConfig struct {
	Compress  string `koanf:"compress"` // "none" or "tiff"
	Margin    *int   `koanf:"margin"`   // dots; unset sends no margin frame
	Feed      *bool  `koanf:"feed"`
	ZeroLines bool   `koanf:"zero_lines"`
	Mirror    bool   `koanf:"mirror"`
	AutoCut   bool   `koanf:"auto_cut"`
}

type StatusConfig struct {
	Timeout time.Duration `koanf:"timeout"`
	Delay   time.Duration `koanf:"delay"`
	Check   bool          `koanf:"check"`
}

func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Kind: KindSerial,
			Path: "ttyACM0",
			Baud: proto.DefaultBaudRate,
			VID:  uint16(proto.BrotherVendorID),
		},
		Printer: PrinterConfig{Model: "TD-2120N"},
		Media:   MediaConfig{},
		Job:     JobConfig{Compress: "none"},
		Status:  StatusConfig{Timeout: td2000.DefaultStatusTimeout},
	}
}

// Load reads ~/.config/tdprint/config.toml, then ./config.toml, then path if
// given. Later files override earlier ones; path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load %s", p)
			}
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(expandPath(path)), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Device.Path = expandPath(cfg.Device.Path)
	cfg.Media.InfoFile = expandPath(cfg.Media.InfoFile)

	return cfg, nil
}

// configPaths lists the files merged before an explicit path.
var configPaths = defaultConfigPaths

func defaultConfigPaths() []string {
	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tdprint", "config.toml"))
	}

	return append(paths, "config.toml")
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Model resolves the configured printer model, applying head_bytes.
func (c *Config) Model() (td2000.Model, error) {
	m, err := td2000.ModelByName(c.Printer.Model)
	if err != nil {
		return td2000.Model{}, err
	}
	if c.Printer.HeadBytes > 0 {
		m.HeadBytes = c.Printer.HeadBytes
	}
	return m, nil
}

// DefaultMediaSize is used when neither a size nor custom media is configured.
const DefaultMediaSize = "58mm"

// MediaSpec resolves the configured media. A size wins over custom fields.
func (c *Config) MediaSpec() (td2000.Media, error) {
	if c.Media.Size != "" {
		return td2000.LookupMedia(c.Media.Size)
	}
	if c.Media.Kind == "" && c.Media.WidthMM == 0 && c.Media.LengthMM == 0 {
		return td2000.LookupMedia(DefaultMediaSize)
	}

	m := td2000.Media{
		Name:     "custom",
		Type:     td2000.MediaContinuous,
		WidthMM:  byte(c.Media.WidthMM),
		LengthMM: byte(c.Media.LengthMM),
	}
	switch c.Media.Kind {
	case "", "continuous":
	case "die-cut", "diecut":
		m.Type = td2000.MediaDieCut
	default:
		return td2000.Media{}, errors.Wrapf(td2000.ErrUnknownMedia, "kind %q", c.Media.Kind)
	}
	if m.WidthMM == 0 {
		return td2000.Media{}, errors.Wrap(td2000.ErrUnknownMedia, "custom media needs width_mm")
	}
	return m, nil
}

// JobOptions turns the media and job sections into job options. A media
// info file is read from fs.
func (c *Config) JobOptions(fs afero.Fs) ([]td2000.JobOption, error) {
	media, err := c.MediaSpec()
	if err != nil {
		return nil, err
	}
	opts := []td2000.JobOption{td2000.WithMedia(media)}

	if c.Media.InfoFile != "" {
		f, err := fs.Open(c.Media.InfoFile)
		if err != nil {
			return nil, errors.Wrap(err, "media info")
		}
		defer f.Close()

		info, err := td2000.ReadMediaInfo(f)
		if err != nil {
			return nil, errors.Wrap(err, c.Media.InfoFile)
		}
		opts = append(opts, td2000.WithMediaInfo(info))
	}

	mode, err := td2000.ParseCompressionMode(c.Job.Compress)
	if err != nil {
		return nil, err
	}
	opts = append(opts, td2000.WithCompression(mode))

	if c.Job.Margin != nil {
		if *c.Job.Margin < 0 || *c.Job.Margin > 0xFFFF {
			return nil, errors.Errorf("margin %d out of range", *c.Job.Margin)
		}
		opts = append(opts, td2000.WithMargin(uint16(*c.Job.Margin)))
	}
	if c.Job.Feed != nil && !*c.Job.Feed {
		opts = append(opts, td2000.WithoutFeed())
	}
	if c.Job.ZeroLines {
		opts = append(opts, td2000.WithZeroLines())
	}
	if c.Job.AutoCut {
		opts = append(opts, td2000.WithModeSettings(td2000.ModeAutoCut))
	}

	return opts, nil
}

// PrinterOptions turns the printer and status sections into printer options.
func (c *Config) PrinterOptions() ([]td2000.Option, error) {
	model, err := c.Model()
	if err != nil {
		return nil, err
	}

	opts := []td2000.Option{
		td2000.WithModel(model),
		td2000.WithStatusTimeout(c.Status.Timeout),
		td2000.WithStatusDelay(c.Status.Delay),
	}
	if c.Status.Check {
		opts = append(opts, td2000.WithStatusCheck())
	}
	return opts, nil
}

// Open opens the configured channel.
func (c *Config) Open(fs afero.Fs, logger *zap.Logger) (proto.Channel, error) {
	logger.With(zap.String("kind", c.Device.Kind), zap.String("path", c.Device.Path)).Debug("open device")

	switch c.Device.Kind {
	case KindSerial:
		s := proto.NewSerial(c.Device.Path)
		err := s.Open(&proto.Options{
			DTR:         true,
			RTS:         true,
			BaudRate:    c.Device.Baud,
			ReadTimeout: 100 * time.Millisecond,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindUSB:
		u, err := proto.OpenUSB(gousb.ID(c.Device.VID), gousb.ID(c.Device.PID), 0)
		if err != nil {
			return nil, err
		}
		return u, nil
	case KindFile:
		f, err := proto.OpenDevice(fs, c.Device.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindDump:
		f, err := proto.CreateDump(fs, c.Device.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, errors.Errorf("unknown device kind %q", c.Device.Kind)
}
