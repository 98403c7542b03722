package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"tdprint/pkg/bitmap"
	"tdprint/pkg/config"
	"tdprint/pkg/device/remote"
	"tdprint/pkg/device/td2000"
	"tdprint/pkg/proto"
)

var cfgPath = flag.String("config", "", "config file")
var device = flag.String("device", "", "device kind: serial, usb, file or dump")
var path = flag.String("path", "", "serial port name, device node or dump file")
var remoteAddr = flag.String("remote", "", "print through a tdserve at this address")
var output = flag.StringP("output", "o", "", "write the job stream to a .prn file instead of a printer")
var model = flag.String("model", "", "printer model, e.g. TD-2120N")
var media = flag.String("media", "", "media size, e.g. 58mm or 40x60mm")
var mediaInfo = flag.String("media-info", "", "127 byte media information file")
var compress = flag.String("compress", "", "raster compression: none or tiff")
var margin = flag.Int("margin", -1, "feed margin in dots, -1 for none")
var noFeed = flag.Bool("no-feed", false, "end with print instead of print with feeding")
var zeroLines = flag.Bool("zero-lines", false, "send blank lines as zero raster frames")
var mirror = flag.Bool("mirror", false, "mirror each row")
var chessboard = flag.Int("chessboard", 0, "print a chessboard test pattern of this many lines")
var band = flag.Int("band", 8, "chessboard band height")
var preview = flag.String("preview", "", "write a PNG preview of the device lines")
var status = flag.Bool("status", false, "query printer status and exit")
var progress = flag.Bool("progress", true, "show transfer progress")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [image.pbm|image.png]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := newLogger(*debug)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("load config")
	}
	applyFlags(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := afero.NewOsFs()

	if *status {
		dev, closer, err := open(cfg, fs, logger, nil)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("open device")
		}
		defer closer()

		st, err := dev.Status(ctx)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("status")
		}
		fmt.Print(st)
		return
	}

	job, err := buildJob(cfg, fs)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("build job")
	}

	if *preview != "" {
		if err := bitmap.SavePreview(*preview, job.Lines(), 4); err != nil {
			logger.With(zap.Error(err)).Fatal("preview")
		}
		logger.With(zap.String("file", *preview)).Info("preview saved")
	}

	var onProgress func(sent, total int)
	if *progress {
		bar := progressbar.Default(int64(job.Len()), "printing")
		onProgress = func(sent, _ int) {
			_ = bar.Set(sent)
		}
	}

	dev, closer, err := open(cfg, fs, logger, onProgress)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("open device")
	}
	defer closer()

	if err := dev.Print(ctx, job); err != nil {
		logger.With(zap.Error(err)).Fatal("print")
	}
}

func newLogger(debug bool) *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	if !debug {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func applyFlags(cfg *config.Config) {
	changed := flag.CommandLine.Changed

	if changed("device") {
		cfg.Device.Kind = *device
	}
	if changed("path") {
		cfg.Device.Path = *path
	}
	if *output != "" {
		cfg.Device.Kind = config.KindDump
		cfg.Device.Path = *output
	}
	if changed("model") {
		cfg.Printer.Model = *model
	}
	if changed("media") {
		cfg.Media.Size = *media
	}
	if changed("media-info") {
		cfg.Media.InfoFile = *mediaInfo
	}
	if changed("compress") {
		cfg.Job.Compress = *compress
	}
	if changed("margin") {
		if *margin < 0 {
			cfg.Job.Margin = nil
		} else {
			cfg.Job.Margin = margin
		}
	}
	if changed("no-feed") {
		feed := !*noFeed
		cfg.Job.Feed = &feed
	}
	if changed("zero-lines") {
		cfg.Job.ZeroLines = *zeroLines
	}
	if changed("mirror") {
		cfg.Job.Mirror = *mirror
	}
}

func buildJob(cfg *config.Config, fs afero.Fs) (*td2000.Job, error) {
	m, err := cfg.Model()
	if err != nil {
		return nil, err
	}

	var lines [][]byte
	if *chessboard > 0 {
		lines = bitmap.Chessboard(m.HeadBytes, *chessboard, *band)
	} else {
		if flag.NArg() != 1 {
			flag.Usage()
			os.Exit(2)
		}

		f, err := fs.Open(flag.Arg(0))
		if err != nil {
			return nil, err
		}
		defer f.Close()

		var b *bitmap.Bitmap
		if strings.EqualFold(filepath.Ext(flag.Arg(0)), ".pbm") {
			b, err = bitmap.Load(f)
		} else {
			b, err = decodeImage(f, m.HeadBytes)
		}
		if err != nil {
			return nil, err
		}

		var lopts []bitmap.LineOption
		if cfg.Job.Mirror {
			lopts = append(lopts, bitmap.WithMirror())
		}
		if lines, err = bitmap.ToDeviceLines(b, m.HeadBytes, lopts...); err != nil {
			return nil, err
		}
	}

	opts, err := cfg.JobOptions(fs)
	if err != nil {
		return nil, err
	}
	return td2000.NewJob(lines, opts...)
}

// decodeImage dithers any other image so each row plus its terminator fills
// exactly one head line.
func decodeImage(r io.Reader, headBytes int) (*bitmap.Bitmap, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}
	return bitmap.FromImage(img, (headBytes-1)*8)
}

func open(cfg *config.Config, fs afero.Fs, logger *zap.Logger, onProgress func(sent, total int)) (proto.Control, func(), error) {
	if *remoteAddr != "" {
		dev, err := remote.New(*remoteAddr)
		if err != nil {
			return nil, nil, err
		}
		return dev, func() { _ = dev.(*remote.Client).Close() }, nil
	}

	opts, err := cfg.PrinterOptions()
	if err != nil {
		return nil, nil, err
	}
	if onProgress != nil {
		opts = append(opts, td2000.WithProgress(onProgress))
	}

	ch, err := cfg.Open(fs, logger)
	if err != nil {
		return nil, nil, err
	}

	printer := td2000.New(ch, logger, opts...)
	return printer, func() { _ = printer.Close() }, nil
}
