package proto

import (
	"context"
	"io"
	"time"

	"github.com/google/gousb"
	"github.com/pkg/errors"
)

// BrotherVendorID is the USB vendor of the TD-2000 family.
const BrotherVendorID gousb.ID = 0x04F9

const defaultUSBReadTimeout = 100 * time.Millisecond

// USB is a printer claimed directly over its bulk endpoints.
type USB struct {
	ctx         *gousb.Context
	dev         *gousb.Device
	cfg         *gousb.Config
	intf        *gousb.Interface
	out         *gousb.OutEndpoint
	in          *gousb.InEndpoint
	readTimeout time.Duration
	closed      bool
}

// OpenUSB claims the first interface of the device and picks its bulk
// endpoints. A zero readTimeout uses 100ms.
func OpenUSB(vid, pid gousb.ID, readTimeout time.Duration) (*USB, error) {
	if readTimeout <= 0 {
		readTimeout = defaultUSBReadTimeout
	}

	u := &USB{ctx: gousb.NewContext(), readTimeout: readTimeout}

	dev, err := u.ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		_ = u.Close()
		return nil, errors.Wrapf(err, "open usb %s:%s", vid, pid)
	}
	if dev == nil {
		_ = u.Close()
		return nil, errors.Errorf("usb device %s:%s not found", vid, pid)
	}
	u.dev = dev

	if err := dev.SetAutoDetach(true); err != nil {
		_ = u.Close()
		return nil, err
	}

	if u.cfg, err = dev.Config(1); err != nil {
		_ = u.Close()
		return nil, err
	}

	if u.intf, err = u.cfg.Interface(0, 0); err != nil {
		_ = u.Close()
		return nil, err
	}

	for _, ep := range u.intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionOut && u.out == nil:
			u.out, err = u.intf.OutEndpoint(ep.Number)
		case ep.Direction == gousb.EndpointDirectionIn && u.in == nil:
			u.in, err = u.intf.InEndpoint(ep.Number)
		}
		if err != nil {
			_ = u.Close()
			return nil, err
		}
	}

	if u.out == nil {
		_ = u.Close()
		return nil, errors.New("usb device has no bulk out endpoint")
	}

	return u, nil
}

// Read waits up to the read timeout and reports a timeout as zero bytes.
func (u *USB) Read(p []byte) (int, error) {
	if u.closed {
		return 0, io.ErrClosedPipe
	}
	if u.in == nil {
		return 0, errors.New("usb read not supported")
	}

	ctx, cancel := context.WithTimeout(context.Background(), u.readTimeout)
	defer cancel()

	n, err := u.in.ReadContext(ctx, p)
	if err != nil && ctx.Err() != nil {
		return n, nil
	}
	return n, err
}

func (u *USB) Write(p []byte) (int, error) {
	if u.closed || u.out == nil {
		return 0, io.ErrClosedPipe
	}
	return u.out.Write(p)
}

func (u *USB) Close() error {
	if u.intf != nil {
		u.intf.Close()
		u.intf = nil
	}
	if u.cfg != nil {
		_ = u.cfg.Close()
		u.cfg = nil
	}
	if u.dev != nil {
		_ = u.dev.Close()
		u.dev = nil
	}
	if u.ctx != nil {
		_ = u.ctx.Close()
		u.ctx = nil
	}
	u.out, u.in = nil, nil
	u.closed = true
	return nil
}
