package proto

import (
	"context"
	"io"

	"tdprint/pkg/device/td2000"
)

// Control is a printer, local or remote.
type Control interface {
	Print(ctx context.Context, job *td2000.Job) error
	Status(ctx context.Context) (*td2000.Status, error)
}

// Channel is the byte link to a printer.
type Channel interface {
	io.ReadWriteCloser
}
