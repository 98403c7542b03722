package remote

import (
	"tdprint/pkg/device/td2000"
)

type EmptyResponse struct {
}

type PrintRequest struct {
	Lines [][]byte
	Spec  td2000.JobSpec
}

type StatusResponse struct {
	Raw []byte
}
