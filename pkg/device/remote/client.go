package remote

import (
	"context"
	"net/rpc"

	"tdprint/pkg/device/td2000"
	"tdprint/pkg/proto"
)

func New(addr string) (proto.Control, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

type Client struct {
	rpc *rpc.Client
}

func (c *Client) call(ctx context.Context, method string, args interface{}, reply interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	call := c.rpc.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case done := <-call.Done:
		return done.Error
	}
}

func (c *Client) Print(ctx context.Context, job *td2000.Job) error {
	return c.call(ctx, "Service.Print", &PrintRequest{
		Lines: job.Lines(),
		Spec:  job.Spec(),
	}, &EmptyResponse{})
}

func (c *Client) Status(ctx context.Context) (*td2000.Status, error) {
	var resp StatusResponse
	if err := c.call(ctx, "Service.Status", &EmptyResponse{}, &resp); err != nil {
		return nil, err
	}
	return td2000.DecodeStatus(resp.Raw)
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
