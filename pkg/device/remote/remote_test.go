package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"tdprint/pkg/device/td2000"
	"tdprint/pkg/device/virtual"
)

func serve(t *testing.T, ch *virtual.Channel) *Client {
	t.Helper()

	handler, err := NewHandler(td2000.New(ch, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	dev, err := New(strings.TrimPrefix(ts.URL, "http://"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dev.(*Client).Close() })

	return dev.(*Client)
}

func TestRemotePrint(t *testing.T) {
	ch := virtual.NewChannel(zap.NewNop())
	dev := serve(t, ch)

	lines := [][]byte{make([]byte, 56), make([]byte, 56)}
	lines[1][0] = 0x80
	job, err := td2000.NewJob(lines, td2000.WithMargin(10), td2000.WithoutFeed())
	require.NoError(t, err)

	require.NoError(t, dev.Print(context.Background(), job))

	w := ch.Writes()
	assert.Contains(t, w, td2000.SpecifyMargin(10))
	assert.Equal(t, td2000.Print(), w[len(w)-1])

	last, err := td2000.RasterTransfer(lines[1])
	require.NoError(t, err)
	assert.Equal(t, last, w[len(w)-2])
}

func TestRemotePrintRejected(t *testing.T) {
	dev := serve(t, virtual.NewChannel(zap.NewNop()))

	job, err := td2000.NewJob([][]byte{make([]byte, 12)})
	require.NoError(t, err)

	err = dev.Print(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "head width")
}

func TestRemoteStatus(t *testing.T) {
	dev := serve(t, virtual.NewChannel(zap.NewNop()))

	st, err := dev.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, td2000.ModelTD2120N, st.Model)
	assert.Equal(t, virtual.SampleStatus, st.Raw())
}

func TestRemoteCancelled(t *testing.T) {
	dev := serve(t, virtual.NewChannel(zap.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dev.Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProxyLifecycle(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	srv := &http.Server{Addr: "127.0.0.1:0"}

	require.NoError(t, Proxy(virtual.Mock(zap.NewNop()), srv, zap.NewNop(), lc))
	assert.NotNil(t, srv.Handler)

	lc.RequireStart().RequireStop()
}
