package conn

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ywscr/rtspsession/pkg/base"
)

func TestConnRequestResponseRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc := NewConn(client, 0)
	sc := NewConn(server, 0)

	req := &base.Request{
		Method: base.Options,
		URL:    mustURL(t, "rtsp://localhost/stream"),
		Header: base.NewHeader(),
	}
	req.SetCSeq(1)

	done := make(chan error, 1)
	go func() { done <- cc.WriteRequest(req) }()

	got, err := sc.ReadRequest()
	require.NoError(t, err)
	require.NoError(t, <-done)
	require.Equal(t, base.Options, got.Method)
	gotCSeq, ok := got.CSeq()
	require.True(t, ok)
	require.Equal(t, 1, gotCSeq)
}

func TestConnDemultiplexesInterleavedFrames(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc := NewConn(client, 0)
	sc := NewConn(server, 0)

	var gotChannel int
	var gotPayload []byte
	frameSeen := make(chan struct{}, 1)
	sc.SetFrameHandler(func(channel int, payload []byte) {
		gotChannel = channel
		gotPayload = append([]byte{}, payload...)
		frameSeen <- struct{}{}
	})

	fr := &base.InterleavedFrame{Channel: 0, Payload: []byte{0x80, 0x60, 0x00, 0x01}}
	req := &base.Request{
		Method: base.GetParameter,
		URL:    mustURL(t, "rtsp://localhost/stream"),
		Header: base.NewHeader(),
	}
	req.SetCSeq(2)

	go func() {
		_ = cc.WriteInterleavedFrame(fr)
		_ = cc.WriteRequest(req)
	}()

	select {
	case <-frameSeen:
	case <-time.After(time.Second):
		t.Fatal("frame handler never invoked")
	}
	require.Equal(t, 0, gotChannel)
	require.Equal(t, fr.Payload, gotPayload)

	got, err := sc.ReadRequest()
	require.NoError(t, err)
	require.Equal(t, base.GetParameter, got.Method)
}

func mustURL(t *testing.T, s string) *base.URL {
	t.Helper()
	u, err := base.ParseURL(s)
	require.NoError(t, err)
	return u
}
