package rtpchannel

import (
	"net"
	"testing"
	"time"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"

	"github.com/ywscr/rtspsession/pkg/conn"
)

func TestInterleavedChannelRoundTripsRTP(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	ca := conn.NewConn(a, 0)
	cb := conn.NewConn(b, 0)

	gotRTP := make(chan *rtp.Packet, 1)
	serverSide := NewInterleavedChannel(cb, 0, 1, Handlers{
		OnRTP: func(pkt *rtp.Packet) { gotRTP <- pkt },
	})
	defer serverSide.Close()

	clientSide := NewInterleavedChannel(ca, 0, 1, Handlers{})
	defer clientSide.Close()

	pkt := &rtp.Packet{Header: rtp.Header{SequenceNumber: 7}, Payload: []byte{9, 9}}
	done := make(chan error, 1)
	go func() { done <- clientSide.WriteRTP(pkt) }()

	select {
	case got := <-gotRTP:
		require.Equal(t, uint16(7), got.SequenceNumber)
	case <-time.After(time.Second):
		t.Fatal("RTP frame never demultiplexed")
	}
	require.NoError(t, <-done)
}
