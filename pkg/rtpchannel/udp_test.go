package rtpchannel

import (
	"net"
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
)

func TestUDPChannelRoundTripsRTPAndDetectsBye(t *testing.T) {
	serverRTP, serverRTCP, err := FindOpenUDPPortPair("127.0.0.1", 20000)
	require.NoError(t, err)
	defer serverRTP.Close()
	defer serverRTCP.Close()

	clientRTP, clientRTCP, err := FindOpenUDPPortPair("127.0.0.1", 21000)
	require.NoError(t, err)
	defer clientRTP.Close()
	defer clientRTCP.Close()

	gotRTP := make(chan *rtp.Packet, 1)
	byeSeen := make(chan struct{}, 1)

	server := NewUDPChannel(serverRTP, serverRTCP, clientRTP.LocalAddr().(*net.UDPAddr), Handlers{})
	defer server.Close()

	client := NewUDPChannel(clientRTP, clientRTCP, serverRTP.LocalAddr().(*net.UDPAddr), Handlers{
		OnRTP: func(pkt *rtp.Packet) { gotRTP <- pkt },
		OnBye: func() { byeSeen <- struct{}{} },
	})
	defer client.Close()

	pkt := &rtp.Packet{Header: rtp.Header{SequenceNumber: 42, Timestamp: 1234, SSRC: 9}, Payload: []byte{1, 2, 3}}
	require.NoError(t, server.WriteRTP(pkt))

	select {
	case got := <-gotRTP:
		require.Equal(t, uint16(42), got.SequenceNumber)
	case <-time.After(time.Second):
		t.Fatal("RTP packet never arrived")
	}

	require.NoError(t, server.WriteRTCP(&rtcp.Goodbye{Sources: []uint32{9}}))

	select {
	case <-byeSeen:
	case <-time.After(time.Second):
		t.Fatal("BYE never observed")
	}
}
