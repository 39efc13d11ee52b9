package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ywscr/rtspsession/pkg/base"
)

func TestParseTransportUDPHappyPath(t *testing.T) {
	// scenario 1 from spec 8.
	h, err := ParseTransport(base.HeaderValue{
		"RTP/AVP;unicast;client_port=15000-15001;server_port=30000-30001;ssrc=1A2B3C4D",
	})
	require.NoError(t, err)
	require.Equal(t, TransportProtocolUDP, h.Protocol)
	require.Equal(t, &[2]int{15000, 15001}, h.ClientPorts)
	require.Equal(t, &[2]int{30000, 30001}, h.ServerPorts)
	require.NotNil(t, h.SSRC)
	require.Equal(t, uint32(0x1A2B3C4D), *h.SSRC)
	require.False(t, h.IsTCPFallback(true))
}

func TestParseTransportTCPFallback(t *testing.T) {
	// scenario 2 from spec 8: server replies with interleaved= despite a UDP SETUP.
	h, err := ParseTransport(base.HeaderValue{"RTP/AVP/TCP;interleaved=0-1"})
	require.NoError(t, err)
	require.Equal(t, TransportProtocolTCP, h.Protocol)
	require.Equal(t, &[2]int{0, 1}, h.InterleavedIDs)
	require.True(t, h.IsTCPFallback(true))
}

func TestParseTransportServerPortSingleIsFallbackSignal(t *testing.T) {
	h, err := ParseTransport(base.HeaderValue{"RTP/AVP;unicast;server_port=6970"})
	require.NoError(t, err)
	require.True(t, h.ServerPortSingle)
	require.True(t, h.IsTCPFallback(false))
	require.False(t, h.IsTCPFallback(true))
}

func TestParseTransportUnknownTokensArePreservedNotRejected(t *testing.T) {
	h, err := ParseTransport(base.HeaderValue{"RTP/AVP;unicast;client_port=1000-1001;x-custom=abc"})
	require.NoError(t, err)
	require.Contains(t, h.Unknown, "x-custom=abc")
}

func TestParseTransportRejectsGrammarViolations(t *testing.T) {
	_, err := ParseTransport(base.HeaderValue{"RTP/AVP;client_port=notaport"})
	require.Error(t, err)
}

func TestParseSSRCHexFallback(t *testing.T) {
	v, err := ParseSSRC("1A2B3C4D")
	require.NoError(t, err)
	require.Equal(t, uint32(0x1A2B3C4D), v)

	v, err = ParseSSRC("123456")
	require.NoError(t, err)
	require.Equal(t, uint32(123456), v)
}

func TestTransportMarshalRoundTrip(t *testing.T) {
	mode := TransportModePlay
	ssrc := uint32(0x1A2B3C4D)
	h := &Transport{
		Protocol:    TransportProtocolUDP,
		Delivery:    deliveryPtr(TransportDeliveryUnicast),
		ClientPorts: &[2]int{15000, 15001},
		Mode:        &mode,
		SSRC:        &ssrc,
	}
	out := h.Marshal()
	dec, err := ParseTransport(out)
	require.NoError(t, err)
	require.Equal(t, h.ClientPorts, dec.ClientPorts)
	require.Equal(t, *h.SSRC, *dec.SSRC)
}

func deliveryPtr(d TransportDelivery) *TransportDelivery { return &d }
