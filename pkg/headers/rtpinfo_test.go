package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ywscr/rtspsession/pkg/base"
)

func TestParseRTPInfo(t *testing.T) {
	// scenario 1 from spec 8.
	h, err := ParseRTPInfo(base.HeaderValue{"url=rtsp://h/track1;seqno=17;rtptime=900000"})
	require.NoError(t, err)
	require.Len(t, h, 1)
	require.Equal(t, uint16(17), h[0].SeqNo)
	require.NotNil(t, h[0].RTPTime)
	require.Equal(t, uint32(900000), *h[0].RTPTime)
}

func TestParseRTPInfoMultipleTracks(t *testing.T) {
	h, err := ParseRTPInfo(base.HeaderValue{
		"url=rtsp://h/track1;seq=1;rtptime=100,url=rtsp://h/track2;seq=2;rtptime=200",
	})
	require.NoError(t, err)
	require.Len(t, h, 2)
	require.Equal(t, uint16(2), h[1].SeqNo)
}

func TestParseRTPInfoRequiresSeq(t *testing.T) {
	_, err := ParseRTPInfo(base.HeaderValue{"url=rtsp://h/track1"})
	require.Error(t, err)
}
