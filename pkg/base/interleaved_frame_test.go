package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterleavedFrameRoundTrip(t *testing.T) {
	f := &InterleavedFrame{Channel: 0, Payload: []byte{0xDE, 0xAD, 0xBE, 0xEF}}
	byts := f.Marshal()

	dec, n, err := DecodeInterleavedFrame(byts)
	require.NoError(t, err)
	require.Equal(t, len(byts), n)
	require.Equal(t, f.Channel, dec.Channel)
	require.Equal(t, f.Payload, dec.Payload)
}

func TestInterleavedFrameNeedMore(t *testing.T) {
	_, _, err := DecodeInterleavedFrame([]byte{0x24, 0x00, 0x00, 0x04, 0xDE, 0xAD})
	require.ErrorIs(t, err, ErrNeedMore)
}

func TestDecodeSniffsInterleavedFrameAsNotRtsp(t *testing.T) {
	buf := []byte("RTSP/1.0 200 OK\r\nCSeq: 4\r\n\r\n")
	res, n, err := DecodeResponse(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, StatusOK, res.StatusCode)

	rest := []byte{0x24, 0x00, 0x00, 0x04, 0xDE, 0xAD, 0xBE, 0xEF}
	_, _, err = DecodeResponse(rest, 0)
	require.ErrorIs(t, err, ErrNotRtsp)

	fr, n, err := DecodeInterleavedFrame(rest)
	require.NoError(t, err)
	require.Equal(t, len(rest), n)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, fr.Payload)
}
