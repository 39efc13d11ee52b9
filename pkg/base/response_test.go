package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseMarshalDecodeRoundTrip(t *testing.T) {
	h := NewHeader()
	h.Set("CSeq", "4")
	h.Set("Session", "12345678;timeout=60")
	res := &Response{StatusCode: StatusOK, Header: h}

	byts := res.Marshal()
	require.Contains(t, string(byts), "RTSP/1.0 200 OK\r\n")

	dec, n, err := DecodeResponse(byts, 0)
	require.NoError(t, err)
	require.Equal(t, len(byts), n)
	require.Equal(t, StatusOK, dec.StatusCode)
	cseq, ok := dec.CSeq()
	require.True(t, ok)
	require.Equal(t, 4, cseq)
}

func TestResponseDefaultStatusMessage(t *testing.T) {
	res := &Response{StatusCode: StatusSessionNotFound, Header: NewHeader()}
	byts := res.Marshal()
	require.Contains(t, string(byts), "454 Session Not Found")
}

func TestResponseDecodeNeedMore(t *testing.T) {
	_, _, err := DecodeResponse([]byte("RTSP/1.0 200 OK\r\nCSeq: 4\r\n"), 0)
	require.ErrorIs(t, err, ErrNeedMore)
}
