package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, s string) *URL {
	u, err := ParseURL(s)
	require.NoError(t, err)
	return u
}

func TestRequestMarshalDecodeRoundTrip(t *testing.T) {
	for _, ca := range []struct {
		name string
		req  *Request
	}{
		{
			"options",
			func() *Request {
				h := NewHeader()
				h.Set("CSeq", "1")
				return &Request{Method: Options, URL: mustParseURL(t, "rtsp://example.com/media"), Header: h}
			}(),
		},
		{
			"describe with body",
			func() *Request {
				h := NewHeader()
				h.Set("CSeq", "2")
				h.Set("Accept", "application/sdp")
				return &Request{
					Method: Describe,
					URL:    mustParseURL(t, "rtsp://example.com/media"),
					Header: h,
					Body:   []byte("v=0\r\n"),
				}
			}(),
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			byts := ca.req.Marshal()

			dec, n, err := DecodeRequest(byts, 0)
			require.NoError(t, err)
			require.Equal(t, len(byts), n)
			require.Equal(t, ca.req.Method, dec.Method)
			require.Equal(t, ca.req.URL.String(), dec.URL.String())
			require.Equal(t, ca.req.Body, dec.Body)
			for _, k := range ca.req.Header.Keys() {
				v, ok := dec.Header.Get(k)
				require.True(t, ok)
				exp, _ := ca.req.Header.Get(k)
				require.Equal(t, []string(exp), []string(v))
			}
		})
	}
}

func TestRequestDecodeNeedMore(t *testing.T) {
	_, _, err := DecodeRequest([]byte("OPTIONS rtsp://example.com/media RTSP/1.0\r\nCSeq: 1\r\n"), 0)
	require.ErrorIs(t, err, ErrNeedMore)
}

func TestRequestDecodeNotRtspInterleaved(t *testing.T) {
	_, _, err := DecodeRequest([]byte{0x24, 0x00, 0x00, 0x04}, 0)
	require.ErrorIs(t, err, ErrNotRtsp)
}

func TestRequestDecodeTooLarge(t *testing.T) {
	big := make([]byte, 100)
	for i := range big {
		big[i] = 'a'
	}
	_, _, err := DecodeRequest(big, 10)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, ParseErrorTooLarge, pe.Kind)
}
