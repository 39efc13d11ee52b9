package headers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ywscr/rtspsession/pkg/base"
)

func TestParseAuthBasic(t *testing.T) {
	h, err := ParseAuth(base.HeaderValue{`Basic realm="streaming"`})
	require.NoError(t, err)
	require.Equal(t, AuthBasic, h.Method)
	require.Equal(t, "streaming", h.Realm)
}

func TestParseAuthDigestIsTokenizedNotRejected(t *testing.T) {
	h, err := ParseAuth(base.HeaderValue{`Digest realm="streaming", nonce="abc123", stale="FALSE"`})
	require.NoError(t, err)
	require.Equal(t, AuthDigest, h.Method)
	require.Equal(t, "abc123", h.Nonce)
}

func TestBasicAuthorization(t *testing.T) {
	v := BasicAuthorization("user", "pass")
	require.Equal(t, base.HeaderValue{"Basic dXNlcjpwYXNz"}, v)
}
