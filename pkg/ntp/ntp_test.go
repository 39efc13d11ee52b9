package ntp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	enc := Encode(now)
	dec := Decode(enc)
	require.WithinDuration(t, now, dec, time.Millisecond)
}

func TestHalvesAreDistinctFields(t *testing.T) {
	now := time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)
	upper, lower := Halves(now)
	full := Encode(now)
	require.Equal(t, uint32(full>>32), upper)
	require.Equal(t, uint32(full), lower)
}
