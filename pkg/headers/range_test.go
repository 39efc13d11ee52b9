package headers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ywscr/rtspsession/pkg/base"
)

func TestParseRangeOpenEnded(t *testing.T) {
	// scenario 1 from spec 8.
	h, err := ParseRange(base.HeaderValue{"npt=0-"})
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), h.Start)
	require.Nil(t, h.End)
}

func TestParseRangeWithEnd(t *testing.T) {
	h, err := ParseRange(base.HeaderValue{"npt=5-10.5"})
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, h.Start)
	require.NotNil(t, h.End)
	require.InDelta(t, 10.5, h.End.Seconds(), 0.001)
}

func TestZeroRangeMarshal(t *testing.T) {
	require.Equal(t, base.HeaderValue{"npt=0-"}, ZeroRange().Marshal())
}

func TestParseRangeRejectsUnsupportedUnit(t *testing.T) {
	_, err := ParseRange(base.HeaderValue{"smpte=0:00:00-"})
	require.Error(t, err)
}
