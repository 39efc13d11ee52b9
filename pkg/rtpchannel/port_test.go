package rtpchannel

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindOpenUDPPortPairReturnsConsecutiveEvenOdd(t *testing.T) {
	rtpConn, rtcpConn, err := FindOpenUDPPortPair("127.0.0.1", 30000)
	require.NoError(t, err)
	defer rtpConn.Close()
	defer rtcpConn.Close()

	rtpPort := rtpConn.LocalAddr().(*net.UDPAddr).Port
	rtcpPort := rtcpConn.LocalAddr().(*net.UDPAddr).Port

	require.Equal(t, 0, rtpPort%2)
	require.Equal(t, rtpPort+1, rtcpPort)
}

func TestFindOpenUDPPortPairRoundsOddStartUp(t *testing.T) {
	rtpConn, rtcpConn, err := FindOpenUDPPortPair("127.0.0.1", 30101)
	require.NoError(t, err)
	defer rtpConn.Close()
	defer rtcpConn.Close()

	rtpPort := rtpConn.LocalAddr().(*net.UDPAddr).Port
	require.Equal(t, 0, rtpPort%2)
	require.GreaterOrEqual(t, rtpPort, 30102)
}
