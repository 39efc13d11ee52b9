package rtpchannel

import (
	"fmt"
	"net"
)

// maxPortSearchAttempts bounds FindOpenUDPPortPair, per spec 4.7's port-allocation budget.
const maxPortSearchAttempts = 200

// FindOpenUDPPortPair searches upward from searchStart for an even UDP port p such that both p
// (RTP) and p+1 (RTCP) can be bound on addr, returning both already-bound connections. The
// caller owns closing them. Mirrors the even/odd RTP/RTCP pairing convention RFC 3550 assumes
// and the client's UDP listener allocation in spirit, generalized to also serve the server side.
func FindOpenUDPPortPair(addr string, searchStart int) (*net.UDPConn, *net.UDPConn, error) {
	if searchStart%2 != 0 {
		searchStart++
	}

	for attempt := 0; attempt < maxPortSearchAttempts; attempt++ {
		port := searchStart + attempt*2

		rtpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(addr), Port: port})
		if err != nil {
			continue
		}

		rtcpConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(addr), Port: port + 1})
		if err != nil {
			rtpConn.Close()
			continue
		}

		return rtpConn, rtcpConn, nil
	}

	return nil, nil, fmt.Errorf("rtpchannel: no open UDP port pair found starting at %d after %d attempts",
		searchStart, maxPortSearchAttempts)
}
