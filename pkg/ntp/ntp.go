// Package ntp encodes and decodes NTP timestamps (RFC 3550 section 4), used to seed SDP origin
// identifiers (spec 4.5.1).
package ntp

import (
	"math"
	"time"
)

const ntpEpochOffset = 2208988800 // seconds between 1900-01-01 and 1970-01-01

// Encode converts t into a 64-bit NTP timestamp (32-bit seconds | 32-bit fraction).
func Encode(t time.Time) uint64 {
	ntp := uint64(t.UnixNano()) + ntpEpochOffset*1000000000
	secs := ntp / 1000000000
	frac := uint64(math.Round(float64(ntp%1000000000) * (1 << 32) / 1000000000))
	return secs<<32 | frac
}

// Decode converts a 64-bit NTP timestamp back to a time.Time.
func Decode(v uint64) time.Time {
	secs := int64(v>>32) - ntpEpochOffset
	nanos := int64(math.Round(float64(v&0xFFFFFFFF) * 1000000000 / (1 << 32)))
	return time.Unix(secs, nanos)
}

// Halves splits an NTP timestamp into its two 32-bit halves, matching the
// RtpClient::dateTimeToNptTimestamp contract named in spec 6: upper32 is the seconds field,
// lower32 is the fractional field.
func Halves(t time.Time) (upper32, lower32 uint32) {
	v := Encode(t)
	return uint32(v >> 32), uint32(v)
}
