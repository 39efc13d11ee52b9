package base

import "fmt"

// InterleavedFrame carries RTP or RTCP payload inside a RTSP/TCP connection (spec 6,
// "Interleaved framing"). Even channel ids carry RTP, odd ones carry RTCP.
type InterleavedFrame struct {
	Channel int
	Payload []byte
}

// DecodeInterleavedFrame decodes an interleaved frame from buf. Returns ErrNeedMore if buf does
// not yet hold the 4-byte header plus the full payload.
func DecodeInterleavedFrame(buf []byte) (*InterleavedFrame, int, error) {
	if len(buf) < 4 {
		return nil, 0, ErrNeedMore
	}
	if buf[0] != InterleavedFrameMagicByte {
		return nil, 0, fmt.Errorf("invalid magic byte (0x%.2x)", buf[0])
	}

	payloadLen := int(uint16(buf[2])<<8 | uint16(buf[3]))
	if len(buf) < 4+payloadLen {
		return nil, 0, ErrNeedMore
	}

	payload := make([]byte, payloadLen)
	copy(payload, buf[4:4+payloadLen])

	return &InterleavedFrame{Channel: int(buf[1]), Payload: payload}, 4 + payloadLen, nil
}

// MarshalSize returns the size in bytes of the marshaled frame.
func (f *InterleavedFrame) MarshalSize() int {
	return 4 + len(f.Payload)
}

// MarshalTo writes the marshaled frame into buf, which must be at least MarshalSize() long.
func (f *InterleavedFrame) MarshalTo(buf []byte) int {
	buf[0] = InterleavedFrameMagicByte
	buf[1] = byte(f.Channel)
	buf[2] = byte(len(f.Payload) >> 8)
	buf[3] = byte(len(f.Payload))
	copy(buf[4:], f.Payload)
	return 4 + len(f.Payload)
}

// Marshal encodes the frame to bytes.
func (f *InterleavedFrame) Marshal() []byte {
	buf := make([]byte, f.MarshalSize())
	f.MarshalTo(buf)
	return buf
}
