package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ywscr/rtspsession/pkg/base"
)

// RTPInfoEntry is one per-track entry of a RTP-Info header (spec 4.1).
type RTPInfoEntry struct {
	URL     string
	SeqNo   uint16
	RTPTime *uint32
}

// RTPInfo is a RTP-Info header: a comma-list of per-track entries.
type RTPInfo []*RTPInfoEntry

// ParseRTPInfo decodes a RTP-Info header.
func ParseRTPInfo(v base.HeaderValue) (RTPInfo, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("value not provided")
	}
	if len(v) > 1 {
		return nil, fmt.Errorf("value provided multiple times (%v)", v)
	}

	var out RTPInfo
	for _, entry := range strings.Split(v[0], ",") {
		e := &RTPInfoEntry{}
		sawSeq := false

		for _, kv := range strings.Split(entry, ";") {
			kv = strings.TrimSpace(kv)
			if kv == "" {
				continue
			}
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("unable to parse key-value (%v)", kv)
			}
			key, val := parts[0], parts[1]

			switch key {
			case "url":
				e.URL = val
			case "seq", "seqno":
				n, err := strconv.ParseUint(val, 10, 16)
				if err != nil {
					return nil, fmt.Errorf("invalid seq (%v)", val)
				}
				e.SeqNo = uint16(n)
				sawSeq = true
			case "rtptime":
				n, err := strconv.ParseUint(val, 10, 32)
				if err != nil {
					return nil, fmt.Errorf("invalid rtptime (%v)", val)
				}
				v := uint32(n)
				e.RTPTime = &v
			}
			// unrecognized keys are ignored, not rejected
		}

		if !sawSeq {
			return nil, fmt.Errorf("entry missing seq (%v)", entry)
		}
		out = append(out, e)
	}

	return out, nil
}

// Marshal encodes a RTP-Info header.
func (h RTPInfo) Marshal() base.HeaderValue {
	var entries []string
	for _, e := range h {
		parts := []string{}
		if e.URL != "" {
			parts = append(parts, "url="+e.URL)
		}
		parts = append(parts, "seq="+strconv.FormatUint(uint64(e.SeqNo), 10))
		if e.RTPTime != nil {
			parts = append(parts, "rtptime="+strconv.FormatUint(uint64(*e.RTPTime), 10))
		}
		entries = append(entries, strings.Join(parts, ";"))
	}
	return base.HeaderValue{strings.Join(entries, ",")}
}
