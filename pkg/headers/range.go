package headers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ywscr/rtspsession/pkg/base"
)

// Range is a Range header expressed in NPT (Normal Play Time) units: `npt=start-[end]` (spec
// 4.1). start defaults to "0" per spec 9's resolution of the m_Range open question.
type Range struct {
	Start time.Duration
	End   *time.Duration
}

// ZeroRange is the Range sent on the very first PLAY, when no resume-point cursor exists yet.
func ZeroRange() *Range {
	return &Range{Start: 0}
}

func parseNPTTime(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid NPT time (%v)", s)
	}

	var hours, mins uint64
	if len(parts) == 3 {
		v, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return 0, err
		}
		hours = v
		parts = parts[1:]
	}
	if len(parts) == 2 {
		v, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return 0, err
		}
		mins = v
		parts = parts[1:]
	}

	secs, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}

	return time.Duration(secs*float64(time.Second)) + time.Duration(mins*60+hours*3600)*time.Second, nil
}

func marshalNPTTime(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// ParseRange decodes a Range header. Only the "npt" unit is supported, per spec scope; other
// units (smpte, clock) are out of scope and rejected as a malformed value rather than silently
// misinterpreted.
func ParseRange(v base.HeaderValue) (*Range, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("value not provided")
	}
	if len(v) > 1 {
		return nil, fmt.Errorf("value provided multiple times (%v)", v)
	}

	val := v[0]
	// strip a trailing ";time=..." parameter, which this implementation does not act on
	if i := strings.Index(val, ";"); i >= 0 {
		val = val[:i]
	}

	if !strings.HasPrefix(val, "npt=") {
		return nil, fmt.Errorf("unsupported range unit (%v)", v[0])
	}
	val = val[len("npt="):]

	parts := strings.SplitN(val, "-", 2)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid range (%v)", v[0])
	}

	start, err := parseNPTTime(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid range start (%v)", parts[0])
	}

	r := &Range{Start: start}
	if len(parts) == 2 && parts[1] != "" {
		end, err := parseNPTTime(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid range end (%v)", parts[1])
		}
		r.End = &end
	}

	return r, nil
}

// Marshal encodes a Range header.
func (h *Range) Marshal() base.HeaderValue {
	v := "npt=" + marshalNPTTime(h.Start) + "-"
	if h.End != nil {
		v += marshalNPTTime(*h.End)
	}
	return base.HeaderValue{v}
}
