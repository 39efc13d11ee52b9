package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ywscr/rtspsession/pkg/base"
)

// DefaultSessionTimeout is the timeout assumed when a Session header omits "timeout=" (spec 3).
const DefaultSessionTimeout = 60

// Session is a Session header: `id[;timeout=N]` (spec 4.1).
type Session struct {
	ID      string
	Timeout uint
}

// ParseSession decodes a Session header.
func ParseSession(v base.HeaderValue) (*Session, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("value not provided")
	}
	if len(v) > 1 {
		return nil, fmt.Errorf("value provided multiple times (%v)", v)
	}

	parts := strings.Split(v[0], ";")
	h := &Session{ID: strings.TrimSpace(parts[0]), Timeout: DefaultSessionTimeout}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || kv[0] != "timeout" {
			continue // unknown session params are skipped without error (they are not kept)
		}
		n, err := strconv.ParseUint(kv[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout (%v)", kv[1])
		}
		h.Timeout = uint(n)
	}

	return h, nil
}

// Marshal encodes a Session header.
func (h *Session) Marshal() base.HeaderValue {
	return base.HeaderValue{h.ID + ";timeout=" + strconv.FormatUint(uint64(h.Timeout), 10)}
}
