package headers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ywscr/rtspsession/pkg/base"
)

// AuthMethod is the authentication scheme of a WWW-Authenticate/Authorization header.
type AuthMethod int

// recognized authentication methods.
const (
	AuthBasic AuthMethod = iota
	AuthDigest
)

// Auth is a parsed WWW-Authenticate (or Authorization) challenge. Only Basic is usable to build
// a request's credentials (spec 6); Digest challenges are still tokenized rather than rejected,
// per spec 4.1a's generalized "total parser" property.
type Auth struct {
	Method AuthMethod
	Realm  string
	Nonce  string
}

// ParseAuth decodes a WWW-Authenticate header.
func ParseAuth(v base.HeaderValue) (*Auth, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("value not provided")
	}

	v0 := v[0]
	sp := strings.IndexByte(v0, ' ')
	if sp < 0 {
		return nil, fmt.Errorf("unable to find method (%v)", v0)
	}

	h := &Auth{}
	switch v0[:sp] {
	case "Basic":
		h.Method = AuthBasic
	case "Digest":
		h.Method = AuthDigest
	default:
		return nil, fmt.Errorf("invalid method (%v)", v0[:sp])
	}

	for _, kv := range strings.Split(v0[sp+1:], ",") {
		kv = strings.TrimSpace(kv)
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := parts[0], strings.Trim(parts[1], "\"")
		switch key {
		case "realm":
			h.Realm = val
		case "nonce":
			h.Nonce = val
		}
		// other Digest fields (opaque, stale, algorithm, qop) are tokenized away silently:
		// this implementation only ever constructs Basic credentials.
	}

	return h, nil
}

// BasicAuthorization builds an Authorization: Basic header value from a username and password.
func BasicAuthorization(user, pass string) base.HeaderValue {
	raw := user + ":" + pass
	return base.HeaderValue{"Basic " + base64.StdEncoding.EncodeToString([]byte(raw))}
}
