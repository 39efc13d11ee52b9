package base

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// URL is a RTSP URL: a HTTP-shaped URL restricted to the rtsp/rtsps/rtspu schemes, with
// helpers to resolve per-media `control` attributes against a session-level base URL.
type URL url.URL

// ParseURL parses a RTSP URL. The rtspu scheme (UDP control, out of the hot path per spec 6)
// is accepted so that such URLs at least parse; everything downstream of Client.Start assumes
// rtsp/rtsps.
func ParseURL(s string) (*URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "rtsp", "rtsps", "rtspu":
	default:
		return nil, fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}

	return (*URL)(u), nil
}

// String implements fmt.Stringer.
func (u *URL) String() string {
	return (*url.URL)(u).String()
}

// Clone returns a deep copy of u.
func (u *URL) Clone() *URL {
	cp := *(*url.URL)(u)
	return (*URL)(&cp)
}

// CloneWithoutCredentials returns a copy of u with User stripped, suitable for the request-URI
// of a wire message (credentials travel in the Authorization header, never in the URI).
func (u *URL) CloneWithoutCredentials() *URL {
	cp := *(*url.URL)(u)
	cp.User = nil
	return (*URL)(&cp)
}

// RTSPPathAndQuery returns the path (and query, if any) with the leading slash stripped, or
// false if the URL has no absolute path.
func (u *URL) RTSPPathAndQuery() (string, bool) {
	pathAndQuery := u.Path
	if u.RawQuery != "" {
		pathAndQuery += "?" + u.RawQuery
	}
	if len(pathAndQuery) == 0 || pathAndQuery[0] != '/' {
		return "", false
	}
	return pathAndQuery[1:], true
}

// AddControlAttribute appends a per-media `control` attribute to u, per RFC 2326 section C.1.1:
// an absolute control URL replaces u outright, a relative one is appended to the path.
func (u *URL) AddControlAttribute(control string) {
	if control == "" || control == "*" {
		return
	}

	if strings.Contains(control, "://") {
		if parsed, err := ParseURL(control); err == nil {
			*u = *parsed
		}
		return
	}

	sep := "/"
	if strings.HasSuffix(u.Path, "/") || control[0] == '?' {
		sep = ""
	}
	if control[0] == '?' {
		u.RawQuery = control[1:]
		return
	}
	u.Path += sep + control
}

// Hostport returns host and port, defaulting port to 554 (rtsp) or 322 (rtsps) if absent.
func (u *URL) Hostport() string {
	host := u.Host
	if _, _, err := splitHostPort(host); err == nil {
		return host
	}
	if u.Scheme == "rtsps" {
		return host + ":322"
	}
	return host + ":554"
}

func splitHostPort(hostport string) (host, port string, err error) {
	i := strings.LastIndex(hostport, ":")
	if i < 0 {
		return "", "", fmt.Errorf("missing port in address %q", hostport)
	}
	host, port = hostport[:i], hostport[i+1:]
	if _, err := strconv.Atoi(port); err != nil {
		return "", "", fmt.Errorf("invalid port in address %q", hostport)
	}
	return host, port, nil
}
