package rtspsession

import (
	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/headers"
	"github.com/ywscr/rtspsession/pkg/liberrors"
	"github.com/ywscr/rtspsession/pkg/sdp"
)

// Options sends an OPTIONS request (spec 4.4 step 1).
func (c *Client) Options(u *base.URL) (*base.Response, error) {
	res := make(chan clientRes)
	select {
	case c.optionsCh <- optionsReq{url: u, res: res}:
		r := <-res
		return r.res, r.err
	case <-c.closed:
		return nil, &liberrors.PeerClosedError{Reason: "client closed"}
	}
}

func (c *Client) doOptions(u *base.URL) (*base.Response, error) {
	if err := c.checkState(clientStateConnected, clientStateReady, clientStatePlaying); err != nil {
		return nil, err
	}

	res, err := c.do(&base.Request{Method: base.Options, URL: u, Header: base.NewHeader()})
	if err != nil {
		return nil, err
	}
	if res.StatusCode != base.StatusOK {
		return res, nil
	}

	if pub, ok := res.Header.Get("Public"); ok {
		c.publicMethods = methodListFromPublicHeader(pub)
	}
	return res, nil
}

// Describe sends a DESCRIBE request and parses the returned SDP, following up to one redirect
// (spec 4.4 step 2, supplemented redirect-following feature).
func (c *Client) Describe(u *base.URL) (*sdp.SessionDescription, *base.URL, *base.Response, error) {
	res := make(chan describeRes)
	select {
	case c.describeCh <- describeReq{url: u, res: res}:
		r := <-res
		return r.description, r.baseURL, r.res, r.err
	case <-c.closed:
		return nil, nil, nil, &liberrors.PeerClosedError{Reason: "client closed"}
	}
}

func (c *Client) doDescribe(u *base.URL) (*sdp.SessionDescription, *base.URL, *base.Response, error) {
	if err := c.checkState(clientStateConnected, clientStateReady); err != nil {
		return nil, nil, nil, err
	}
	return c.describeFollowingRedirect(u, true)
}

func (c *Client) describeFollowingRedirect(u *base.URL, allowRedirect bool) (*sdp.SessionDescription, *base.URL, *base.Response, error) {
	hdr := base.NewHeader()
	hdr.Set("Accept", "application/sdp")
	res, err := c.do(&base.Request{Method: base.Describe, URL: u, Header: hdr})
	if err != nil {
		return nil, nil, nil, err
	}

	if res.StatusCode != base.StatusOK {
		if allowRedirect && !c.redirectDisable && isRedirectStatus(res.StatusCode) {
			if loc, ok := res.Header.Get("Location"); ok && len(loc) == 1 {
				redirected, err := base.ParseURL(loc[0])
				if err == nil {
					return c.describeFollowingRedirect(redirected, false)
				}
			}
		}
		return nil, nil, res, &liberrors.ProtocolError{Op: "DESCRIBE", Code: res.StatusCode, Message: res.StatusMessage}
	}

	desc, err := sdp.Unmarshal(res.Body)
	if err != nil {
		return nil, nil, res, &liberrors.ParseError{Op: "DESCRIBE SDP", Err: err}
	}

	baseURL := u
	if cb, ok := res.Header.Get("Content-Base"); ok && len(cb) == 1 {
		if parsed, err := base.ParseURL(cb[0]); err == nil {
			baseURL = parsed
		}
	}

	c.state = clientStateDescribed
	c.description = desc
	c.baseURL = baseURL
	return desc, baseURL, res, nil
}

func isRedirectStatus(code base.StatusCode) bool {
	return code >= base.StatusMovedPermanently && code <= base.StatusUseProxy
}

// Play starts (or resumes) playback (spec 4.4 step 4). A nil rng sends the "npt=0-" default for
// the very first PLAY, per spec 9's resolution of the Range open question.
func (c *Client) Play(rng *headers.Range) (*base.Response, error) {
	res := make(chan clientRes)
	select {
	case c.playCh <- playReq{rng: rng, res: res}:
		r := <-res
		return r.res, r.err
	case <-c.closed:
		return nil, &liberrors.PeerClosedError{Reason: "client closed"}
	}
}

func (c *Client) doPlay(rng *headers.Range) (*base.Response, error) {
	return c.doPlayRetry(rng, false)
}

// doPlayRetry is doPlay with a bounded-depth-1 guard against session-expiry recovery: retried is
// true only on the one retry recoverFromSessionExpired is allowed to produce, per spec 7's
// "SessionExpired is handled locally ... exactly once" and spec 8 scenario 3's "second 454 is
// fatal".
func (c *Client) doPlayRetry(rng *headers.Range, retried bool) (*base.Response, error) {
	if err := c.checkState(clientStateReady); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = headers.ZeroRange()
	}

	hdr := base.NewHeader()
	hdr.Set("Range", rng.Marshal()[0])
	res, err := c.do(&base.Request{Method: base.Play, URL: c.baseURL, Header: hdr})
	if err != nil {
		return nil, err
	}
	if res.StatusCode == base.StatusSessionNotFound {
		if retried {
			return res, &liberrors.ProtocolError{Op: "PLAY", Code: res.StatusCode, Message: "session expired twice"}
		}
		if err := c.recoverFromSessionExpired(); err != nil {
			return nil, err
		}
		return c.doPlayRetry(rng, true)
	}
	if res.StatusCode != base.StatusOK {
		return res, &liberrors.ProtocolError{Op: "PLAY", Code: res.StatusCode, Message: res.StatusMessage}
	}

	c.state = clientStatePlaying
	c.keepalive.reset(c.ident.timeout)
	return res, nil
}

// recoverFromSessionExpired implements spec 7's bounded-depth-1 retry on a 454 seen during
// PLAY/keep-alive: it forgets the current session identity and redoes DESCRIBE then SETUP once,
// per spec 8 scenario 3 ("session id cleared, DESCRIBE + SETUP reissued once").
func (c *Client) recoverFromSessionExpired() error {
	c.ident = nil
	c.state = clientStateConnected
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if _, _, _, err := c.doDescribe(c.baseURL); err != nil {
		return err
	}
	_, err := c.doSetup(c.setupMediaIndex)
	return err
}

func (c *Client) doKeepalive() error {
	if c.state != clientStatePlaying && c.state != clientStateReady {
		return nil
	}

	method := base.GetParameter
	if c.keepaliveMethod != nil {
		method = *c.keepaliveMethod
	} else if !c.publicMethods[base.GetParameter] {
		method = base.Options
	}

	res, err := c.do(&base.Request{Method: method, URL: c.baseURL, Header: base.NewHeader()})
	if err != nil {
		return err
	}

	if res.StatusCode == base.StatusSessionNotFound {
		wasPlaying := c.state == clientStatePlaying
		if err := c.recoverFromSessionExpired(); err != nil {
			return err
		}
		if wasPlaying {
			if _, err := c.doPlayRetry(nil, true); err != nil {
				return err
			}
		}
	}

	c.keepalive.reset(c.ident.timeout)
	return nil
}

// Teardown ends the session cleanly (spec 4.4 step 5).
func (c *Client) Teardown() error {
	res := make(chan error)
	select {
	case c.teardownCh <- teardownReq{res: res}:
		return <-res
	case <-c.closed:
		return nil
	}
}

func (c *Client) doTeardown() error {
	if c.state != clientStateReady && c.state != clientStatePlaying {
		return nil
	}
	c.state = clientStateTerminating

	_, err := c.do(&base.Request{Method: base.Teardown, URL: c.baseURL, Header: base.NewHeader()})
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	c.keepalive.stop()
	return err
}
