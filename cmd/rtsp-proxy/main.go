// Command rtsp-proxy connects to an upstream RTSP server as a client, and republishes whatever
// it receives to downstream clients through a local Server.
//
// Usage:
//
//	rtsp-proxy -upstream rtsp://camera.local:554/stream -listen :8554
package main

import (
	"flag"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	rtspsession "github.com/ywscr/rtspsession"
	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/rtpchannel"
	"github.com/ywscr/rtspsession/pkg/sdp"
)

// relayFeed is a SourceFeed (spec 4.3a) that fans out whatever it receives from the upstream
// Client to every downstream ServerSession subscribed to it.
type relayFeed struct {
	mu   sync.Mutex
	subs map[*rtspsession.ServerSession]struct{}
}

func newRelayFeed() *relayFeed {
	return &relayFeed{subs: map[*rtspsession.ServerSession]struct{}{}}
}

func (f *relayFeed) Subscribe(s *rtspsession.ServerSession) func() {
	f.mu.Lock()
	f.subs[s] = struct{}{}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, s)
		f.mu.Unlock()
	}
}

func (f *relayFeed) onRTP(pkt *rtp.Packet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		s.WriteRTP(pkt)
	}
}

func (f *relayFeed) onRTCP(pkt rtcp.Packet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		s.WriteRTCP(pkt)
	}
}

func main() {
	upstream := flag.String("upstream", "", "upstream RTSP URL to pull from")
	listen := flag.String("listen", ":8554", "address to serve downstream clients on")
	flag.Parse()

	log := rtspsession.NewSlogLogger(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug})))

	if *upstream == "" {
		log.Error("missing -upstream")
		os.Exit(2)
	}

	feed := newRelayFeed()

	desc, client, err := pullUpstream(*upstream, feed, log)
	if err != nil {
		log.Error("failed to start upstream pull", "err", err)
		os.Exit(1)
	}
	defer client.Close()

	srv := rtspsession.NewServer(feed,
		rtspsession.WithDescription(desc),
		rtspsession.WithServerLogger(log.With("component", "server")),
	)

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Error("listen failed", "err", err)
		os.Exit(1)
	}

	log.Info("relaying upstream to downstream clients", "upstream", *upstream, "listen", *listen)
	if err := srv.Serve(ln); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func hostWithDefaultPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "554")
}

// pullUpstream connects to the upstream RTSP server, describes and plays its first media, and
// returns its SessionDescription so the local Server can re-advertise it. RTP/RTCP received
// from the upstream is fanned out through feed for as long as client stays open.
func pullUpstream(rawURL string, feed *relayFeed, log rtspsession.Logger) (*sdp.SessionDescription, *rtspsession.Client, error) {
	u, err := base.ParseURL(rawURL)
	if err != nil {
		return nil, nil, err
	}

	client := rtspsession.NewClient(
		rtspsession.WithLogger(log.With("component", "client")),
		rtspsession.WithPacketHandlers(rtpchannel.Handlers{
			OnRTP:  feed.onRTP,
			OnRTCP: feed.onRTCP,
		}),
	)

	if err := client.Start(hostWithDefaultPort(u.Host)); err != nil {
		return nil, nil, err
	}

	if _, err := client.Options(u); err != nil {
		client.Close()
		return nil, nil, err
	}

	desc, _, _, err := client.Describe(u)
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	// Exactly one RtpChannel exists per session (spec 3), so this proxy relays the first media
	// only; relaying multiple media would require one Client per media.
	if _, err := client.Setup(0); err != nil {
		client.Close()
		return nil, nil, err
	}

	if _, err := client.Play(nil); err != nil {
		client.Close()
		return nil, nil, err
	}

	return desc, client, nil
}
