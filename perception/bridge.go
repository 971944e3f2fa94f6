package perception

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 20
	sendBuffer     = 8
	shutdownWait   = 5 * time.Second
)

//go:embed detector.html
var detectorPage []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	Bind    string
	Port    int
	Version string
	Options Options
	// Frames receives the JPEG frames sent along with binary deliveries. Optional.
	Frames *FrameStore
	// Logf receives connection lifecycle and dropped-message lines. Optional.
	Logf func(format string, args ...any)
	// Clock stamps deliveries that carry no capture time. Defaults to time.Now.
	Clock func() time.Time
}

// Bridge is a Detector fed by browser pages over websockets. It serves the detector
// page itself, so any device that can open the page can drive the game.
type Bridge struct {
	cfg    BridgeConfig
	router *httprouter.Router

	mu          sync.Mutex
	subscribers []func(Delivery)
	sessions    map[*session]struct{}
	srv         *http.Server
	listener    net.Listener
	served      chan struct{}
}

type session struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string
	name   string

	// captured is the newest capture time published from this page, in Unix
	// milliseconds. Only the read pump touches it.
	captured int64

	mu     sync.Mutex
	closed bool
}

// fresh reports whether a result captured at ts is not older than the newest one
// already published by this session, and records it. Results without a capture time
// are always fresh.
func (s *session) fresh(ts int64) bool {
	if ts == 0 {
		return true
	}
	if ts < s.captured {
		return false
	}
	s.captured = ts
	return true
}

// enqueue queues msg for the write pump. It reports false when the session is closed
// or its buffer is full.
func (s *session) enqueue(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.send)
	}
	s.mu.Unlock()
	s.conn.Close()
}

// NewBridge creates a bridge. Nothing listens until Start.
func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.Logf == nil {
		cfg.Logf = func(string, ...any) {}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	b := &Bridge{
		cfg:      cfg,
		sessions: make(map[*session]struct{}),
	}

	mux := httprouter.New()
	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		b.cfg.Logf("BRIDGE: Panic serving %s: %v", r.URL.Path, i)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	mux.GET("/", b.serveDetectorPage)
	mux.GET("/ws", b.serveWS)
	mux.GET("/qr.png", b.serveQR)
	mux.GET("/healthz", b.serveHealthCheck)
	mux.GET("/version", b.serveVersion)
	b.router = mux

	return b
}

// Handler returns the bridge's HTTP routes.
func (b *Bridge) Handler() http.Handler {
	return b.router
}

// Subscribe registers fn for every delivery received from any page.
func (b *Bridge) Subscribe(fn func(Delivery)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Start listens on the configured address and serves until ctx is done or Stop is
// called.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.listener != nil {
		b.mu.Unlock()
		return errors.New("bridge already started")
	}

	addr := net.JoinHostPort(b.cfg.Bind, strconv.Itoa(b.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           b.router,
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: writeWait,
	}
	served := make(chan struct{})
	b.srv, b.listener, b.served = srv, listener, served
	b.mu.Unlock()

	b.cfg.Logf("BRIDGE: Listening on %s", b.URL())

	go func() {
		defer close(served)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.cfg.Logf("BRIDGE: Serve error: %v", err)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = b.Stop()
		case <-served:
		}
	}()

	return nil
}

// Stop closes every detector session and shuts the server down, waiting a bounded
// time for in-flight requests. Only the first call after a Start does any work, and
// the bridge may be started again once Stop returns.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	srv, served := b.srv, b.served
	b.srv = nil
	sessions := make([]*session, 0, len(b.sessions))
	for s := range b.sessions {
		sessions = append(sessions, s)
	}
	b.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	err := srv.Shutdown(ctx)
	<-served

	b.mu.Lock()
	b.listener, b.served = nil, nil
	b.mu.Unlock()

	if err != nil {
		return fmt.Errorf("shutdown bridge: %w", err)
	}
	return nil
}

// Addr returns the address the bridge listens on, or the configured one before Start.
func (b *Bridge) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener != nil {
		return b.listener.Addr().String()
	}
	return net.JoinHostPort(b.cfg.Bind, strconv.Itoa(b.cfg.Port))
}

// URL returns the address other devices should open to reach the detector page.
func (b *Bridge) URL() string {
	host, port, err := net.SplitHostPort(b.Addr())
	if err != nil {
		return "http://" + b.Addr() + "/"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = outboundHost()
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

// Sessions returns the number of connected detector pages.
func (b *Bridge) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// outboundHost picks the first non-loopback IPv4 address, falling back to localhost.
func outboundHost() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	return "localhost"
}

func (b *Bridge) serveDetectorPage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(detectorPage)
}

func (b *Bridge) serveQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	png, err := QRCode(b.URL(), qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (b *Bridge) serveHealthCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "Ok\n")
}

func (b *Bridge) serveVersion(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "munch v"+b.cfg.Version+"\n")
}

func (b *Bridge) serveWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.cfg.Logf("BRIDGE: Upgrade error from %s: %v", r.RemoteAddr, err)
		return
	}

	s := &session{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: r.RemoteAddr,
	}

	b.mu.Lock()
	b.sessions[s] = struct{}{}
	b.mu.Unlock()
	b.cfg.Logf("BRIDGE: Detector connected from %s", s.remote)

	go b.writePump(s)
	b.readPump(s)
}

func (b *Bridge) readPump(s *session) {
	defer func() {
		b.mu.Lock()
		delete(b.sessions, s)
		b.mu.Unlock()
		s.close()
		b.cfg.Logf("BRIDGE: Detector %s disconnected", s.remote)
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch kind {
		case websocket.TextMessage:
			b.handleText(s, data)
		case websocket.BinaryMessage:
			b.handleBinary(s, data)
		}
	}
}

func (b *Bridge) writePump(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (b *Bridge) handleText(s *session, data []byte) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		b.cfg.Logf("BRIDGE: Dropped message from %s: %v", s.remote, err)
		return
	}

	switch env.T {
	case MsgHello:
		hello, err := DecodePayload[Hello](env)
		if err != nil {
			b.cfg.Logf("BRIDGE: Dropped hello from %s: %v", s.remote, err)
			return
		}
		s.name = hello.Name
		b.cfg.Logf("BRIDGE: Hello from %s (%q, v%d)", s.remote, hello.Name, hello.V)
		b.reply(s, MsgWelcome, Welcome{V: ProtocolVersion, Options: b.cfg.Options})

	case MsgLandmarks:
		payload, err := DecodePayload[LandmarksPayload](env)
		if err != nil {
			b.cfg.Logf("BRIDGE: Dropped landmarks from %s: %v", s.remote, err)
			return
		}
		if !s.fresh(payload.TS) {
			b.cfg.Logf("BRIDGE: Dropped stale landmarks from %s", s.remote)
			return
		}
		b.publish(payload.Delivery(b.cfg.Clock()))

	default:
		err := fmt.Errorf("%w: %q", ErrUnknownMessage, env.T)
		b.cfg.Logf("BRIDGE: Dropped message from %s: %v", s.remote, err)
		b.reply(s, MsgError, ErrorMessage{Message: err.Error()})
	}
}

func (b *Bridge) handleBinary(s *session, data []byte) {
	msg, err := decodeBinary(data)
	if err != nil {
		b.cfg.Logf("BRIDGE: Dropped binary message from %s: %v", s.remote, err)
		return
	}

	if len(msg.Frame) > 0 && b.cfg.Frames != nil {
		if err := b.cfg.Frames.PutJPEG(msg.Frame); err != nil {
			b.cfg.Logf("BRIDGE: Dropped frame from %s: %v", s.remote, err)
		}
	}

	// The page encodes frames asynchronously, so a binary result can arrive after a
	// newer text one. Its frame is still the newest video, its landmarks are not.
	if !s.fresh(msg.TS) {
		b.cfg.Logf("BRIDGE: Dropped stale landmarks from %s", s.remote)
		return
	}
	b.publish(msg.delivery(b.cfg.Clock()))
}

// reply queues a text message, dropping it when the session cannot take it.
func (b *Bridge) reply(s *session, t string, payload any) {
	msg, err := Encode(t, payload)
	if err != nil {
		b.cfg.Logf("BRIDGE: Encode %s: %v", t, err)
		return
	}

	if !s.enqueue(msg) {
		b.cfg.Logf("BRIDGE: Dropped %s to %s", t, s.remote)
	}
}

func (b *Bridge) publish(d Delivery) {
	b.mu.Lock()
	subscribers := append([]func(Delivery){}, b.subscribers...)
	b.mu.Unlock()

	for _, fn := range subscribers {
		fn(d)
	}
}
