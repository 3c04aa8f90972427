package server

import (
	"context"
	"math/rand"
	"net"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/protocol"
	"github.com/tomz197/asteroids-lan/internal/snapshot"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// newHostEngine starts a manually clocked engine whose spawn timer will
// not fire during a short test.
func newHostEngine(t *testing.T) *loop.Engine {
	t.Helper()
	e := loop.New("host", loop.WithManualClock(), loop.WithRand(rand.New(rand.NewSource(1))))
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-e.Done()
	})
	if err := e.Do(func(s *world.State) { s.Cycle = 1 }); err != nil {
		t.Fatal(err)
	}
	return e
}

func mustDecode(t *testing.T, b []byte) *world.State {
	t.Helper()
	s, err := snapshot.Decode(b)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return s
}

func handle(t *testing.T, h *Hub, from string, payload string) ([]byte, bool) {
	t.Helper()
	return h.Handle(netip.MustParseAddrPort(from), []byte(payload))
}

func TestHubConnectIsIdempotent(t *testing.T) {
	e := newHostEngine(t)
	h := NewHub(e, nil)

	handle(t, h, "10.0.0.2:5000", "CONNECT@alice")
	reply, ok := handle(t, h, "10.0.0.2:5000", "CONNECT@alice")
	if !ok {
		t.Fatal("no reply to CONNECT")
	}

	s := mustDecode(t, reply)
	if len(s.Participants) != 1 {
		t.Fatalf("participants = %d, want 1", len(s.Participants))
	}
	if got := s.Participants[0].Ship.Nickname; got != "alice" {
		t.Errorf("nickname = %q, want alice", got)
	}
	if s.Me != 0 {
		t.Errorf("Me = %d, want 0", s.Me)
	}
	if s.Participants[0].Session == "" {
		t.Error("participant has no session tag")
	}
}

func TestHubControlThenPoll(t *testing.T) {
	e := newHostEngine(t)
	h := NewHub(e, nil)
	const bob = "10.0.0.3:6000"

	handle(t, h, bob, "CONNECT@bob")
	handle(t, h, bob, "UP")
	reply, ok := handle(t, h, bob, "")
	if !ok {
		t.Fatal("no reply to poll")
	}

	s := mustDecode(t, reply)
	ship := s.ParticipantShip(s.Me)
	if ship == nil {
		t.Fatalf("Me = %d does not name a participant", s.Me)
	}
	if !ship.Thrust {
		t.Error("thrust flag not set")
	}
	if ship.X == config.ArenaWidth/2 && ship.Y == config.ArenaHeight/2 {
		t.Error("ship has not moved from its spawn position")
	}
	if s.Ship.Thrust {
		t.Error("control leaked to the host ship")
	}
}

func TestHubTicksOncePerDatagram(t *testing.T) {
	e := newHostEngine(t)
	h := NewHub(e, nil)

	before := e.View().Cycle
	for i := 0; i < 3; i++ {
		handle(t, h, "10.0.0.2:5000", "")
	}
	if got := e.View().Cycle; got != before+3 {
		t.Errorf("Cycle = %d, want %d", got, before+3)
	}

	still := NewHub(e, nil, WithTickPerPacket(false))
	handle(t, still, "10.0.0.2:5000", "")
	if got := e.View().Cycle; got != before+3 {
		t.Errorf("Cycle = %d after untimed hub, want %d", got, before+3)
	}
}

func TestHubUnknownTokenIsIgnored(t *testing.T) {
	e := newHostEngine(t)
	h := NewHub(e, nil)
	const addr = "10.0.0.2:5000"

	handle(t, h, addr, "CONNECT@alice")
	reply, ok := handle(t, h, addr, "TELEPORT")
	if !ok {
		t.Fatal("no reply to unknown token")
	}
	s := mustDecode(t, reply)
	if s.Participants[0].Ship.Controls != (world.Empty().Ship.Controls) {
		t.Errorf("controls changed: %+v", s.Participants[0].Ship.Controls)
	}
}

func TestHubControlFromStrangerOnlyPolls(t *testing.T) {
	e := newHostEngine(t)
	h := NewHub(e, nil)

	reply, ok := handle(t, h, "10.0.0.9:5000", "UP")
	if !ok {
		t.Fatal("no reply")
	}
	s := mustDecode(t, reply)
	if s.Me != world.NoParticipant {
		t.Errorf("Me = %d, want %d", s.Me, world.NoParticipant)
	}
	if s.Ship.Thrust || len(s.Participants) != 0 {
		t.Error("stranger's control changed the game")
	}
}

func TestHubConnectNeedsNickname(t *testing.T) {
	e := newHostEngine(t)
	h := NewHub(e, nil)

	handle(t, h, "10.0.0.2:5000", "CONNECT@   ")
	handle(t, h, "10.0.0.3:5000", "CONNECT")
	if n := len(e.View().Participants); n != 0 {
		t.Errorf("participants = %d, want 0", n)
	}
}

func TestHubDisconnect(t *testing.T) {
	e := newHostEngine(t)
	h := NewHub(e, nil)

	handle(t, h, "10.0.0.2:5000", "CONNECT@alice")
	handle(t, h, "10.0.0.3:5000", "CONNECT@bob")

	if _, ok := handle(t, h, "10.0.0.2:5000", "DISCONNECT"); ok {
		t.Error("DISCONNECT got a reply")
	}
	v := e.View()
	if len(v.Participants) != 1 || v.Participants[0].Ship.Nickname != "bob" {
		t.Fatalf("participants after disconnect = %+v", v.Participants)
	}

	// Bob's index moved down.
	reply, _ := handle(t, h, "10.0.0.3:5000", "")
	if s := mustDecode(t, reply); s.Me != 0 {
		t.Errorf("Me = %d, want 0", s.Me)
	}
}

func TestHubStoppedEngine(t *testing.T) {
	e := loop.New("host", loop.WithManualClock())
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	cancel()
	<-e.Done()

	if _, ok := NewHub(e, nil).Handle(netip.MustParseAddrPort("10.0.0.2:5000"), nil); ok {
		t.Error("stopped engine produced a reply")
	}
}

// dialRole runs a role on a loopback socket and returns a client socket
// connected to it.
func dialRole(t *testing.T, run func(ctx context.Context, conn *net.UDPConn) error) *net.UDPConn {
	t.Helper()
	conn, err := Listen("127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		run(ctx, conn)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		conn.Close()
	})

	client, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("DialUDP() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func exchange(t *testing.T, conn *net.UDPConn, payload []byte) []byte {
	t.Helper()
	if _, err := conn.Write(payload); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, config.MaxDatagramSize)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return buf[:n]
}

func TestHubOverUDP(t *testing.T) {
	e := newHostEngine(t)
	client := dialRole(t, func(ctx context.Context, conn *net.UDPConn) error {
		return NewHub(e, conn).Run(ctx)
	})

	exchange(t, client, protocol.ConnectMessage("alice"))
	s := mustDecode(t, exchange(t, client, protocol.ConnectMessage("alice")))

	if len(s.Participants) != 1 || s.Participants[0].Ship.Nickname != "alice" {
		t.Fatalf("participants = %+v", s.Participants)
	}
	if s.Me != 0 {
		t.Errorf("Me = %d, want 0", s.Me)
	}
	if s.Ship.Nickname != "host" {
		t.Errorf("host ship = %q", s.Ship.Nickname)
	}
}

func TestBroadcastOverUDP(t *testing.T) {
	e := newHostEngine(t)
	client := dialRole(t, func(ctx context.Context, conn *net.UDPConn) error {
		return NewBroadcast(e, conn, nil).Run(ctx)
	})

	before := e.View()
	s := mustDecode(t, exchange(t, client, []byte(protocol.Watch)))
	if s.Ship.Nickname != "host" {
		t.Errorf("ship = %q, want host", s.Ship.Nickname)
	}

	// Serving a spectator must not advance the game.
	exchange(t, client, []byte("anything"))
	if after := e.View(); after.Cycle != before.Cycle {
		t.Errorf("Cycle moved from %d to %d", before.Cycle, after.Cycle)
	}
}

func TestFeedHandler(t *testing.T) {
	e := newHostEngine(t)
	srv := httptest.NewServer(FeedHandler(e, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, raw, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("message type = %d, want binary", msgType)
	}
	if s := mustDecode(t, raw); s.Ship.Nickname != "host" {
		t.Errorf("ship = %q, want host", s.Ship.Nickname)
	}

	// A tick produces another frame.
	if _, err := e.Tick(); err != nil {
		t.Fatal(err)
	}
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err != nil {
		t.Fatalf("no frame after tick: %v", err)
	}
}
