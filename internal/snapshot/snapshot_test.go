package snapshot

import (
	"bytes"
	"errors"
	"math/rand"
	"net/netip"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/world"
)

func busyState(t *testing.T) *world.State {
	t.Helper()
	s := world.New("host", rand.New(rand.NewSource(11)))
	s.Ship.Thrust = true
	s.Ship.Heading = 1.25
	s.Ship.Score = 4
	s.Bullets = []object.Bullet{object.NewBullet(1, 2, 3, 4), object.NewBullet(5, 6, 7, 8)}
	s.Asteroids = []object.Asteroid{
		object.NewAsteroid(10, 20, 1, -1, object.AsteroidLarge),
		object.NewAsteroid(30, 40, -2, 2, object.AsteroidMedium),
		object.NewAsteroid(50, 60, 0.5, 0.25, object.AsteroidSmall),
	}
	s.Connect(netip.MustParseAddrPort("192.168.1.20:40000"), "alice", "2B1nN4nM9vq0xQ2Yt9aR5c8wZkP")
	s.Connect(netip.MustParseAddrPort("[fe80::1]:40001"), "bob", "")
	s.Participants[1].Bullets = []object.Bullet{object.NewBullet(9, 9, 1, 1)}
	s.Participants[1].Ship.Destroyed = true
	s.Me = 1
	s.Cycle = 17
	s.Limit = 9
	s.Destroyed = 10
	return s
}

func TestRoundTrip(t *testing.T) {
	want := busyState(t)

	b, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(got.Bullets) != len(want.Bullets) ||
		len(got.Asteroids) != len(want.Asteroids) ||
		len(got.Participants) != len(want.Participants) {
		t.Fatalf("counts = %d/%d/%d, want %d/%d/%d",
			len(got.Bullets), len(got.Asteroids), len(got.Participants),
			len(want.Bullets), len(want.Asteroids), len(want.Participants))
	}
	if got.Ship != want.Ship {
		t.Errorf("Ship = %+v, want %+v", got.Ship, want.Ship)
	}
	for i := range want.Asteroids {
		if got.Asteroids[i] != want.Asteroids[i] {
			t.Errorf("Asteroids[%d] = %+v, want %+v", i, got.Asteroids[i], want.Asteroids[i])
		}
	}
	for i := range want.Bullets {
		if got.Bullets[i] != want.Bullets[i] {
			t.Errorf("Bullets[%d] = %+v, want %+v", i, got.Bullets[i], want.Bullets[i])
		}
	}
	for i := range want.Participants {
		g, w := got.Participants[i], want.Participants[i]
		if g.Addr != w.Addr || g.Port != w.Port || g.Session != w.Session || g.Ship != w.Ship {
			t.Errorf("Participants[%d] = %+v, want %+v", i, g, w)
		}
		if len(g.Bullets) != len(w.Bullets) {
			t.Errorf("Participants[%d] bullets = %d, want %d", i, len(g.Bullets), len(w.Bullets))
		}
	}
	if got.Me != 1 || got.Cycle != 17 || got.Limit != 9 || got.Destroyed != 10 || got.Aborted {
		t.Errorf("counters = me %d cycle %d limit %d destroyed %d aborted %v",
			got.Me, got.Cycle, got.Limit, got.Destroyed, got.Aborted)
	}

	again, err := Encode(got)
	if err != nil {
		t.Fatalf("re-Encode() error = %v", err)
	}
	if !bytes.Equal(again, b) {
		t.Error("re-encoding a decoded snapshot changed the bytes")
	}
}

func TestRoundTripEmptyState(t *testing.T) {
	b, err := Encode(world.Empty())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !got.Ship.IsPlaceholder() || got.Me != world.NoParticipant {
		t.Errorf("decoded empty state = %+v", got)
	}
}

func TestEncodeTooLarge(t *testing.T) {
	s := world.New("host", nil)
	for i := 0; i < 2000; i++ {
		s.Asteroids = append(s.Asteroids, object.NewAsteroid(1, 1, 1, 1, object.AsteroidSmall))
	}

	b, err := Encode(s)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Encode() error = %v, want ErrTooLarge", err)
	}
	if b != nil {
		t.Error("Encode() returned bytes alongside ErrTooLarge")
	}
}

func TestDecodeGarbage(t *testing.T) {
	valid, err := Encode(busyState(t))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		payload []byte
		want    error
	}{
		{"empty", nil, ErrMalformed},
		{"text", []byte("hello there"), ErrMalformed},
		{"single byte", []byte{0xc1}, ErrMalformed},
		{"truncated", valid[:len(valid)/2], ErrMalformed},
		{"huge array header", []byte{0xdd, 0xff, 0xff, 0xff, 0xff}, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.payload)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if got == nil {
				t.Fatal("Decode() returned a nil state")
			}
			if len(got.Asteroids) != 0 || len(got.Bullets) != 0 || len(got.Participants) != 0 {
				t.Error("failed decode did not yield an empty state")
			}
			if got.Me != world.NoParticipant {
				t.Errorf("Me = %d, want %d", got.Me, world.NoParticipant)
			}
		})
	}
}

func TestDecodeWrongVersion(t *testing.T) {
	current, err := Encode(world.New("host", nil))
	if err != nil {
		t.Fatal(err)
	}

	// A later version with two more state fields appended.
	var next bytes.Buffer
	enc := msgpack.NewEncoder(&next)
	if err := enc.EncodeArrayLen(stateFields + 2); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeInt(Version + 1); err != nil {
		t.Fatal(err)
	}
	body := current[2:] // fixarray header and version 1 take one byte each
	next.Write(body)
	if err := enc.EncodeString("extra"); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeBool(true); err != nil {
		t.Fatal(err)
	}

	var header bytes.Buffer
	enc = msgpack.NewEncoder(&header)
	if err := enc.EncodeArrayLen(stateFields); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeInt(Version + 1); err != nil {
		t.Fatal(err)
	}

	for name, payload := range map[string][]byte{
		"more fields": next.Bytes(),
		"header only": header.Bytes(),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(payload)
			if !errors.Is(err, ErrVersion) {
				t.Errorf("Decode() error = %v, want ErrVersion", err)
			}
			if got == nil || len(got.Participants) != 0 {
				t.Error("failed decode did not yield an empty state")
			}
		})
	}
}

func TestDecodeWrongFieldCount(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeArrayLen(stateFields - 1); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeInt(Version); err != nil {
		t.Fatal(err)
	}

	if _, err := Decode(buf.Bytes()); !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode() error = %v, want ErrMalformed", err)
	}
}

func TestDecodeRejectsUnknownAsteroidSize(t *testing.T) {
	s := world.Empty()
	s.Asteroids = []object.Asteroid{object.NewAsteroid(1, 1, 0, 0, object.AsteroidSize(7))}
	b, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(b); !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode() error = %v, want ErrMalformed", err)
	}
}
