// Package snapshot encodes a full simulation state for the wire.
//
// The format is a msgpack array written field by field, starting with a
// format version. It never depends on the in-memory layout of the world
// types, so fields can be added by bumping Version.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"net/netip"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/asteroids-lan/internal/loop/config"
	"github.com/tomz197/asteroids-lan/internal/object"
	"github.com/tomz197/asteroids-lan/internal/world"
)

// Version is the wire format version written at the start of every
// snapshot.
const Version = 1

// Field counts of each encoded record.
const (
	stateFields       = 10
	shipFields        = 14
	bulletFields      = 6
	asteroidFields    = 6
	participantFields = 5
)

var (
	// ErrTooLarge is returned when an encoded state exceeds the ceiling.
	ErrTooLarge = errors.New("snapshot exceeds size ceiling")
	// ErrVersion is returned for snapshots of an unknown format version.
	ErrVersion = errors.New("unsupported snapshot version")
	// ErrMalformed is returned for snapshots that end early or are not a
	// snapshot at all.
	ErrMalformed = errors.New("malformed snapshot")
)

// Encode serializes the state. It fails with ErrTooLarge rather than
// truncating when the result would exceed config.MaxSnapshotSize.
func Encode(s *world.State) ([]byte, error) {
	var buf bytes.Buffer
	w := writer{enc: msgpack.NewEncoder(&buf)}

	w.arrayLen(stateFields)
	w.int(Version)
	w.int(s.Cycle)
	w.int(s.Limit)
	w.int(s.Destroyed)
	w.bool(s.Aborted)
	w.int(s.Me)
	w.ship(&s.Ship)
	w.bullets(s.Bullets)
	w.asteroids(s.Asteroids)

	w.arrayLen(len(s.Participants))
	for i := range s.Participants {
		w.participant(&s.Participants[i])
	}

	if w.err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", w.err)
	}
	if buf.Len() > config.MaxSnapshotSize {
		return nil, fmt.Errorf("%w: %d bytes, %d asteroids, %d participants",
			ErrTooLarge, buf.Len(), len(s.Asteroids), len(s.Participants))
	}
	return buf.Bytes(), nil
}

// Decode restores a state from b. It always returns a usable state: on
// any error the result is world.Empty() and the error says why.
func Decode(b []byte) (*world.State, error) {
	if len(b) == 0 {
		return world.Empty(), fmt.Errorf("decode snapshot: %w: empty buffer", ErrMalformed)
	}

	s, err := decode(b)
	if err != nil {
		return world.Empty(), fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func decode(b []byte) (*world.State, error) {
	r := reader{dec: msgpack.NewDecoder(bytes.NewReader(b)), size: len(b)}

	// The version comes first so a snapshot of another version is
	// reported as such whatever its field count.
	n, err := r.dec.DecodeArrayLen()
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: not a state record", ErrMalformed)
	}
	if v := r.int(); r.err != nil {
		return nil, r.err
	} else if v != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	if n != stateFields {
		return nil, fmt.Errorf("%w: state has %d fields, want %d", ErrMalformed, n, stateFields)
	}

	s := world.Empty()
	s.Cycle = r.int()
	s.Limit = r.int()
	s.Destroyed = r.int()
	s.Aborted = r.bool()
	s.Me = r.int()
	r.ship(&s.Ship)
	s.Bullets = r.bullets()
	s.Asteroids = r.asteroids()

	if n := r.arrayLen(); n > 0 {
		s.Participants = make([]object.Participant, n)
		for i := range s.Participants {
			r.participant(&s.Participants[i])
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

// writer wraps the encoder and keeps the first error.
type writer struct {
	enc *msgpack.Encoder
	err error
}

func (w *writer) arrayLen(n int) {
	if w.err == nil {
		w.err = w.enc.EncodeArrayLen(n)
	}
}

func (w *writer) int(v int) {
	if w.err == nil {
		w.err = w.enc.EncodeInt(int64(v))
	}
}

func (w *writer) uint(v uint64) {
	if w.err == nil {
		w.err = w.enc.EncodeUint(v)
	}
}

func (w *writer) float(v float64) {
	if w.err == nil {
		w.err = w.enc.EncodeFloat64(v)
	}
}

func (w *writer) bool(v bool) {
	if w.err == nil {
		w.err = w.enc.EncodeBool(v)
	}
}

func (w *writer) string(v string) {
	if w.err == nil {
		w.err = w.enc.EncodeString(v)
	}
}

func (w *writer) ship(s *object.Ship) {
	w.arrayLen(shipFields)
	w.float(s.X)
	w.float(s.Y)
	w.float(s.VX)
	w.float(s.VY)
	w.float(s.Heading)
	w.bool(s.Thrust)
	w.bool(s.Left)
	w.bool(s.Right)
	w.bool(s.Fire)
	w.bool(s.Fired)
	w.string(s.Nickname)
	w.int(s.Score)
	w.bool(s.Destroyed)
	w.uint(uint64(s.Color))
}

func (w *writer) bullets(bs []object.Bullet) {
	w.arrayLen(len(bs))
	for i := range bs {
		b := &bs[i]
		w.arrayLen(bulletFields)
		w.float(b.X)
		w.float(b.Y)
		w.float(b.VX)
		w.float(b.VY)
		w.int(b.StepsLeft)
		w.bool(b.Destroyed)
	}
}

func (w *writer) asteroids(as []object.Asteroid) {
	w.arrayLen(len(as))
	for i := range as {
		a := &as[i]
		w.arrayLen(asteroidFields)
		w.float(a.X)
		w.float(a.Y)
		w.float(a.VX)
		w.float(a.VY)
		w.uint(uint64(a.Size))
		w.bool(a.Destroyed)
	}
}

func (w *writer) participant(p *object.Participant) {
	w.arrayLen(participantFields)
	addr := ""
	if p.Addr.IsValid() {
		addr = p.Addr.String()
	}
	w.string(addr)
	w.uint(uint64(p.Port))
	w.string(p.Session)
	w.ship(&p.Ship)
	w.bullets(p.Bullets)
}

// reader wraps the decoder and keeps the first error. Once an error is
// recorded every read returns a zero value.
type reader struct {
	dec  *msgpack.Decoder
	size int
	err  error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

// arrayLen reads an array header. Lengths that could not possibly fit in
// the buffer are rejected before anything is allocated.
func (r *reader) arrayLen() int {
	if r.err != nil {
		return 0
	}
	n, err := r.dec.DecodeArrayLen()
	if err != nil {
		r.fail(err)
		return 0
	}
	if n < 0 || n > r.size {
		r.fail(fmt.Errorf("array length %d", n))
		return 0
	}
	return n
}

// record reads an array header that must have exactly fields entries.
func (r *reader) record(kind string, fields int) {
	if n := r.arrayLen(); r.err == nil && n != fields {
		r.fail(fmt.Errorf("%s has %d fields, want %d", kind, n, fields))
	}
}

func (r *reader) int() int {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.DecodeInt()
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) uint() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.DecodeUint64()
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) float() float64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.DecodeFloat64()
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) bool() bool {
	if r.err != nil {
		return false
	}
	v, err := r.dec.DecodeBool()
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, err := r.dec.DecodeString()
	if err != nil {
		r.fail(err)
	}
	return v
}

func (r *reader) ship(s *object.Ship) {
	r.record("ship", shipFields)
	s.X = r.float()
	s.Y = r.float()
	s.VX = r.float()
	s.VY = r.float()
	s.Heading = r.float()
	s.Thrust = r.bool()
	s.Left = r.bool()
	s.Right = r.bool()
	s.Fire = r.bool()
	s.Fired = r.bool()
	s.Nickname = r.string()
	s.Score = r.int()
	s.Destroyed = r.bool()
	s.Color = object.Color(r.uint())
}

func (r *reader) bullets() []object.Bullet {
	n := r.arrayLen()
	if n == 0 {
		return nil
	}
	bs := make([]object.Bullet, n)
	for i := range bs {
		b := &bs[i]
		r.record("bullet", bulletFields)
		b.X = r.float()
		b.Y = r.float()
		b.VX = r.float()
		b.VY = r.float()
		b.StepsLeft = r.int()
		b.Destroyed = r.bool()
	}
	return bs
}

func (r *reader) asteroids() []object.Asteroid {
	n := r.arrayLen()
	if n == 0 {
		return nil
	}
	as := make([]object.Asteroid, n)
	for i := range as {
		a := &as[i]
		r.record("asteroid", asteroidFields)
		a.X = r.float()
		a.Y = r.float()
		a.VX = r.float()
		a.VY = r.float()
		a.Size = object.AsteroidSize(r.uint())
		a.Destroyed = r.bool()
		if r.err == nil && !a.Size.Valid() {
			r.fail(fmt.Errorf("asteroid size %d", a.Size))
		}
	}
	return as
}

func (r *reader) participant(p *object.Participant) {
	r.record("participant", participantFields)
	if addr := r.string(); addr != "" && r.err == nil {
		ip, err := netip.ParseAddr(addr)
		if err != nil {
			r.fail(err)
		}
		p.Addr = ip
	}
	p.Port = uint16(r.uint())
	p.Session = r.string()
	r.ship(&p.Ship)
	p.Bullets = r.bullets()
}
