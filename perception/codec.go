package perception

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/plus3/munch/geom"
	"github.com/vmihailenco/msgpack/v5"
)

// ProtocolVersion is sent in hello and welcome messages.
const ProtocolVersion = 1

// Text message types.
const (
	MsgHello     = "hello"
	MsgWelcome   = "welcome"
	MsgLandmarks = "landmarks"
	MsgError     = "error"
)

// Envelope wraps every text message: {"t": type, "p": payload}.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

type Hello struct {
	V    int    `json:"v"`
	Name string `json:"name,omitempty"`
}

type Welcome struct {
	V       int     `json:"v"`
	Options Options `json:"options"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// LandmarksPayload carries the faces found in one frame, as [x, y] pairs in detector
// index order. Only the first face is used.
type LandmarksPayload struct {
	Faces [][][2]float64 `json:"faces" msgpack:"faces"`
	W     int            `json:"w,omitempty" msgpack:"w"`
	H     int            `json:"h,omitempty" msgpack:"h"`

	// TS is the capture time in Unix milliseconds, zero when unknown.
	TS int64 `json:"ts,omitempty" msgpack:"ts,omitempty"`
}

// binaryDelivery is the msgpack form of a Delivery.
type binaryDelivery struct {
	LandmarksPayload `msgpack:",inline"`
	Frame            []byte `msgpack:"frame,omitempty"`
}

// Encode wraps payload in an envelope of type t.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode envelope: empty type")
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %q: nil payload", t)
	}

	p, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: p})
}

// DecodeEnvelope parses the outer layer of a text message.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode envelope: empty message")
	}

	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return e, nil
}

// DecodePayload parses the payload of env as T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %q payload: %w", env.T, err)
	}
	return out, nil
}

// NewLandmarksPayload builds the wire form of a delivery.
func NewLandmarksPayload(d Delivery) LandmarksPayload {
	p := LandmarksPayload{W: d.Width, H: d.Height, Faces: [][][2]float64{}}
	if !d.At.IsZero() {
		p.TS = d.At.UnixMilli()
	}
	if d.Landmarks != nil {
		face := make([][2]float64, len(d.Landmarks))
		for i, pt := range d.Landmarks {
			face[i] = [2]float64{pt.X, pt.Y}
		}
		p.Faces = append(p.Faces, face)
	}
	return p
}

// Delivery converts the payload. A payload without faces is a no-signal delivery.
// at stamps payloads that carry no capture time.
func (p LandmarksPayload) Delivery(at time.Time) Delivery {
	if p.TS != 0 {
		at = time.UnixMilli(p.TS)
	}
	d := Delivery{Width: p.W, Height: p.H, At: at}
	if len(p.Faces) == 0 || len(p.Faces[0]) == 0 {
		return d
	}

	face := p.Faces[0]
	d.Landmarks = make(geom.Landmarks, len(face))
	for i, pt := range face {
		d.Landmarks[i] = geom.Point{X: pt[0], Y: pt[1]}
	}
	return d
}

// EncodeDelivery encodes d as a binary message.
func EncodeDelivery(d Delivery) ([]byte, error) {
	msg := binaryDelivery{
		LandmarksPayload: NewLandmarksPayload(d),
		Frame:            d.Frame,
	}

	data, err := msgpack.Marshal(&msg)
	if err != nil {
		return nil, fmt.Errorf("encode delivery: %w", err)
	}
	return data, nil
}

// DecodeDelivery decodes a binary message. Messages without a timestamp are stamped
// with now.
func DecodeDelivery(b []byte, now time.Time) (Delivery, error) {
	msg, err := decodeBinary(b)
	if err != nil {
		return Delivery{}, err
	}
	return msg.delivery(now), nil
}

func decodeBinary(b []byte) (binaryDelivery, error) {
	var msg binaryDelivery
	if err := msgpack.Unmarshal(b, &msg); err != nil {
		return binaryDelivery{}, fmt.Errorf("decode delivery: %w", err)
	}
	return msg, nil
}

func (m binaryDelivery) delivery(now time.Time) Delivery {
	d := m.LandmarksPayload.Delivery(now)
	d.Frame = m.Frame
	return d
}
