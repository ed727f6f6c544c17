package scrproto

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyDatagram is returned by Decode for payloads with no sensor groups.
var ErrEmptyDatagram = errors.New("scrproto: empty datagram")

// Decode parses one telemetry datagram into a Snapshot. The payload is a
// concatenation of "(key v1 v2 ...)" groups with a trailing delimiter
// character. Malformed numeric tokens never fail the decode; they are kept
// verbatim (see Token). Decode holds no state between calls.
func Decode(raw []byte) (*Snapshot, error) {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return nil, ErrEmptyDatagram
	}
	// Drop the trailing delimiter, then the outermost parens, leaving
	// ")("-separated groups.
	body = body[:len(body)-1]
	body = strings.TrimPrefix(strings.TrimSuffix(strings.TrimSpace(body), ")"), "(")
	if body == "" {
		return nil, ErrEmptyDatagram
	}

	snap := &Snapshot{}
	for _, group := range strings.Split(body, ")(") {
		fields := strings.Fields(group)
		if len(fields) == 0 {
			continue
		}
		key := fields[0]
		toks := make([]Token, len(fields)-1)
		for i, f := range fields[1:] {
			toks[i] = coerce(f)
		}
		if len(toks) == 1 {
			snap.apply(key, scalarValue(toks[0]))
		} else {
			snap.apply(key, seqValue(toks))
		}
	}
	return snap, nil
}

// actionKeys is the canonical serialization order. The simulator does not
// document an order requirement, so the codec pins one rather than leaving
// it to map iteration.
var actionKeys = []string{"accel", "brake", "clutch", "gear", "steer", "focus", "meta"}

// Encode serializes an action into one datagram. Scalar fields are written
// with exactly three decimal digits; the focus sequence is whitespace-joined
// in minimal form. Encode does not clamp; callers go through the session,
// which runs Clamp first.
func Encode(a *Action) []byte {
	var buf bytes.Buffer
	for _, key := range actionKeys {
		buf.WriteByte('(')
		buf.WriteString(key)
		buf.WriteByte(' ')
		switch key {
		case "accel":
			fmt.Fprintf(&buf, "%.3f", a.Accel)
		case "brake":
			fmt.Fprintf(&buf, "%.3f", a.Brake)
		case "clutch":
			fmt.Fprintf(&buf, "%.3f", a.Clutch)
		case "gear":
			fmt.Fprintf(&buf, "%.3f", float64(a.Gear))
		case "steer":
			fmt.Fprintf(&buf, "%.3f", a.Steer)
		case "meta":
			fmt.Fprintf(&buf, "%.3f", float64(a.Meta))
		case "focus":
			if len(a.Focus) == 0 {
				buf.WriteString("0.000")
			} else {
				for i, f := range a.Focus {
					if i > 0 {
						buf.WriteByte(' ')
					}
					buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
				}
			}
		}
		buf.WriteByte(')')
	}
	return buf.Bytes()
}
