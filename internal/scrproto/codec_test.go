package scrproto

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeBasic(t *testing.T) {
	snap, err := Decode([]byte("(angle 0.1)(speedX 50.0)(track 1 2 3)"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Angle != 0.1 {
		t.Errorf("angle = %v, want 0.1", snap.Angle)
	}
	if snap.SpeedX != 50.0 {
		t.Errorf("speedX = %v, want 50.0", snap.SpeedX)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, snap.Track); diff != "" {
		t.Errorf("track mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFullLine(t *testing.T) {
	line := "(angle -0.012)(curLapTime 4.052)(damage 0)(distFromStart 1015.56)" +
		"(distRaced 42.6)(fuel 94)(gear 3)(lastLapTime 0)(racePos 4)(rpm 6702.1)" +
		"(speedX 81.2)(speedY -0.8)(speedZ -0.01)(trackPos 0.336)(z 0.346)" +
		"(wheelSpinVel 67.1 68.2 71.1 71.3)(opponents 200 200 200)(focus -1)"
	snap, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.RacePos != 4 {
		t.Errorf("racePos = %v, want 4", snap.RacePos)
	}
	if snap.Gear != 3 {
		t.Errorf("gear = %v, want 3", snap.Gear)
	}
	if len(snap.WheelSpinVel) != 4 {
		t.Fatalf("wheelSpinVel len = %d, want 4", len(snap.WheelSpinVel))
	}
	// A scalar focus reading (access denied) still lands in the sequence field.
	if diff := cmp.Diff([]float64{-1}, snap.Focus); diff != "" {
		t.Errorf("focus mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Extra) != 0 {
		t.Errorf("unexpected extras: %v", snap.Extra)
	}
}

func TestDecodeIdempotent(t *testing.T) {
	raw := []byte("(angle 0.1)(speedX 50.0)(track 1 2 3)(weird x 7)")
	a, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("decode not idempotent (-first +second):\n%s", diff)
	}
}

func TestDecodeLenientTokens(t *testing.T) {
	// A malformed numeric token must never fail the decode; the raw text is
	// preserved.
	snap, err := Decode([]byte("(angle oops)(speedX 50.0)"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.SpeedX != 50.0 {
		t.Errorf("speedX = %v, want 50.0", snap.SpeedX)
	}
	v, ok := snap.Extra["angle"]
	if !ok {
		t.Fatal("malformed angle reading was dropped")
	}
	if !v.Scalar || v.Tokens[0].Numeric || v.Tokens[0].Raw != "oops" {
		t.Errorf("angle value = %+v, want raw token %q", v, "oops")
	}
}

func TestDecodeUnknownKeyPreserved(t *testing.T) {
	snap, err := Decode([]byte("(angle 0.1)(newSensor 1 2)"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := snap.Extra["newSensor"]
	if !ok {
		t.Fatal("unknown key was dropped")
	}
	fs, ok := v.Floats()
	if !ok {
		t.Fatalf("newSensor not numeric: %+v", v)
	}
	if diff := cmp.Diff([]float64{1, 2}, fs); diff != "" {
		t.Errorf("newSensor mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n"} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Errorf("Decode(%q) expected error, got nil", raw)
		}
	}
}

func TestDecodeTrailingNul(t *testing.T) {
	// The server terminates the datagram with a delimiter byte; a NUL from a
	// C sender must not corrupt the last group.
	snap, err := Decode([]byte("(angle 0.1)(z 0.34)\x00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Z != 0.34 {
		t.Errorf("z = %v, want 0.34", snap.Z)
	}
}

func TestEncodeDefaults(t *testing.T) {
	a := NewAction()
	a.Clamp()
	got := string(Encode(a))
	want := "(accel 0.200)(brake 0.000)(clutch 0.000)(gear 1.000)(steer 0.000)(focus -90 -45 0 45 90)(meta 0.000)"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestEncodeThreeDecimals(t *testing.T) {
	a := &Action{Accel: 0.123456, Brake: 1, Clutch: 0.5, Gear: -1, Steer: -0.25}
	a.Clamp()
	got := string(Encode(a))
	for _, part := range []string{"(accel 0.123)", "(brake 1.000)", "(clutch 0.500)", "(gear -1.000)", "(steer -0.250)", "(focus 0.000)", "(meta 0.000)"} {
		if !strings.Contains(got, part) {
			t.Errorf("Encode() = %q, missing %q", got, part)
		}
	}
}

func TestEncodeCanonicalOrder(t *testing.T) {
	got := string(Encode(NewAction()))
	last := -1
	for _, key := range []string{"(accel ", "(brake ", "(clutch ", "(gear ", "(steer ", "(focus ", "(meta "} {
		idx := strings.Index(got, key)
		if idx < 0 {
			t.Fatalf("Encode() = %q, missing key %q", got, key)
		}
		if idx < last {
			t.Errorf("key %q out of canonical order in %q", key, got)
		}
		last = idx
	}
}
