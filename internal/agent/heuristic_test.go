package agent

import (
	"math"
	"testing"

	"github.com/banshee-data/trackpilot/internal/scrproto"
)

func TestDecideSteersTowardTrackAxis(t *testing.T) {
	h := NewHeuristic()
	a := h.Decide(&scrproto.Snapshot{Angle: math.Pi / 10, SpeedX: 60})
	if math.Abs(a.Steer-1.0) > 1e-9 {
		t.Errorf("steer = %v, want 1.0 for a pi/10 angle on the axis", a.Steer)
	}

	// Off-centre correction pulls back toward the middle.
	a = h.Decide(&scrproto.Snapshot{Angle: 0, TrackPos: 0.5, SpeedX: 60})
	if math.Abs(a.Steer+0.05) > 1e-9 {
		t.Errorf("steer = %v, want -0.05", a.Steer)
	}
}

func TestDecideThrottleControl(t *testing.T) {
	h := NewHeuristic()

	// Well below target: throttle creeps up.
	before := scrproto.NewAction().Accel
	a := h.Decide(&scrproto.Snapshot{SpeedX: 60})
	if a.Accel <= before {
		t.Errorf("accel = %v, want above the starting %v", a.Accel, before)
	}

	// Above target: throttle backs off.
	h2 := NewHeuristic()
	h2.TargetSpeed = 50
	a = h2.Decide(&scrproto.Snapshot{SpeedX: 60})
	if a.Accel >= before {
		t.Errorf("accel = %v at target, want below %v", a.Accel, before)
	}
}

func TestDecideLaunchBoost(t *testing.T) {
	h := NewHeuristic()
	a := h.Decide(&scrproto.Snapshot{SpeedX: 0.9})
	if a.Accel < 1 {
		t.Errorf("accel = %v, want a strong launch push at near-zero speed", a.Accel)
	}
}

func TestDecideTractionControl(t *testing.T) {
	spinning := &scrproto.Snapshot{
		SpeedX:       60,
		WheelSpinVel: []float64{10, 10, 18, 18},
	}
	gripping := &scrproto.Snapshot{
		SpeedX:       60,
		WheelSpinVel: []float64{10, 10, 11, 11},
	}

	a1 := NewHeuristic().Decide(spinning)
	a2 := NewHeuristic().Decide(gripping)
	if diff := a2.Accel - a1.Accel; math.Abs(diff-0.2) > 1e-9 {
		t.Errorf("traction control cut = %v, want 0.2", diff)
	}
}

func TestDecideGearThresholds(t *testing.T) {
	cases := []struct {
		speed float64
		gear  int
	}{
		{0, 1},
		{49, 1},
		{51, 2},
		{81, 3},
		{111, 4},
		{141, 5},
		{171, 6},
		{300, 6},
	}
	for _, tc := range cases {
		a := NewHeuristic().Decide(&scrproto.Snapshot{SpeedX: tc.speed})
		if a.Gear != tc.gear {
			t.Errorf("speed %v: gear = %d, want %d", tc.speed, a.Gear, tc.gear)
		}
	}
}

func TestDecideReusesAction(t *testing.T) {
	h := NewHeuristic()
	s := &scrproto.Snapshot{SpeedX: 60}
	a1 := h.Decide(s)
	a2 := h.Decide(s)
	if a1 != a2 {
		t.Error("Decide should mutate and return the same action across calls")
	}
}
