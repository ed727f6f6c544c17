package agent

import (
	"math"

	"github.com/banshee-data/trackpilot/internal/scrproto"
)

// Heuristic is a simple rule-based driver good enough to get around most
// tracks: steer toward the track axis, hold a target speed, back off the
// throttle when the rear wheels spin up, and shift on speed thresholds.
type Heuristic struct {
	// TargetSpeed in the simulator's speed units; default 1000 (never
	// reached, so the throttle controller keeps pushing).
	TargetSpeed float64

	act *scrproto.Action
}

// NewHeuristic returns a Heuristic with the default target speed.
func NewHeuristic() *Heuristic {
	return &Heuristic{TargetSpeed: 1000}
}

// Decide implements Agent.
func (h *Heuristic) Decide(s *scrproto.Snapshot) *scrproto.Action {
	if h.act == nil {
		h.act = scrproto.NewAction()
	}
	a := h.act

	// Steer to corner, then correct toward the track centre.
	a.Steer = s.Angle * 10 / math.Pi
	a.Steer -= s.TrackPos * 0.10

	// Throttle control: push while below target, adjusted for steering load.
	target := h.TargetSpeed
	if target == 0 {
		target = 1000
	}
	if s.SpeedX < target-a.Steer*50 {
		a.Accel += 0.01
	} else {
		a.Accel -= 0.01
	}
	if s.SpeedX < 10 {
		a.Accel += 1 / (s.SpeedX + 0.1)
	}

	// Traction control: rear wheels spinning faster than the fronts means
	// we are lighting them up.
	if len(s.WheelSpinVel) >= 4 {
		if (s.WheelSpinVel[2]+s.WheelSpinVel[3])-(s.WheelSpinVel[0]+s.WheelSpinVel[1]) > 5 {
			a.Accel -= 0.2
		}
	}

	// Automatic transmission on speed thresholds.
	a.Gear = 1
	switch {
	case s.SpeedX > 170:
		a.Gear = 6
	case s.SpeedX > 140:
		a.Gear = 5
	case s.SpeedX > 110:
		a.Gear = 4
	case s.SpeedX > 80:
		a.Gear = 3
	case s.SpeedX > 50:
		a.Gear = 2
	}
	return a
}
