package scrproto

// Action is the actuator command sent to the simulator each step. Fields may
// be mutated freely by the deciding agent; Clamp runs as a mandatory gate
// immediately before serialization and is never assumed to have run earlier.
//
// A nil or empty Focus means the scalar 0 on the wire.
type Action struct {
	Accel  float64   `json:"accel"`
	Brake  float64   `json:"brake"`
	Clutch float64   `json:"clutch"`
	Gear   int       `json:"gear"`
	Steer  float64   `json:"steer"`
	Focus  []float64 `json:"focus,omitempty"`
	Meta   int       `json:"meta"`
}

// NewAction returns an action with the protocol defaults: a light throttle,
// first gear, and the five standard focus angles.
func NewAction() *Action {
	return &Action{
		Accel: 0.2,
		Gear:  1,
		Focus: []float64{-90, -45, 0, 45, 90},
	}
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp forces every field into its legal range. There is never a reason to
// send the server something like (steer 9483.323), so the codec always clamps
// rather than trusting the caller. Clamp is idempotent.
func (a *Action) Clamp() {
	a.Steer = clip(a.Steer, -1, 1)
	a.Brake = clip(a.Brake, 0, 1)
	a.Accel = clip(a.Accel, 0, 1)
	a.Clutch = clip(a.Clutch, 0, 1)
	if a.Gear < -1 || a.Gear > 6 {
		a.Gear = 0
	}
	if a.Meta != 0 && a.Meta != 1 {
		a.Meta = 0
	}
	for _, f := range a.Focus {
		if f < -180 || f > 180 {
			a.Focus = nil
			break
		}
	}
}
