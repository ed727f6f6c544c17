package scrproto

// Snapshot is one complete telemetry reading from the simulator. Each decoded
// datagram produces a fresh Snapshot; partial merges are never performed, so
// a new snapshot fully replaces the previous one.
//
// The fixed sensor vocabulary gets typed fields. Keys outside the vocabulary,
// and known keys whose tokens failed numeric coercion, are preserved in Extra
// so nothing from the wire is lost.
type Snapshot struct {
	Angle         float64   `json:"angle"`
	CurLapTime    float64   `json:"curLapTime"`
	Damage        float64   `json:"damage"`
	DistFromStart float64   `json:"distFromStart"`
	DistRaced     float64   `json:"distRaced"`
	Focus         []float64 `json:"focus,omitempty"`
	Fuel          float64   `json:"fuel"`
	Gear          float64   `json:"gear"`
	LastLapTime   float64   `json:"lastLapTime"`
	Opponents     []float64 `json:"opponents,omitempty"`
	RacePos       float64   `json:"racePos"`
	RPM           float64   `json:"rpm"`
	SpeedX        float64   `json:"speedX"`
	SpeedY        float64   `json:"speedY"`
	SpeedZ        float64   `json:"speedZ"`
	Track         []float64 `json:"track,omitempty"`
	TrackPos      float64   `json:"trackPos"`
	WheelSpinVel  []float64 `json:"wheelSpinVel,omitempty"`
	Z             float64   `json:"z"`
	StuckTimer    float64   `json:"stucktimer"`
	TargetSpeed   float64   `json:"targetSpeed"`
	Skid          float64   `json:"skid"`
	Slip          float64   `json:"slip"`

	Extra map[string]Value `json:"-"`
}

// apply routes one decoded group into the snapshot. Known scalar keys accept
// a numeric scalar, known sequence keys accept an all-numeric sequence;
// anything else lands in Extra verbatim.
func (s *Snapshot) apply(key string, v Value) {
	if f, ok := v.Float(); ok {
		switch key {
		case "angle":
			s.Angle = f
			return
		case "curLapTime":
			s.CurLapTime = f
			return
		case "damage":
			s.Damage = f
			return
		case "distFromStart":
			s.DistFromStart = f
			return
		case "distRaced":
			s.DistRaced = f
			return
		case "fuel":
			s.Fuel = f
			return
		case "gear":
			s.Gear = f
			return
		case "lastLapTime":
			s.LastLapTime = f
			return
		case "racePos":
			s.RacePos = f
			return
		case "rpm":
			s.RPM = f
			return
		case "speedX":
			s.SpeedX = f
			return
		case "speedY":
			s.SpeedY = f
			return
		case "speedZ":
			s.SpeedZ = f
			return
		case "trackPos":
			s.TrackPos = f
			return
		case "z":
			s.Z = f
			return
		case "stucktimer":
			s.StuckTimer = f
			return
		case "targetSpeed":
			s.TargetSpeed = f
			return
		case "skid":
			s.Skid = f
			return
		case "slip":
			s.Slip = f
			return
		}
	}
	// Sequence sensors also accept a lone scalar: the server collapses some
	// of them to a single value (focus reports -1 when access is denied).
	fs, ok := v.Floats()
	if !ok {
		if f, sok := v.Float(); sok {
			fs, ok = []float64{f}, true
		}
	}
	if ok {
		switch key {
		case "focus":
			s.Focus = fs
			return
		case "opponents":
			s.Opponents = fs
			return
		case "track":
			s.Track = fs
			return
		case "wheelSpinVel":
			s.WheelSpinVel = fs
			return
		}
	}
	if s.Extra == nil {
		s.Extra = make(map[string]Value)
	}
	s.Extra[key] = v
}
