// Package render produces the plain-text diagnostics views of a telemetry
// snapshot and an actuator command. It is a read-only collaborator: nothing
// here touches protocol state.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/trackpilot/internal/scrproto"
)

// Bargraph draws an ASCII bar for x within [mn,mx], w characters wide, using
// c as the plot character. Values outside the bounds are clipped.
func Bargraph(x, mn, mx float64, w int, c byte) string {
	if w <= 0 {
		return ""
	}
	if x < mn {
		x = mn
	}
	if x > mx {
		x = mx
	}
	tx := mx - mn
	if tx <= 0 {
		return "backwards"
	}
	upw := tx / float64(w)

	var negpu, pospu, negnonpu, posnonpu float64
	if mn < 0 {
		if x < 0 {
			negpu = -x + math.Min(0, mx)
			negnonpu = -mn + x
		} else {
			negnonpu = -mn + math.Min(0, mx)
		}
	}
	if mx > 0 {
		if x > 0 {
			pospu = x - math.Max(0, mn)
			posnonpu = mx - x
		} else {
			posnonpu = mx - math.Max(0, mn)
		}
	}
	return "[" +
		strings.Repeat("-", int(negnonpu/upw)) +
		strings.Repeat(string(c), int(negpu/upw)) +
		strings.Repeat(string(c), int(pospu/upw)) +
		strings.Repeat("_", int(posnonpu/upw)) +
		"]"
}

// formatter renders one sensor channel from a snapshot.
type formatter func(s *scrproto.Snapshot) string

const barWidth = 50

// sensorOrder selects which channels appear in the monitor view and in what
// order, mirroring the columns a race engineer actually watches.
var sensorOrder = []string{
	"stucktimer",
	"fuel",
	"distRaced",
	"distFromStart",
	"opponents",
	"wheelSpinVel",
	"z",
	"speedZ",
	"speedY",
	"speedX",
	"targetSpeed",
	"rpm",
	"skid",
	"slip",
	"track",
	"trackPos",
	"angle",
}

// sensorFormats maps a sensor name to its formatting strategy, replacing a
// long per-sensor conditional chain.
var sensorFormats = map[string]formatter{
	"stucktimer": func(s *scrproto.Snapshot) string {
		if s.StuckTimer == 0 {
			return "Not stuck!"
		}
		return fmt.Sprintf("%3d %s", int(s.StuckTimer), Bargraph(s.StuckTimer, 0, 300, barWidth, '\''))
	},
	"fuel": func(s *scrproto.Snapshot) string {
		return fmt.Sprintf("%6.0f %s", s.Fuel, Bargraph(s.Fuel, 0, 100, barWidth, 'f'))
	},
	"distRaced": func(s *scrproto.Snapshot) string {
		return fmt.Sprintf("%g", s.DistRaced)
	},
	"distFromStart": func(s *scrproto.Snapshot) string {
		return fmt.Sprintf("%g", s.DistFromStart)
	},
	"opponents":    opponentsRow,
	"wheelSpinVel": func(s *scrproto.Snapshot) string { return joinFloats(s.WheelSpinVel) },
	"z": func(s *scrproto.Snapshot) string {
		return fmt.Sprintf("%6.3f %s", s.Z, Bargraph(s.Z, 0.3, 0.5, barWidth, 'z'))
	},
	"speedZ": func(s *scrproto.Snapshot) string {
		return fmt.Sprintf("%6.1f %s", s.SpeedZ, Bargraph(s.SpeedZ, -13, 13, barWidth, 'Z'))
	},
	"speedY": func(s *scrproto.Snapshot) string {
		// Reversed so left drift reads to the left.
		return fmt.Sprintf("%6.1f %s", s.SpeedY, Bargraph(-s.SpeedY, -25, 25, barWidth, 'Y'))
	},
	"speedX": func(s *scrproto.Snapshot) string {
		c := byte('X')
		if s.SpeedX < 0 {
			c = 'R'
		}
		return fmt.Sprintf("%6.1f %s", s.SpeedX, Bargraph(s.SpeedX, -30, 300, barWidth, c))
	},
	"targetSpeed": func(s *scrproto.Snapshot) string {
		return fmt.Sprintf("%g", s.TargetSpeed)
	},
	"rpm":      rpmRow,
	"skid":     skidRow,
	"slip":     slipRow,
	"track":    trackRow,
	"trackPos": trackPosRow,
	"angle":    angleRow,
}

// Snapshot renders the monitor view of a telemetry snapshot.
func Snapshot(s *scrproto.Snapshot) string {
	var b strings.Builder
	for _, k := range sensorOrder {
		f := sensorFormats[k]
		fmt.Fprintf(&b, "%s: %s\n", k, f(s))
	}
	return b.String()
}

// Action renders the monitor view of an actuator command. Gear, meta and
// focus are omitted; they are not interesting on a per-step basis.
func Action(a *scrproto.Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "accel: %6.3f %s\n", a.Accel, Bargraph(a.Accel, 0, 1, barWidth, 'A'))
	fmt.Fprintf(&b, "brake: %6.3f %s\n", a.Brake, Bargraph(a.Brake, 0, 1, barWidth, 'B'))
	fmt.Fprintf(&b, "clutch: %6.3f %s\n", a.Clutch, Bargraph(a.Clutch, 0, 1, barWidth, 'C'))
	// Steering reversed so left is left.
	fmt.Fprintf(&b, "steer: %6.3f %s\n", a.Steer, Bargraph(-a.Steer, -1, 1, barWidth, 'S'))
	return b.String()
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, ", ")
}

func trackRow(s *scrproto.Snapshot) string {
	if len(s.Track) < 19 {
		return joinFloats(s.Track)
	}
	parts := make([]string, len(s.Track))
	for i, v := range s.Track {
		parts[i] = fmt.Sprintf("%.1f", v)
	}
	// Emphasise the straight-ahead sensor.
	return strings.Join(parts[:9], " ") + "_" + parts[9] + "_" + strings.Join(parts[10:], " ")
}

func opponentsRow(s *scrproto.Snapshot) string {
	var b strings.Builder
	for _, o := range s.Opponents {
		var oc byte
		switch {
		case o > 190:
			oc = '_'
		case o > 90:
			oc = '.'
		case o > 39:
			oc = byte(int(o/2) + 97 - 19)
		case o > 13:
			oc = byte(int(o) + 65 - 13)
		case o > 3:
			oc = byte(int(o) + 48 - 3)
		default:
			oc = '?'
		}
		b.WriteByte(oc)
	}
	row := b.String()
	if len(row) < 19 {
		return row
	}
	return " -> " + row[:18] + " " + row[18:] + " <-"
}

func rpmRow(s *scrproto.Snapshot) string {
	g := byte('R')
	if s.Gear >= 0 {
		g = byte('0' + int(s.Gear))
	}
	return Bargraph(s.RPM, 0, 10000, barWidth, g)
}

// skidRow derives a skid estimate from front wheel spin against ground speed.
func skidRow(s *scrproto.Snapshot) string {
	skid := 0.0
	if len(s.WheelSpinVel) >= 1 && s.WheelSpinVel[0] != 0 {
		skid = 0.5555555555*s.SpeedX/s.WheelSpinVel[0] - 0.66124
	}
	return Bargraph(skid, -0.05, 0.4, barWidth, '*')
}

// slipRow derives rear-vs-front wheel spin, the traction control signal.
func slipRow(s *scrproto.Snapshot) string {
	slip := 0.0
	if len(s.WheelSpinVel) >= 4 && s.WheelSpinVel[0] != 0 {
		slip = (s.WheelSpinVel[2] + s.WheelSpinVel[3]) - (s.WheelSpinVel[0] + s.WheelSpinVel[1])
	}
	return Bargraph(slip, -5, 150, barWidth, '@')
}

func trackPosRow(s *scrproto.Snapshot) string {
	c := byte('<')
	if s.TrackPos < 0 {
		c = '>'
	}
	return fmt.Sprintf("%6.3f %s", s.TrackPos, Bargraph(-s.TrackPos, -1, 1, barWidth, c))
}

var angleSymbols = []string{
	"  !  ", ".|'  ", "./'  ", "_.-  ", ".--  ", "..-  ",
	"---  ", ".__  ", "-._  ", "'-.  ", "'\\.  ", "'|.  ",
	"  |  ", "  .|'", "  ./'", "  .-'", "  _.-", "  __.",
	"  ---", "  --.", "  -._", "  -..", "  '\\.", "  '|.",
}

func angleRow(s *scrproto.Snapshot) string {
	rad := s.Angle
	deg := int(rad * 180 / math.Pi)
	symno := int(0.5 + (rad+math.Pi)/(math.Pi/12))
	symno %= len(angleSymbols) - 1
	if symno < 0 {
		symno += len(angleSymbols) - 1
	}
	return fmt.Sprintf("%5.2f %3d (%s)", rad, deg, angleSymbols[symno])
}
