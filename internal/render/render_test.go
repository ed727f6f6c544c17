package render

import (
	"strings"
	"testing"

	"github.com/banshee-data/trackpilot/internal/scrproto"
)

func TestBargraph(t *testing.T) {
	cases := []struct {
		name      string
		x, mn, mx float64
		w         int
		c         byte
		want      string
	}{
		{"zero width", 1, 0, 10, 0, 'x', ""},
		{"inverted bounds", 1, 10, 0, 10, 'x', "backwards"},
		{"full positive", 10, 0, 10, 10, 'x', "[xxxxxxxxxx]"},
		{"half positive", 5, 0, 10, 10, 'x', "[xxxxx_____]"},
		{"empty positive", 0, 0, 10, 10, 'x', "[__________]"},
		{"clipped above", 99, 0, 10, 10, 'x', "[xxxxxxxxxx]"},
		{"clipped below", -99, 0, 10, 10, 'x', "[__________]"},
		{"negative half", -5, -10, 10, 20, '*', "[-----*****__________]"},
		{"positive half of signed", 5, -10, 10, 20, '*', "[----------*****_____]"},
	}
	for _, tc := range cases {
		if got := Bargraph(tc.x, tc.mn, tc.mx, tc.w, tc.c); got != tc.want {
			t.Errorf("%s: Bargraph(%v,%v,%v,%d,%q) = %q, want %q",
				tc.name, tc.x, tc.mn, tc.mx, tc.w, tc.c, got, tc.want)
		}
	}
}

func TestSnapshotListsEveryChannel(t *testing.T) {
	out := Snapshot(&scrproto.Snapshot{SpeedX: 120, RPM: 5000, Gear: 3})
	for _, k := range sensorOrder {
		if !strings.Contains(out, k+": ") {
			t.Errorf("monitor view missing channel %q", k)
		}
	}
	if got := strings.Count(out, "\n"); got != len(sensorOrder) {
		t.Errorf("monitor view has %d lines, want %d", got, len(sensorOrder))
	}
}

func TestSnapshotStuckTimer(t *testing.T) {
	if out := Snapshot(&scrproto.Snapshot{}); !strings.Contains(out, "Not stuck!") {
		t.Error("zero stuck timer should read 'Not stuck!'")
	}
	if out := Snapshot(&scrproto.Snapshot{StuckTimer: 150}); strings.Contains(out, "Not stuck!") {
		t.Error("nonzero stuck timer should draw a bar")
	}
}

func TestSnapshotReverseGearSymbol(t *testing.T) {
	out := rpmRow(&scrproto.Snapshot{RPM: 9000, Gear: -1})
	if !strings.Contains(out, "R") {
		t.Errorf("reverse gear should plot with R: %q", out)
	}
	out = rpmRow(&scrproto.Snapshot{RPM: 9000, Gear: 3})
	if !strings.Contains(out, "3") {
		t.Errorf("third gear should plot with its digit: %q", out)
	}
}

func TestTrackRowEmphasisesForwardSensor(t *testing.T) {
	track := make([]float64, 19)
	for i := range track {
		track[i] = float64(i)
	}
	out := trackRow(&scrproto.Snapshot{Track: track})
	if !strings.Contains(out, "_9.0_") {
		t.Errorf("forward sensor not emphasised: %q", out)
	}

	// Short vectors fall back to a plain join.
	out = trackRow(&scrproto.Snapshot{Track: []float64{1, 2}})
	if out != "1, 2" {
		t.Errorf("short track row = %q", out)
	}
}

func TestOpponentsRowEncoding(t *testing.T) {
	opp := make([]float64, 36)
	for i := range opp {
		opp[i] = 200 // out of range, renders as _
	}
	out := opponentsRow(&scrproto.Snapshot{Opponents: opp})
	if !strings.HasPrefix(out, " -> ") || !strings.HasSuffix(out, " <-") {
		t.Errorf("full row should carry direction arrows: %q", out)
	}
	if !strings.Contains(out, "_") {
		t.Errorf("distant opponents should render as _: %q", out)
	}

	near := opponentsRow(&scrproto.Snapshot{Opponents: []float64{1}})
	if near != "?" {
		t.Errorf("adjacent opponent = %q, want ?", near)
	}
}

func TestActionView(t *testing.T) {
	a := scrproto.NewAction()
	a.Brake = 0.5
	out := Action(a)
	for _, k := range []string{"accel:", "brake:", "clutch:", "steer:"} {
		if !strings.Contains(out, k) {
			t.Errorf("action view missing %q", k)
		}
	}
	if strings.Contains(out, "gear") || strings.Contains(out, "focus") {
		t.Errorf("action view should omit gear and focus: %q", out)
	}
	if !strings.Contains(out, " 0.500 ") {
		t.Errorf("brake value not rendered: %q", out)
	}
}

func TestAngleRow(t *testing.T) {
	out := angleRow(&scrproto.Snapshot{Angle: 0})
	if !strings.Contains(out, "  0 ") {
		t.Errorf("zero angle row = %q", out)
	}
}
