package scrproto

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClampRanges(t *testing.T) {
	tests := []struct {
		name string
		in   Action
		want Action
	}{
		{
			name: "all out of range",
			in:   Action{Steer: 2.5, Brake: -1, Accel: 0.5, Clutch: 0, Gear: 9, Meta: 5, Focus: []float64{0, 0, 0, 0, 0}},
			want: Action{Steer: 1.0, Brake: 0, Accel: 0.5, Clutch: 0, Gear: 0, Meta: 0, Focus: []float64{0, 0, 0, 0, 0}},
		},
		{
			name: "in range untouched",
			in:   Action{Steer: -0.5, Brake: 0.3, Accel: 1, Clutch: 0.7, Gear: -1, Meta: 1, Focus: []float64{-90, 90}},
			want: Action{Steer: -0.5, Brake: 0.3, Accel: 1, Clutch: 0.7, Gear: -1, Meta: 1, Focus: []float64{-90, 90}},
		},
		{
			name: "steer below range",
			in:   Action{Steer: -3},
			want: Action{Steer: -1, Gear: 0},
		},
		{
			name: "focus out of range collapses to scalar zero",
			in:   Action{Gear: 1, Focus: []float64{-90, 181}},
			want: Action{Gear: 1, Focus: nil},
		},
		{
			name: "focus below range collapses too",
			in:   Action{Gear: 1, Focus: []float64{-181}},
			want: Action{Gear: 1, Focus: nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.in
			a.Clamp()
			if diff := cmp.Diff(tt.want, a); diff != "" {
				t.Errorf("Clamp() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClampIdempotent(t *testing.T) {
	a := Action{Steer: 99, Brake: 2, Accel: -7, Clutch: 1.5, Gear: 8, Meta: -1, Focus: []float64{500}}
	a.Clamp()
	once := a
	a.Clamp()
	if diff := cmp.Diff(once, a); diff != "" {
		t.Errorf("Clamp() not idempotent (-once +twice):\n%s", diff)
	}
}

func TestClampBounds(t *testing.T) {
	// Whatever goes in, the clamped result sits inside the legal ranges.
	cases := []Action{
		{Steer: 1e9, Brake: 1e9, Accel: 1e9, Clutch: 1e9, Gear: 1 << 20, Meta: 7},
		{Steer: -1e9, Brake: -1e9, Accel: -1e9, Clutch: -1e9, Gear: -5, Meta: -3},
		*NewAction(),
	}
	for _, a := range cases {
		a.Clamp()
		if a.Steer < -1 || a.Steer > 1 {
			t.Errorf("steer %v out of [-1,1]", a.Steer)
		}
		for name, v := range map[string]float64{"accel": a.Accel, "brake": a.Brake, "clutch": a.Clutch} {
			if v < 0 || v > 1 {
				t.Errorf("%s %v out of [0,1]", name, v)
			}
		}
		if a.Gear < -1 || a.Gear > 6 {
			t.Errorf("gear %d out of {-1..6}", a.Gear)
		}
		if a.Meta != 0 && a.Meta != 1 {
			t.Errorf("meta %d out of {0,1}", a.Meta)
		}
	}
}

func TestNewActionDefaults(t *testing.T) {
	a := NewAction()
	want := &Action{Accel: 0.2, Gear: 1, Focus: []float64{-90, -45, 0, 45, 90}}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("NewAction() mismatch (-want +got):\n%s", diff)
	}
}
