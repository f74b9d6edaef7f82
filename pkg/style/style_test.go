package style

import (
	"math"
	"testing"
)

func TestDefaultThemes(t *testing.T) {
	themes := DefaultThemes()

	for _, name := range []string{"light", "human", "mask", "globe"} {
		th, ok := themes[name]
		if !ok {
			t.Fatalf("missing theme %q", name)
		}
		if th.Name != name {
			t.Errorf("theme %q has Name %q", name, th.Name)
		}
		if th.SettleDuration <= 0 {
			t.Errorf("%s: settle duration must be positive", name)
		}
		if th.WigglePowerStart < th.WigglePowerEnd {
			t.Errorf("%s: wiggle should calm down while settling", name)
		}
	}

	if got := themes["human"].ColorB.Hex(); got != "#ff6f91" {
		t.Errorf("human ColorB = %s, want #ff6f91", got)
	}
}

func TestNames_Sorted(t *testing.T) {
	names := Names(DefaultThemes())
	want := []string{"globe", "human", "light", "mask"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names = %v, want %v", names, want)
		}
	}
}

func TestEasing_FrameRateIndependent(t *testing.T) {
	// Two ticks of 1/120 s must cover the same ground as one tick of 1/60 s.
	one := Easing(DefaultEasingBase, 1.0/60)
	half := Easing(DefaultEasingBase, 1.0/120)
	two := 1 - (1-half)*(1-half)

	if math.Abs(one-two) > 1e-12 {
		t.Errorf("one 1/60 tick = %v, two 1/120 ticks = %v", one, two)
	}
	if math.Abs(one-(1-DefaultEasingBase)) > 1e-12 {
		t.Errorf("Easing(1/60) = %v, want %v", one, 1-DefaultEasingBase)
	}
	if Easing(DefaultEasingBase, 0) != 0 {
		t.Error("zero delta should not move")
	}
}

func TestSettleMix(t *testing.T) {
	tests := []struct {
		name                   string
		now, changedAt, settle float64
		want                   float64
	}{
		{"just changed", 5, 5, 2, 0},
		{"halfway", 6, 5, 2, 0.5},
		{"done", 7, 5, 2, 1},
		{"long after", 100, 5, 2, 1},
		{"clock before change", 4, 5, 2, 0},
		{"zero settle", 5, 5, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SettleMix(tt.now, tt.changedAt, tt.settle); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SettleMix = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpolator_Transition(t *testing.T) {
	themes := DefaultThemes()
	human, mask := themes["human"], themes["mask"]

	ip := NewInterpolator(human, 0)
	p := ip.Update(0, 0)
	if p.WigglePower != human.WigglePowerEnd {
		t.Errorf("new interpolator should be settled, wigglePower = %v", p.WigglePower)
	}

	ip.Transition(mask, 10)

	p = ip.Update(10, 0)
	if p.State != "mask" || p.SettleMix != 0 {
		t.Errorf("at change: state %q mix %v", p.State, p.SettleMix)
	}
	if p.WigglePower != mask.WigglePowerStart || p.Scale != mask.ScaleStart {
		t.Errorf("at change: wigglePower %v scale %v, want start values", p.WigglePower, p.Scale)
	}

	p = ip.Update(10+mask.SettleDuration/2, 0)
	want := (mask.ParticleSizeStart + mask.ParticleSizeEnd) / 2
	if math.Abs(p.ParticleSize-want) > 1e-9 {
		t.Errorf("halfway particle size = %v, want %v", p.ParticleSize, want)
	}

	p = ip.Update(10+mask.SettleDuration, 0)
	if math.Abs(p.ParticleSize-mask.ParticleSizeEnd) > 1e-9 {
		t.Errorf("settled particle size = %v, want %v", p.ParticleSize, mask.ParticleSizeEnd)
	}
}

func TestInterpolator_ColorsEase(t *testing.T) {
	themes := DefaultThemes()
	ip := NewInterpolator(themes["light"], 0)
	ip.Transition(themes["mask"], 0)

	target := themes["mask"].ColorA
	prev := ip.Update(0, 1.0/60).ColorA.DistanceRgb(target)
	for i := 0; i < 10; i++ {
		d := ip.Update(0, 1.0/60).ColorA.DistanceRgb(target)
		if d > prev {
			t.Fatalf("color moved away from target at tick %d", i)
		}
		prev = d
	}
	if prev > 1e-6 {
		t.Errorf("color distance after 11 ticks = %v", prev)
	}
}

func TestInterpolator_Snap(t *testing.T) {
	themes := DefaultThemes()
	ip := NewInterpolator(themes["light"], 0)
	ip.Snap(themes["globe"], 3)

	p := ip.Update(3, 0)
	if p.SettleMix != 1 {
		t.Errorf("snap should be settled, mix = %v", p.SettleMix)
	}
	if p.ColorA != themes["globe"].ColorA || p.Spin != themes["globe"].Spin {
		t.Error("snap should jump colors and spin")
	}
}
