package kinematics

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/awa-soul/pkg/noise"
	"github.com/teslashibe/awa-soul/pkg/points"
	"github.com/teslashibe/awa-soul/pkg/shapes"
)

func newStepper(t *testing.T, cfg Config) *Stepper {
	t.Helper()
	src, err := noise.NewSource(noise.Simplex, 7)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	return NewStepper(noise.NewField(src), cfg)
}

func register(t *testing.T, reg *shapes.Registry, name string, coords []mgl64.Vec3) *shapes.Target {
	t.Helper()
	target, err := reg.Register(name, coords)
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	return target
}

func TestClampDelta(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1.0 / 60, 1.0 / 60},
		{MaxDelta, MaxDelta},
		{0.5, MaxDelta},
		{-1, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ClampDelta(tt.in); got != tt.want {
			t.Errorf("ClampDelta(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStep_ConvergesWithoutWiggle(t *testing.T) {
	reg := shapes.NewRegistry(4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a := register(t, reg, "a", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	b := register(t, reg, "b", []mgl64.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}})

	cloud := points.New(4, points.DefaultInit())
	cloud.SnapTo(a)
	for i := 0; i < 4; i++ {
		if cloud.Position(i) != a.At(i) {
			t.Fatalf("after SnapTo, point %d = %v, want %v", i, cloud.Position(i), a.At(i))
		}
	}

	cloud.SetTarget(b)
	s := newStepper(t, DefaultConfig())
	elapsed := 0.0
	for tick := 0; tick < 1000; tick++ {
		elapsed += 1.0 / 60
		s.Step(cloud, Frame{Delta: 1.0 / 60, Elapsed: elapsed, WigglePower: 0, WiggleSpeed: 0.5})
	}

	want := mgl64.Vec3{1, 1, 1}
	for i := 0; i < 4; i++ {
		if d := cloud.Position(i).Sub(want).Len(); d > 1e-3 {
			t.Errorf("point %d at %v, %v from target", i, cloud.Position(i), d)
		}
	}
}

func TestStep_AtTargetStaysPut(t *testing.T) {
	reg := shapes.NewRegistry(64, slog.New(slog.NewTextHandler(io.Discard, nil)))
	target := register(t, reg, "sphere", shapes.GenerateSphere(64, 1.3))

	cloud := points.New(64, points.DefaultInit())
	cloud.SnapTo(target)

	s := newStepper(t, DefaultConfig())
	s.Step(cloud, Frame{Delta: 1.0 / 60, Elapsed: 3, WigglePower: 0, WiggleSpeed: 0.5})

	for i := 0; i < cloud.Len(); i++ {
		if cloud.Position(i) != target.At(i) {
			t.Fatalf("point %d moved from %v to %v", i, target.At(i), cloud.Position(i))
		}
	}
}

func TestStepPoint_WigglePreservesSpeed(t *testing.T) {
	s := newStepper(t, DefaultConfig())
	p := mgl64.Vec3{0.3, -0.2, 0.5}
	v := mgl64.Vec3{0.01, 0.02, -0.01}
	target := mgl64.Vec3{2, 2, 2}

	calm := Frame{Delta: 1.0 / 60, Elapsed: 1.5}
	windy := calm
	windy.WigglePower = 0.1
	windy.WiggleSpeed = 0.65

	_, vCalm := s.StepPoint(3, p, v, target, calm)
	_, vWindy := s.StepPoint(3, p, v, target, windy)

	if math.Abs(vCalm.Len()-vWindy.Len()) > 1e-12 {
		t.Errorf("wiggle changed speed: %v vs %v", vCalm.Len(), vWindy.Len())
	}
	if vCalm.ApproxEqualThreshold(vWindy, 1e-9) {
		t.Error("wiggle should change direction")
	}
}

func TestStepPoint_SeekSaturates(t *testing.T) {
	s := newStepper(t, DefaultConfig())
	f := Frame{Delta: 1.0 / 60}

	_, near := s.StepPoint(0, mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0.5, 0, 0}, f)
	_, far := s.StepPoint(0, mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{5, 0, 0}, f)
	_, farther := s.StepPoint(0, mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{50, 0, 0}, f)

	if math.Abs(far.Len()-farther.Len()) > 1e-12 {
		t.Errorf("seek speed should saturate beyond one unit: %v vs %v", far.Len(), farther.Len())
	}
	if math.Abs(near.Len()*2-far.Len()) > 1e-12 {
		t.Errorf("seek speed should scale with distance below one unit: %v vs %v", near.Len(), far.Len())
	}
	if far[0] <= 0 || far[1] != 0 || far[2] != 0 {
		t.Errorf("seek should point at the target, got %v", far)
	}
}

func TestStepPoint_StepScalesWithDelta(t *testing.T) {
	s := newStepper(t, DefaultConfig())
	target := mgl64.Vec3{0, 3, 0}

	p1, _ := s.StepPoint(0, mgl64.Vec3{}, mgl64.Vec3{}, target, Frame{Delta: 1.0 / 60})
	p2, _ := s.StepPoint(0, mgl64.Vec3{}, mgl64.Vec3{}, target, Frame{Delta: 1.0 / 30})

	if math.Abs(p2[1]-2*p1[1]) > 1e-12 {
		t.Errorf("doubling delta should double displacement: %v vs %v", p1[1], p2[1])
	}
}

func TestStep_ParallelMatchesSerial(t *testing.T) {
	const n = 3000
	reg := shapes.NewRegistry(n, slog.New(slog.NewTextHandler(io.Discard, nil)))
	target := register(t, reg, "sphere", shapes.GenerateSphere(n, 1.45))

	serial := points.New(n, points.DefaultInit())
	parallel := points.New(n, points.DefaultInit())
	serial.SetTarget(target)
	parallel.SetTarget(target)

	cfgSerial := DefaultConfig()
	cfgSerial.Workers = 1
	cfgParallel := DefaultConfig()
	cfgParallel.Workers = 4
	cfgParallel.MinChunk = 64

	a, b := newStepper(t, cfgSerial), newStepper(t, cfgParallel)
	for tick := 1; tick <= 5; tick++ {
		f := Frame{Delta: 1.0 / 60, Elapsed: float64(tick) / 60, WigglePower: 0.08, WiggleSpeed: 0.5}
		a.Step(serial, f)
		b.Step(parallel, f)
	}

	for i := 0; i < n; i++ {
		if serial.Position(i) != parallel.Position(i) {
			t.Fatalf("point %d differs: serial %v parallel %v", i, serial.Position(i), parallel.Position(i))
		}
	}
}

func TestStep_NoNaN(t *testing.T) {
	const n = 600
	reg := shapes.NewRegistry(n, slog.New(slog.NewTextHandler(io.Discard, nil)))
	target := register(t, reg, "mask", shapes.GenerateMask(n))

	cloud := points.New(n, points.DefaultInit())
	cloud.SetTarget(target)

	s := newStepper(t, DefaultConfig())
	elapsed := 0.0
	for tick := 0; tick < 200; tick++ {
		// Include stalls and zero-length ticks.
		delta := []float64{1.0 / 60, 0, 2, 1.0 / 144}[tick%4]
		elapsed += delta
		s.Step(cloud, Frame{Delta: delta, Elapsed: elapsed, WigglePower: 0.1, WiggleSpeed: 0.65})
	}

	for i := 0; i < n; i++ {
		p, v := cloud.Position(i), cloud.Velocity(i)
		for k := 0; k < 3; k++ {
			if math.IsNaN(p[k]) || math.IsNaN(v[k]) || math.IsInf(p[k], 0) {
				t.Fatalf("point %d is not finite: %v %v", i, p, v)
			}
		}
	}
}
