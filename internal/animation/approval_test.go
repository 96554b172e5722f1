package animation

import (
	"reflect"
	"testing"
)

func TestWeightAt(t *testing.T) {
	scene := DemoScene()
	cases := []struct {
		progress float64
		want     float64
	}{
		{0, 0},
		{0.1, 0},
		{0.25, 0},
		{0.4, 4.5},
		{0.55, 9},
		{0.9, 9},
		{1, 9},
		{0.3, 1.5},
		{0.26, 0.3},
	}
	for _, tc := range cases {
		if got := scene.WeightAt(tc.progress); got != tc.want {
			t.Fatalf("WeightAt(%v) = %v, want %v", tc.progress, got, tc.want)
		}
	}
}

func TestFrameAt(t *testing.T) {
	scene := DemoScene()
	if scene.TotalWeight() != 9 {
		t.Fatalf("unexpected total weight: %d", scene.TotalWeight())
	}
	if !reflect.DeepEqual(scene.Cumulative(), []uint64{3, 5, 7, 8, 9}) {
		t.Fatalf("unexpected cumulative weights: %v", scene.Cumulative())
	}

	start := scene.FrameAt(0.25)
	if start.ThresholdMet || !reflect.DeepEqual(start.Approved, []bool{false, false, false, false, false}) {
		t.Fatalf("unexpected start frame: %+v", start)
	}

	mid := scene.FrameAt(0.4)
	if mid.ThresholdMet {
		t.Fatalf("4.5 is below the threshold of 5")
	}
	if !reflect.DeepEqual(mid.Approved, []bool{true, false, false, false, false}) {
		t.Fatalf("unexpected approvals at 4.5: %v", mid.Approved)
	}
	if mid.FillPercent != 50 {
		t.Fatalf("unexpected fill: %v", mid.FillPercent)
	}

	end := scene.FrameAt(0.55)
	if !end.ThresholdMet || !reflect.DeepEqual(end.Approved, []bool{true, true, true, true, true}) {
		t.Fatalf("unexpected end frame: %+v", end)
	}
}

func TestThresholdTransition(t *testing.T) {
	scene := DemoScene()
	frames := scene.Frames(100)
	if len(frames) != 101 {
		t.Fatalf("expected 101 frames, got %d", len(frames))
	}
	var flips int
	for i := 1; i < len(frames); i++ {
		if frames[i].ThresholdMet != frames[i-1].ThresholdMet {
			flips++
		}
		if frames[i].Weight < frames[i-1].Weight {
			t.Fatalf("weight decreased at frame %d", i)
		}
	}
	if flips != 1 {
		t.Fatalf("expected exactly one threshold transition, got %d", flips)
	}
}

func TestInterpolate(t *testing.T) {
	in := Range{Min: 0.25, Max: 0.55}
	out := Range{Min: 0, Max: 9}
	if got := Interpolate(-1, in, out); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := Interpolate(2, in, out); got != 9 {
		t.Fatalf("expected clamp to 9, got %v", got)
	}
	if got := Interpolate(0.5, Range{Min: 1, Max: 1}, out); got != 0 {
		t.Fatalf("degenerate range below: %v", got)
	}
}

func TestThresholdPercent(t *testing.T) {
	if got := RoundTenth(DemoScene().ThresholdPercent()); got != 55.6 {
		t.Fatalf("unexpected threshold marker: %v", got)
	}
	if got := NewScene(nil, 1, Range{Min: 0, Max: 1}).ThresholdPercent(); got != 0 {
		t.Fatalf("empty scene marker: %v", got)
	}
}
