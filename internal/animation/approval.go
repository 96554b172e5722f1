// Package animation drives the weighted-approval illustration on the landing
// page. Everything here is a pure function of scroll progress.
package animation

import (
	"math"

	"github.com/samber/lo"

	"isafeDashboard/internal/account"
	"isafeDashboard/internal/model"
)

// Range is a closed numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Interpolate maps v from in onto out linearly, clamped to out.
func Interpolate(v float64, in, out Range) float64 {
	if in.Max == in.Min {
		if v < in.Min {
			return out.Min
		}
		return out.Max
	}
	t := (v - in.Min) / (in.Max - in.Min)
	t = math.Max(0, math.Min(1, t))
	return out.Min + t*(out.Max-out.Min)
}

// RoundTenth rounds to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Member is one illustrated signer.
type Member struct {
	Name   string
	Weight uint64
	Color  string
}

// Scene is the illustrated account: its members, their threshold and the
// scroll window over which approvals fill up.
type Scene struct {
	Members   []Member
	Threshold uint64
	Window    Range

	totalWeight uint64
	cumulative  []uint64
}

// Frame is the rendered state at one scroll position.
type Frame struct {
	Progress     float64 `json:"p"`
	Weight       float64 `json:"w"`
	ThresholdMet bool    `json:"met"`
	Approved     []bool  `json:"approved"`
	FillPercent  float64 `json:"fill"`
}

func NewScene(members []Member, threshold uint64, window Range) Scene {
	weights := lo.Map(members, func(m Member, _ int) model.Member {
		return model.Member{Address: m.Name, Weight: m.Weight}
	})
	return Scene{
		Members:     members,
		Threshold:   threshold,
		Window:      window,
		totalWeight: account.TotalWeight(weights),
		cumulative:  account.PrefixSums(weights),
	}
}

// DemoScene is the five-member account shown on the landing page.
func DemoScene() Scene {
	return NewScene([]Member{
		{Name: "Alice", Weight: 3, Color: "from-sky-400 to-blue-500"},
		{Name: "Bob", Weight: 2, Color: "from-violet-400 to-purple-500"},
		{Name: "Carol", Weight: 2, Color: "from-teal-400 to-emerald-500"},
		{Name: "Dave", Weight: 1, Color: "from-amber-400 to-orange-500"},
		{Name: "Eve", Weight: 1, Color: "from-rose-400 to-pink-500"},
	}, 5, Range{Min: 0.25, Max: 0.55})
}

func (s Scene) TotalWeight() uint64 {
	return s.totalWeight
}

// Cumulative returns each member's running weight total in list order.
func (s Scene) Cumulative() []uint64 {
	return append([]uint64(nil), s.cumulative...)
}

// ThresholdPercent is the position of the threshold marker on the bar.
func (s Scene) ThresholdPercent() float64 {
	if s.totalWeight == 0 {
		return 0
	}
	return float64(s.Threshold) / float64(s.totalWeight) * 100
}

// WeightAt is the approval weight shown at scroll progress p.
func (s Scene) WeightAt(p float64) float64 {
	return RoundTenth(Interpolate(p, s.Window, Range{Min: 0, Max: float64(s.totalWeight)}))
}

// FrameAt computes the full illustration state at scroll progress p.
func (s Scene) FrameAt(p float64) Frame {
	weight := s.WeightAt(p)
	approved := make([]bool, len(s.cumulative))
	for i, c := range s.cumulative {
		approved[i] = weight >= float64(c)
	}
	fill := 0.0
	if s.totalWeight > 0 {
		fill = RoundTenth(Interpolate(p, s.Window, Range{Min: 0, Max: 100}))
	}
	return Frame{
		Progress:     p,
		Weight:       weight,
		ThresholdMet: weight >= float64(s.Threshold),
		Approved:     approved,
		FillPercent:  fill,
	}
}

// Frames samples the scene at steps+1 evenly spaced progress values over
// [0, 1] so the page can look frames up instead of computing them.
func (s Scene) Frames(steps int) []Frame {
	if steps < 1 {
		steps = 1
	}
	out := make([]Frame, 0, steps+1)
	for i := 0; i <= steps; i++ {
		out = append(out, s.FrameAt(float64(i)/float64(steps)))
	}
	return out
}
