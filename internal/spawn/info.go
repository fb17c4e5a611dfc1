package spawn

import (
	"math/rand/v2"
	"strings"

	"github.com/udisondev/spawnforge/internal/asset"
)

// Position names the placement method of a queue entry.
type Position string

const (
	PositionExact       Position = "Exact"
	PositionCenter      Position = "Center"
	PositionRandom      Position = "Random"
	PositionPerimeter   Position = "Perimeter"
	PositionPercent     Position = "Percent"
	PositionChildren    Position = "ChildRandom"
	PositionDistributed Position = "DistributedBatch"
)

// NullCandidate is the configured name of the "place nothing" option.
const NullCandidate = "null"

// ParsePosition normalizes a configured position tag. Legacy spellings are
// mapped; unknown tags fall back to Random.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "exact position":
		return PositionExact, true
	case "center":
		return PositionCenter, true
	case "random", "":
		return PositionRandom, true
	case "perimeter":
		return PositionPerimeter, true
	case "percent":
		return PositionPercent, true
	case "childrandom", "children", "child_random":
		return PositionChildren, true
	case "distributedbatch", "distributed_batch", "batch":
		return PositionDistributed, true
	default:
		return PositionRandom, false
	}
}

// Candidate is one weighted option of an entry.
type Candidate struct {
	Name   string
	Weight float64
	// Tag is set when the candidate was resolved from a tag reference.
	Tag  string
	Null bool
	Desc *asset.Descriptor
}

// Info is one placement request. It is built by the planner and not
// modified afterwards.
type Info struct {
	Name     string
	SpawnID  string
	Position Position
	Quantity int
	Priority int

	Candidates []*Candidate

	EnforceSpacing       bool
	CheckMinTypeDistance bool
	CheckMinDistanceAll  bool

	// Pixel offset from the area center, authored against OriginWidth x OriginHeight.
	DX, DY       int
	OriginWidth  int
	OriginHeight int

	// Exact placement in percent of the area (50,50 is the center).
	UsePercentPos bool
	EPX, EPY      float64

	// Perimeter.
	Radius          int
	HasPhase        bool
	Phase           float64 // degrees
	HasSectorCenter bool
	SectorCenter    float64 // degrees
	SectorRange     float64 // degrees, 0 = full circle
	ShiftFromCenter int     // percent

	// Percent of half extent, each in [-100, 100].
	PXMin, PXMax int
	PYMin, PYMax int

	// DistributedBatch lattice.
	GridSpacing int
	Jitter      int
}

// SelectCandidate picks a candidate by weight. Negative weights count as
// zero; if no weight is positive every candidate is equally likely.
// Returns nil when the entry has no candidates.
func (i *Info) SelectCandidate(rng *rand.Rand) *Candidate {
	if len(i.Candidates) == 0 {
		return nil
	}

	total := 0.0
	for _, c := range i.Candidates {
		total += max(c.Weight, 0)
	}
	if total <= 0 {
		return i.Candidates[rng.IntN(len(i.Candidates))]
	}

	r := rng.Float64() * total
	for _, c := range i.Candidates {
		w := max(c.Weight, 0)
		if r < w {
			return c
		}
		r -= w
	}

	// float drift: return the last positive candidate
	for k := len(i.Candidates) - 1; k >= 0; k-- {
		if i.Candidates[k].Weight > 0 {
			return i.Candidates[k]
		}
	}
	return i.Candidates[len(i.Candidates)-1]
}

// HasRealCandidate reports whether at least one non-null candidate resolved
// to a catalog asset.
func (i *Info) HasRealCandidate() bool {
	for _, c := range i.Candidates {
		if !c.Null && c.Desc != nil {
			return true
		}
	}
	return false
}

// DefaultInfo returns an entry with the documented defaults applied.
func DefaultInfo(name string) *Info {
	return &Info{
		Name:                 name,
		Position:             PositionRandom,
		Quantity:             1,
		EnforceSpacing:       true,
		CheckMinTypeDistance: true,
		CheckMinDistanceAll:  true,
		PXMin:                -100,
		PXMax:                100,
		PYMin:                -100,
		PYMax:                100,
		GridSpacing:          100,
	}
}
