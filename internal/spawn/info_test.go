package spawn

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spawnforge/internal/asset"
)

func TestInfo_SelectCandidate_Weighted(t *testing.T) {
	info := DefaultInfo("scatter")
	info.Candidates = []*Candidate{
		{Name: NullCandidate, Weight: 0, Null: true},
		{Name: "rock", Weight: 70, Desc: asset.NewDescriptor("rock")},
		{Name: "bush", Weight: 30, Desc: asset.NewDescriptor("bush")},
	}

	rng := rand.New(rand.NewPCG(42, 42))
	const n = 10_000
	counts := make(map[string]int)
	for range n {
		c := info.SelectCandidate(rng)
		require.NotNil(t, c)
		counts[c.Name]++
	}

	assert.Zero(t, counts[NullCandidate])
	assert.InDelta(t, 0.70, float64(counts["rock"])/n, 0.02)
	assert.InDelta(t, 0.30, float64(counts["bush"])/n, 0.02)
}

func TestInfo_SelectCandidate_EdgeCases(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("no candidates", func(t *testing.T) {
		assert.Nil(t, DefaultInfo("x").SelectCandidate(rng))
	})

	t.Run("negative weights clamp to zero", func(t *testing.T) {
		info := DefaultInfo("x")
		info.Candidates = []*Candidate{{Name: "a", Weight: -50}, {Name: "b", Weight: 1}}
		for range 100 {
			assert.Equal(t, "b", info.SelectCandidate(rng).Name)
		}
	})

	t.Run("all zero weights are uniform", func(t *testing.T) {
		info := DefaultInfo("x")
		info.Candidates = []*Candidate{{Name: "a"}, {Name: "b", Weight: -1}}
		seen := map[string]bool{}
		for range 200 {
			seen[info.SelectCandidate(rng).Name] = true
		}
		assert.True(t, seen["a"])
		assert.True(t, seen["b"])
	})
}

func TestInfo_HasRealCandidate(t *testing.T) {
	info := DefaultInfo("x")
	assert.False(t, info.HasRealCandidate())

	info.Candidates = []*Candidate{{Name: NullCandidate, Null: true}}
	assert.False(t, info.HasRealCandidate())

	info.Candidates = append(info.Candidates, &Candidate{Name: "rock", Desc: asset.NewDescriptor("rock")})
	assert.True(t, info.HasRealCandidate())
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in    string
		want  Position
		known bool
	}{
		{"Exact", PositionExact, true},
		{"Exact Position", PositionExact, true},
		{"center", PositionCenter, true},
		{"", PositionRandom, true},
		{"Perimeter", PositionPerimeter, true},
		{"Percent", PositionPercent, true},
		{"ChildRandom", PositionChildren, true},
		{"DistributedBatch", PositionDistributed, true},
		{"Spiral", PositionRandom, false},
	}
	for _, tt := range tests {
		got, known := ParsePosition(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.known, known, tt.in)
	}
}

func TestSpawnIDsAndSeeds(t *testing.T) {
	id := NewSpawnID("rooms/cave.yaml", 3, 0)
	assert.Len(t, id, len(SpawnIDPrefix)+12)
	assert.Equal(t, id, NewSpawnID("rooms/cave.yaml", 3, 0))
	assert.NotEqual(t, id, NewSpawnID("rooms/cave.yaml", 4, 0))
	assert.NotEqual(t, id, NewSpawnID("rooms/cave.yaml", 3, 1))

	a1, a2 := DeriveSeed(7, "cave")
	b1, b2 := DeriveSeed(7, "cave")
	c1, _ := DeriveSeed(7, "forest")
	assert.Equal(t, a1, b1)
	assert.Equal(t, a2, b2)
	assert.NotEqual(t, a1, c1)

	// labels are separated, so ("ab","c") and ("a","bc") differ
	x, _ := DeriveSeed(1, "ab", "c")
	y, _ := DeriveSeed(1, "a", "bc")
	assert.NotEqual(t, x, y)
}
