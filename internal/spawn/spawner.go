package spawn

import (
	"log/slog"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Spawner runs a queue against one context.
type Spawner struct {
	ctx     *Context
	methods map[Position]Method
}

// NewSpawner creates a spawner with the standard methods.
func NewSpawner(ctx *Context) *Spawner {
	return &Spawner{
		ctx:     ctx,
		methods: Methods(),
	}
}

// Run processes queue in order. Every entry is reported exactly once;
// entries without a usable candidate are reported as zero attempts.
func (s *Spawner) Run(queue []*Info, area *geom.Area) {
	for i, info := range queue {
		s.ctx.Log.Progress(info.Name, i+1, len(queue))

		m, ok := s.methods[info.Position]
		if !ok {
			m = s.methods[PositionRandom]
		}

		s.ctx.Log.StartTimer()
		if !info.HasRealCandidate() {
			slog.Warn("skipping entry without candidates",
				"entry", info.Name,
				"spawnID", info.SpawnID)
			s.ctx.Log.OutputAndLog(info.Name, info.Quantity, 0, 0, 0, m.Name())
			continue
		}

		m.Spawn(info, area, s.ctx)
	}
}
