package planner

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/zyedidia/generic/mapset"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/spawn"
)

// ErrUnknownSpawnID is returned by Set for ids the planner did not parse.
var ErrUnknownSpawnID = errors.New("unknown spawn id")

// MaxQuantity caps min_number and max_number.
const MaxQuantity = 100

// Options restricts candidate resolution.
type Options struct {
	BannedTags   []string
	BannedAssets []string
	// AllowedTags limits tag references; empty allows every tag.
	AllowedTags []string
}

// Section names the part of a document an entry was read from.
type Section string

const (
	SectionGroups Section = keySpawnGroups
	SectionBatch  Section = keyBatch
)

// Provenance locates the node a queue entry was parsed from.
type Provenance struct {
	Document *Document
	Section  Section
	// Index is the position in spawn_groups; -1 for the batch section.
	Index int

	node *yaml.Node
}

// positionRank orders entries without an explicit priority: fixed
// placements first, then spread ones, scatter last.
var positionRank = map[spawn.Position]int{
	spawn.PositionExact:       0,
	spawn.PositionCenter:      1,
	spawn.PositionPercent:     2,
	spawn.PositionPerimeter:   3,
	spawn.PositionDistributed: 4,
	spawn.PositionRandom:      5,
	spawn.PositionChildren:    5,
}

// Planner turns documents into an ordered placement queue. It keeps the
// node of every entry so edits can be written back.
type Planner struct {
	docs    []*Document
	catalog *asset.Catalog
	area    *geom.Area
	rng     *rand.Rand
	filter  filter

	queue    []*spawn.Info
	sources  map[string]Provenance
	used     mapset.Set[string]
	reserved mapset.Set[string]
}

// New parses docs in order. Legacy layouts are migrated in place and
// missing spawn ids are generated; both mark the document dirty. rng drives
// quantity draws and tag picks. area may be nil.
func New(docs []*Document, catalog *asset.Catalog, area *geom.Area, rng *rand.Rand, opts Options) *Planner {
	p := &Planner{
		docs:     docs,
		catalog:  catalog,
		area:     area,
		rng:      rng,
		filter:   newFilter(opts),
		sources:  make(map[string]Provenance),
		used:     mapset.New[string](),
		reserved: mapset.New[string](),
	}

	groups := make([]*yaml.Node, len(docs))
	for i, d := range docs {
		groups[i] = migrate(d)
		p.reserve(groups[i], lookup(d.Root(), keyBatch))
	}

	for i, d := range docs {
		if groups[i] != nil {
			for idx, entry := range groups[i].Content {
				p.parseEntry(d, idx, entry)
			}
		}
		p.parseBatch(d)
	}

	slices.SortStableFunc(p.queue, func(a, b *spawn.Info) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	slog.Debug("spawn queue planned",
		"documents", len(docs),
		"entries", len(p.queue))

	return p
}

// Queue returns the entries ordered by priority. Ties keep document order.
func (p *Planner) Queue() []*spawn.Info {
	return slices.Clone(p.queue)
}

// Documents returns the planner's sources.
func (p *Planner) Documents() []*Document {
	return p.docs
}

// Source returns where the entry with spawnID came from.
func (p *Planner) Source(spawnID string) (Provenance, bool) {
	src, ok := p.sources[spawnID]
	return src, ok
}

// Set writes value under key in the source node of spawnID. The queue is
// not rebuilt; plan again to pick up the change.
func (p *Planner) Set(spawnID, key string, value any) error {
	src, ok := p.sources[spawnID]
	if !ok {
		return fmt.Errorf("setting %s on %s: %w", key, spawnID, ErrUnknownSpawnID)
	}

	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("encoding %s for %s: %w", key, spawnID, err)
	}
	setValue(src.node, key, &n)
	src.Document.markDirty()
	return nil
}

// Save writes every dirty document back to its file.
func (p *Planner) Save() error {
	for _, d := range p.docs {
		if err := d.Save(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) reserve(groups, batch *yaml.Node) {
	if groups != nil {
		for _, entry := range groups.Content {
			if id := str(entry, keySpawnID, ""); id != "" {
				p.reserved.Put(id)
			}
		}
	}
	if id := str(batch, keySpawnID, ""); id != "" {
		p.reserved.Put(id)
	}
}

func (p *Planner) parseEntry(d *Document, idx int, entry *yaml.Node) {
	if entry.Kind != yaml.MappingNode {
		slog.Warn("skipping spawn entry that is not a map",
			"document", d.Label(),
			"index", idx)
		return
	}

	name := str(entry, keyName, "")
	if name == "" {
		name = str(entry, "display_name", "entry "+strconv.Itoa(idx))
	}

	raw := str(entry, keyPosition, "")
	pos, known := spawn.ParsePosition(raw)
	if !known {
		slog.Warn("unknown position, using Random",
			"document", d.Label(),
			"entry", name,
			"position", raw)
	}

	info := spawn.DefaultInfo(name)
	info.Position = pos
	info.SpawnID = p.ensureSpawnID(d, SectionGroups, idx, entry)
	info.Quantity = p.quantity(entry, pos)
	info.Priority = priority(entry, pos)
	readFlags(entry, info)

	info.DX, _ = integer(entry, "dx", 0)
	info.DY, _ = integer(entry, "dy", 0)
	info.OriginWidth, _ = integer(entry, "origional_width", 0)
	info.OriginHeight, _ = integer(entry, "origional_height", 0)
	p.stampOrigin(d, entry, info)

	epx, hasX := number(entry, "ep_x", 50)
	epy, hasY := number(entry, "ep_y", 50)
	info.UsePercentPos = hasX || hasY
	info.EPX, info.EPY = epx, epy

	info.Radius, _ = integer(entry, "radius", 0)
	info.Phase, info.HasPhase = number(entry, "phase", 0)
	info.SectorCenter, info.HasSectorCenter = number(entry, "sector_center", 0)
	info.SectorRange, _ = number(entry, "sector_range", 0)
	info.ShiftFromCenter, _ = integer(entry, "percentage_shift_from_center", 0)

	info.PXMin, _ = integer(entry, "p_x_min", info.PXMin)
	info.PXMax, _ = integer(entry, "p_x_max", info.PXMax)
	info.PYMin, _ = integer(entry, "p_y_min", info.PYMin)
	info.PYMax, _ = integer(entry, "p_y_max", info.PYMax)

	info.GridSpacing, _ = integer(entry, "grid_spacing", info.GridSpacing)
	info.Jitter, _ = integer(entry, "jitter", 0)

	if cands := lookup(entry, keyCandidates); cands != nil {
		info.Candidates = p.candidates(d, name, cands, keyChance, 100)
	}

	p.add(info, Provenance{Document: d, Section: SectionGroups, Index: idx, node: entry})
}

// parseBatch reads the batch section into one DistributedBatch entry.
// Spacing and jitter are the midpoints of their min/max pairs.
func (p *Planner) parseBatch(d *Document) {
	section := lookup(d.Root(), keyBatch)
	if section == nil || section.Kind != yaml.MappingNode {
		return
	}
	members := lookup(section, keyBatch)
	if members == nil || members.Kind != yaml.SequenceNode {
		return
	}

	info := spawn.DefaultInfo(str(section, keyName, keyBatch))
	info.Position = spawn.PositionDistributed
	info.SpawnID = p.ensureSpawnID(d, SectionBatch, -1, section)
	info.Priority = priority(section, spawn.PositionDistributed)
	info.GridSpacing = midpoint(section, "grid_spacing_min", "grid_spacing_max", 100)
	info.Jitter = midpoint(section, "jitter_min", "jitter_max", 0)
	readFlags(section, info)
	info.Candidates = p.candidates(d, info.Name, members, keyPercent, 0)

	p.add(info, Provenance{Document: d, Section: SectionBatch, Index: -1, node: section})
}

func (p *Planner) add(info *spawn.Info, src Provenance) {
	p.queue = append(p.queue, info)
	p.sources[info.SpawnID] = src
}

// ensureSpawnID returns the entry's id, generating and writing back a new
// one when it is missing or already taken.
func (p *Planner) ensureSpawnID(d *Document, sec Section, idx int, m *yaml.Node) string {
	id := str(m, keySpawnID, "")
	if id != "" && !p.used.Has(id) {
		p.used.Put(id)
		return id
	}
	if id != "" {
		slog.Warn("duplicate spawn id, assigning a new one",
			"document", d.Label(),
			"spawnID", id)
	}

	source := d.Label() + "/" + string(sec)
	for salt := 0; ; salt++ {
		id = spawn.NewSpawnID(source, idx, salt)
		if !p.used.Has(id) && !p.reserved.Has(id) {
			break
		}
	}
	setValue(m, keySpawnID, strNode(id))
	d.markDirty()
	p.used.Put(id)
	return id
}

// quantity draws uniformly from [min_number, max_number], both clamped to
// [0, MaxQuantity]. Perimeter entries get at least 2.
func (p *Planner) quantity(entry *yaml.Node, pos spawn.Position) int {
	lo, _ := integer(entry, "min_number", 1)
	hi, _ := integer(entry, "max_number", lo)
	lo = min(max(lo, 0), MaxQuantity)
	hi = min(max(hi, 0), MaxQuantity)
	if lo > hi {
		lo, hi = hi, lo
	}

	q := lo + p.rng.IntN(hi-lo+1)
	if pos == spawn.PositionPerimeter {
		q = max(q, 2)
	}
	return q
}

// stampOrigin records the current area size as the authoring size of an
// offset entry that has none, so later rescaling stays anchored.
func (p *Planner) stampOrigin(d *Document, entry *yaml.Node, info *spawn.Info) {
	if p.area == nil || (info.DX == 0 && info.DY == 0) {
		return
	}
	if info.Position != spawn.PositionExact && info.Position != spawn.PositionPerimeter {
		return
	}

	b := p.area.Bounds()
	if info.OriginWidth <= 0 && b.Width() > 0 {
		info.OriginWidth = b.Width()
		setValue(entry, "origional_width", intNode(info.OriginWidth))
		d.markDirty()
	}
	if info.OriginHeight <= 0 && b.Height() > 0 {
		info.OriginHeight = b.Height()
		setValue(entry, "origional_height", intNode(info.OriginHeight))
		d.markDirty()
	}
}

func (p *Planner) candidates(d *Document, entry string, list *yaml.Node, weightKey string, defWeight float64) []*spawn.Candidate {
	var out []*spawn.Candidate
	for _, c := range list.Content {
		if c.Kind != yaml.MappingNode {
			continue
		}
		weight, _ := number(c, weightKey, defWeight)

		if nullName(c) {
			out = append(out, &spawn.Candidate{Name: spawn.NullCandidate, Weight: weight, Null: true})
			continue
		}

		name, tag := str(c, keyName, ""), str(c, keyTag, "")
		cand := p.resolve(name, tag)
		if cand == nil {
			slog.Warn("dropping unresolved candidate",
				"document", d.Label(),
				"entry", entry,
				"name", name,
				"tag", tag)
			continue
		}
		cand.Weight = weight
		out = append(out, cand)
	}
	return out
}

// resolve maps a literal name or a tag to a catalog asset. Names missing
// from the catalog are tried as tags. A tag picks one matching asset.
func (p *Planner) resolve(name, tag string) *spawn.Candidate {
	if tag == "" && name != "" {
		if d, ok := p.catalog.Get(name); ok {
			if !p.filter.assetAllowed(d) {
				return nil
			}
			return &spawn.Candidate{Name: name, Desc: d}
		}
		tag = name
	}
	if tag == "" || !p.filter.tagAllowed(tag) {
		return nil
	}

	var pool []*asset.Descriptor
	for _, d := range p.catalog.WithTag(tag) {
		if p.filter.assetAllowed(d) {
			pool = append(pool, d)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	d := pool[p.rng.IntN(len(pool))]
	return &spawn.Candidate{Name: d.Name, Tag: tag, Desc: d}
}

func priority(m *yaml.Node, pos spawn.Position) int {
	if v, ok := integer(m, keyPriority, 0); ok {
		return v
	}
	return positionRank[pos]
}

func readFlags(m *yaml.Node, info *spawn.Info) {
	info.EnforceSpacing = boolean(m, "enforce_spacing", true)
	info.CheckMinTypeDistance = boolean(m, "check_min_type_distance", true)
	info.CheckMinDistanceAll = boolean(m, "check_min_distance_all", true)
}

type filter struct {
	bannedTags   mapset.Set[string]
	bannedAssets mapset.Set[string]
	allowedTags  mapset.Set[string]
}

func newFilter(o Options) filter {
	return filter{
		bannedTags:   setOf(o.BannedTags),
		bannedAssets: setOf(o.BannedAssets),
		allowedTags:  setOf(o.AllowedTags),
	}
}

func setOf(items []string) mapset.Set[string] {
	s := mapset.New[string]()
	for _, it := range items {
		s.Put(it)
	}
	return s
}

func (f filter) assetAllowed(d *asset.Descriptor) bool {
	if f.bannedAssets.Has(d.Name) {
		return false
	}
	for _, t := range d.Tags() {
		if f.bannedTags.Has(t) {
			return false
		}
	}
	return true
}

func (f filter) tagAllowed(tag string) bool {
	if f.bannedTags.Has(tag) {
		return false
	}
	return f.allowedTags.Size() == 0 || f.allowedTags.Has(tag)
}
