package spawn

import (
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// SpawnIDPrefix starts every generated spawn id.
const SpawnIDPrefix = "spn-"

// DeriveSeed mixes a base seed with labels into a PCG seed pair. The same
// inputs always give the same pair.
func DeriveSeed(seed uint64, labels ...string) (uint64, uint64) {
	h, err := blake2b.New(16, nil)
	if err != nil {
		// size 16 without key is always valid
		panic(err)
	}
	h.Write(binary.LittleEndian.AppendUint64(nil, seed))
	for _, l := range labels {
		h.Write([]byte(l))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:])
}

// NewRand returns a PCG stream seeded by DeriveSeed.
func NewRand(seed uint64, labels ...string) *rand.Rand {
	s1, s2 := DeriveSeed(seed, labels...)
	return rand.New(rand.NewPCG(s1, s2))
}

// NewSpawnID returns a stable id for the entry at index of source.
// salt is bumped by callers on collision.
func NewSpawnID(source string, index, salt int) string {
	key := source + "#" + strconv.Itoa(index)
	if salt > 0 {
		key += "#" + strconv.Itoa(salt)
	}
	sum := blake2b.Sum256([]byte(key))
	return SpawnIDPrefix + hex.EncodeToString(sum[:6])
}
