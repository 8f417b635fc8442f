package chance

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstract

type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random : default generation method, not replayable
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	// Read 53bit random => [0, 1)
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Float64()
	}

	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG. Every game trial that must be replayed gets one of these.
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// Script replays a fixed list of rolls, then repeats the last one.
// Tests use it to force specific branches of the state machine.
type Script struct {
	Rolls []float64
	pos   int
}

func NewScript(rolls ...float64) *Script {
	return &Script{Rolls: rolls}
}

func (s *Script) Float64() float64 {
	if len(s.Rolls) == 0 {
		return 0
	}
	if s.pos >= len(s.Rolls) {
		return s.Rolls[len(s.Rolls)-1]
	}
	v := s.Rolls[s.pos]
	s.pos++
	return v
}

// Used reports how many scripted rolls have been consumed.
func (s *Script) Used() int { return s.pos }
