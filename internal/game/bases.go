package game

import "fmt"

// MaxBases is the largest base count a side may play with.
const MaxBases = 8

// Bases holds at most one runner per base. Index is the base number;
// slot 0 is home and never holds a runner.
type Bases struct {
	num     int
	runners [MaxBases]string
}

// NewBases returns empty bases for a diamond of num bases including home.
func NewBases(num int) Bases {
	if num < 2 || num > MaxBases {
		panic(fmt.Sprintf("game: base count %d outside 2..%d", num, MaxBases))
	}
	return Bases{num: num}
}

// Num is the base count including home.
func (b *Bases) Num() int { return b.num }

func (b *Bases) inRange(base int) bool { return base >= 1 && base < b.num }

// Runner returns the runner on base.
func (b *Bases) Runner(base int) (string, bool) {
	if !b.inRange(base) || b.runners[base] == "" {
		return "", false
	}
	return b.runners[base], true
}

func (b *Bases) Occupied(base int) bool {
	_, ok := b.Runner(base)
	return ok
}

// Open reports whether a runner may move to base. Home is always open.
func (b *Bases) Open(base int) bool {
	return base >= b.num || !b.Occupied(base)
}

func (b *Bases) Count() int {
	n := 0
	for base := 1; base < b.num; base++ {
		if b.runners[base] != "" {
			n++
		}
	}
	return n
}

func (b *Bases) Empty() bool { return b.Count() == 0 }

// Descending lists occupied bases, the runner closest to scoring first.
func (b *Bases) Descending() []int {
	var out []int
	for base := b.num - 1; base >= 1; base-- {
		if b.runners[base] != "" {
			out = append(out, base)
		}
	}
	return out
}

// Place puts id on an empty base. It panics if the base is held, out of
// range, or id is already on another base.
func (b *Bases) Place(base int, id string) {
	if !b.inRange(base) {
		panic(fmt.Sprintf("game: place %s on base %d outside 1..%d", id, base, b.num-1))
	}
	if id == "" {
		panic("game: place empty runner id")
	}
	if cur := b.runners[base]; cur != "" {
		panic(fmt.Sprintf("game: base %d already held by %s, cannot place %s", base, cur, id))
	}
	for other := 1; other < b.num; other++ {
		if b.runners[other] == id {
			panic(fmt.Sprintf("game: runner %s already on base %d", id, other))
		}
	}
	b.runners[base] = id
}

// Move relocates the runner on from to the empty base to.
func (b *Bases) Move(from, to int) {
	id, ok := b.Runner(from)
	if !ok {
		panic(fmt.Sprintf("game: no runner on base %d", from))
	}
	b.runners[from] = ""
	b.Place(to, id)
}

// Remove takes the runner off base and returns its id.
func (b *Bases) Remove(base int) string {
	id, ok := b.Runner(base)
	if !ok {
		panic(fmt.Sprintf("game: no runner on base %d", base))
	}
	b.runners[base] = ""
	return id
}

func (b *Bases) Clear() {
	b.runners = [MaxBases]string{}
}

// Map returns base number to runner id for every occupied base.
func (b *Bases) Map() map[int]string {
	out := make(map[int]string, b.Count())
	for base := 1; base < b.num; base++ {
		if id := b.runners[base]; id != "" {
			out[base] = id
		}
	}
	return out
}
