package session

// advanceGuard is the reentrancy lock around a question transition. It is
// only touched with the controller mutex held. Each acquisition gets a new
// generation so a delayed release from an earlier transition cannot free a
// later one.
type advanceGuard struct {
	held bool
	gen  uint64
}

// tryAcquire takes the guard, reporting false if it is already held.
func (g *advanceGuard) tryAcquire() (uint64, bool) {
	if g.held {
		return 0, false
	}
	g.gen++
	g.held = true
	return g.gen, true
}

// release frees the guard if gen is still the current holder.
func (g *advanceGuard) release(gen uint64) {
	if g.held && g.gen == gen {
		g.held = false
	}
}

// reset frees the guard unconditionally and invalidates pending releases.
func (g *advanceGuard) reset() {
	g.held = false
	g.gen++
}
