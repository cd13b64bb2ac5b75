package avatar

// Chain walks a candidate list under the consumer contract: try candidates
// in order, advance on load failure, report exhaustion so the caller can
// render the deterministic fallback. Reset restarts the attempt count, which
// must happen whenever the source value changes.
type Chain struct {
	source     string
	candidates []string
	idx        int
}

func NewChain(raw string) *Chain {
	return &Chain{source: raw, candidates: Resolve(raw)}
}

// Current returns the candidate to try, or false when the chain is
// exhausted (or never had candidates).
func (c *Chain) Current() (string, bool) {
	if c.idx >= len(c.candidates) {
		return "", false
	}
	return c.candidates[c.idx], true
}

// Advance moves past a failed candidate.
func (c *Chain) Advance() {
	if c.idx < len(c.candidates) {
		c.idx++
	}
}

func (c *Chain) Exhausted() bool {
	return c.idx >= len(c.candidates)
}

// Reset re-resolves when the source changed, otherwise just restarts the
// walk from the first candidate.
func (c *Chain) Reset(raw string) {
	if raw != c.source {
		c.source = raw
		c.candidates = Resolve(raw)
	}
	c.idx = 0
}
