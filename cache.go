package gosymdiff

// ============================================================
// Evaluator: memoized evaluation
// ============================================================

// Evaluator evaluates nodes and remembers, per node ID, the last binding
// set used and the value it produced. The table is a side table: nodes stay
// immutable and an Evaluator can be dropped, reset or disabled without
// touching the graph.
//
// An Evaluator is not safe for concurrent use. Use one per goroutine.
type Evaluator struct {
	entries  map[uint64]cacheEntry
	disabled bool
	current  *snapshot
	stats    CacheStats
}

// snapshot is a private copy of a caller's bindings. Entries created under
// the same top-level call share one snapshot.
type snapshot struct{ vars Bindings }

type cacheEntry struct {
	snap  *snapshot
	value float64
}

// CacheStats counts cache lookups made by an Evaluator.
type CacheStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

type EvaluatorOption func(*Evaluator)

// WithCacheDisabled makes every Eval behave as if NoCache were passed.
func WithCacheDisabled() EvaluatorOption {
	return func(e *Evaluator) { e.disabled = true }
}

func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{entries: make(map[uint64]cacheEntry)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type evalOptions struct{ noCache bool }

type EvalOption func(*evalOptions)

// NoCache bypasses the cache for one call: nothing is read from or written
// to the table. Use it when bindings are single-use or still being built.
func NoCache() EvalOption {
	return func(o *evalOptions) { o.noCache = true }
}

// Eval evaluates n under b. A node whose cached bindings equal b returns
// its cached value; any other node is recomputed and its entry replaced.
// The result is always identical to n.Eval(b).
func (e *Evaluator) Eval(n *Node, b Bindings, opts ...EvalOption) (float64, error) {
	var o evalOptions
	for _, opt := range opts {
		opt(&o)
	}
	if e.disabled || o.noCache {
		return Eval(n, b)
	}
	if e.current == nil || !e.current.vars.Equal(b) {
		e.current = &snapshot{vars: b.Clone()}
	}
	return e.eval(n, b)
}

func (e *Evaluator) eval(n *Node, b Bindings) (float64, error) {
	if ent, ok := e.entries[n.id]; ok && (ent.snap == e.current || ent.snap.vars.Equal(b)) {
		e.stats.Hits++
		return ent.value, nil
	}
	e.stats.Misses++
	v, err := n.evalWith(b, e.eval)
	if err != nil {
		return 0, err
	}
	e.entries[n.id] = cacheEntry{snap: e.current, value: v}
	return v, nil
}

// Stats returns the hit and miss counts since construction or the last Reset.
func (e *Evaluator) Stats() CacheStats { return e.stats }

// Len is the number of cached nodes.
func (e *Evaluator) Len() int { return len(e.entries) }

// Reset drops every cached entry and zeroes the stats.
func (e *Evaluator) Reset() {
	clear(e.entries)
	e.current = nil
	e.stats = CacheStats{}
}
