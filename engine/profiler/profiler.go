// Package profiler records nested timing scopes into a fixed-size ring and
// exports them as a speedscope capture or a per-scope summary.
//
// Until Init is called every Start returns a no-op, so instrumented code
// costs one atomic load in normal runs.
package profiler

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Init enables recording with room for capacity events (two per scope).
// Calling it again discards what was recorded.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 20
	}
	ring.init(capacity)
}

// Enabled reports whether Init has been called since the last Reset.
func Enabled() bool { return ring.ready.Load() }

// Reset stops recording and drops all events and scope names.
func Reset() {
	ring.ready.Store(false)
	ring.write.Store(0)
	muNames.Lock()
	names = nil
	index = map[string]int{}
	muNames.Unlock()
}

// Start opens a scope and returns the func that closes it:
//
//	defer profiler.Start("shader.compile")()
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := intern(name)
	begin := time.Now().UnixNano()
	ring.push(event{at: begin, scope: id, open: true})
	return func() {
		end := time.Now().UnixNano()
		if end < begin {
			end = begin
		}
		ring.push(event{at: end, scope: id})
	}
}

// Stat aggregates every completed occurrence of one scope.
type Stat struct {
	Name  string
	Count int
	Total time.Duration
	Max   time.Duration
}

// Mean is Total / Count.
func (s Stat) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Summary folds the recorded events into one Stat per scope, slowest total
// first. Scopes still open, or whose open fell out of the ring, are not
// counted.
func Summary() []Stat {
	evs := ring.snapshot()
	scopes := snapshotNames()

	byID := map[int]*Stat{}
	var stack []event
	for _, e := range evs {
		if e.open {
			stack = append(stack, e)
			continue
		}
		if len(stack) == 0 || stack[len(stack)-1].scope != e.scope {
			continue
		}
		open := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		st, ok := byID[e.scope]
		if !ok {
			st = &Stat{Name: scopes[e.scope]}
			byID[e.scope] = st
		}
		d := time.Duration(e.at - open.at)
		st.Count++
		st.Total += d
		if d > st.Max {
			st.Max = d
		}
	}

	out := make([]Stat, 0, len(byID))
	for _, st := range byID {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func MemoryUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func MemoryAllocs() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Mallocs
}

// ---------- event ring ----------

type event struct {
	at    int64 // unix ns
	scope int
	open  bool
}

type eventRing struct {
	ready atomic.Bool
	cap   uint64
	write atomic.Uint64
	evs   []event
}

func (r *eventRing) init(capacity int) {
	r.ready.Store(false)
	r.cap = uint64(capacity)
	r.evs = make([]event, r.cap)
	r.write.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.write.Add(1) - 1
	r.evs[i%r.cap] = e
}

// snapshot returns the retained events in write order.
func (r *eventRing) snapshot() []event {
	n := r.write.Load()
	if n == 0 || r.cap == 0 {
		return nil
	}
	start := uint64(0)
	if n > r.cap {
		start = n - r.cap
	}
	out := make([]event, 0, n-start)
	for k := start; k < n; k++ {
		out = append(out, r.evs[k%r.cap])
	}
	return out
}

var ring eventRing

// ---------- scope names ----------

var (
	muNames sync.Mutex
	names   []string
	index   = map[string]int{}
)

func intern(name string) int {
	muNames.Lock()
	defer muNames.Unlock()
	if id, ok := index[name]; ok {
		return id
	}
	id := len(names)
	index[name] = id
	names = append(names, name)
	return id
}

func snapshotNames() []string {
	muNames.Lock()
	defer muNames.Unlock()
	return append([]string(nil), names...)
}
