package sibyl

import "sync"

var (
	globalMu     sync.RWMutex
	globalTracer *Tracer
)

// SetGlobalTracer installs the process-wide tracer used by the Wrap*
// helpers when no tracer is passed explicitly. Set once at startup,
// overwrite on demand; tests reset by passing nil. Prefer passing a
// Tracer explicitly where feasible.
func SetGlobalTracer(t *Tracer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalTracer = t
}

// GlobalTracer returns the installed process-wide tracer, or nil.
func GlobalTracer() *Tracer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalTracer
}
