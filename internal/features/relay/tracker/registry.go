package tracker

// Registry counts inbound messages per client address.
// It is not safe for concurrent use on its own; Tracker serializes access.
type Registry struct {
	counts map[string]int
}

func NewRegistry() *Registry {
	return &Registry{counts: make(map[string]int)}
}

// RecordAttempt increments the counter for address and returns the new value.
func (r *Registry) RecordAttempt(address string) int {
	r.counts[address]++
	return r.counts[address]
}

// Get returns the current counter for address, 0 when it was never seen.
func (r *Registry) Get(address string) int {
	return r.counts[address]
}

// GetAll returns a copy of every counter.
func (r *Registry) GetAll() map[string]int {
	out := make(map[string]int, len(r.counts))
	for addr, n := range r.counts {
		out[addr] = n
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.counts)
}

func (r *Registry) ResetAll() {
	r.counts = make(map[string]int)
}

func (r *Registry) ResetOne(address string) {
	delete(r.counts, address)
}
