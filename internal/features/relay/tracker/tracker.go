package tracker

import "sync"

// OutcomeKind tells the caller what to do with an inbound message.
type OutcomeKind int

const (
	// OutcomeForward means the message must be delivered with Outcome.Credentials.
	OutcomeForward OutcomeKind = iota
	// OutcomeCaptured means the address was just bound to the pending capture
	// and nothing is delivered for this message.
	OutcomeCaptured
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCaptured:
		return "captured"
	default:
		return "forwarded"
	}
}

// Outcome is the result of handling one inbound message.
type Outcome struct {
	Kind        OutcomeKind
	Address     string
	Count       int
	Credentials Credentials
	// Redirected is true when Credentials come from a grant rather than the defaults.
	Redirected bool
}

func (o Outcome) Captured() bool {
	return o.Kind == OutcomeCaptured
}

// Tracker owns the registry, the ledger and the capture slot behind a single
// mutex. Counting and the capture decision happen in one critical section so
// two first-time addresses can never both claim the same capture.
type Tracker struct {
	mu       sync.Mutex
	registry *Registry
	ledger   *Ledger
	slot     Slot
	defaults Credentials
	observe  func(Stats)
}

func New(defaults Credentials) *Tracker {
	return &Tracker{
		registry: NewRegistry(),
		ledger:   NewLedger(),
		defaults: defaults,
	}
}

// Observe registers fn to receive Stats after every state change. fn runs
// under the tracker lock, so successive calls see states in commit order; it
// must not block or call back into the tracker.
func (t *Tracker) Observe(fn func(Stats)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observe = fn
	t.notifyLocked()
}

func (t *Tracker) notifyLocked() {
	if t.observe != nil {
		t.observe(t.statsLocked())
	}
}

// Handle records an attempt for address and resolves it.
func (t *Tracker) Handle(address string) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := t.registry.RecordAttempt(address)
	out := t.resolveLocked(address, count)
	t.notifyLocked()
	return out
}

func (t *Tracker) resolveLocked(address string, count int) Outcome {
	if t.slot.IsArmed() && count == 1 {
		if _, granted := t.ledger.GetGrant(address); !granted {
			t.ledger.SetGrant(address, t.slot.Consume())
			return Outcome{Kind: OutcomeCaptured, Address: address, Count: count}
		}
	}

	creds, redirected := t.ledger.GetGrant(address)
	if !redirected {
		creds = t.defaults
	}
	return Outcome{
		Kind:        OutcomeForward,
		Address:     address,
		Count:       count,
		Credentials: creds,
		Redirected:  redirected,
	}
}

// Snapshot returns a copy of all attempt counters.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.GetAll()
}

// Attempts returns the counter for one address.
func (t *Tracker) Attempts(address string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Get(address)
}

// Grant returns the captured credentials of address, if any.
func (t *Tracker) Grant(address string) (Credentials, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.GetGrant(address)
}

// ResetAll clears every counter and every grant. The pending capture is kept.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.registry.ResetAll()
	t.ledger.ResetAll()
	t.notifyLocked()
}

// ResetAddress clears the counter and the grant of one address.
func (t *Tracker) ResetAddress(address string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.registry.ResetOne(address)
	t.ledger.ResetOne(address)
	t.notifyLocked()
}

// Arm sets the pending capture. Last write wins; the return value reports
// whether an earlier candidate was overwritten.
func (t *Tracker) Arm(candidate Credentials) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	replaced := t.slot.Arm(candidate)
	t.notifyLocked()
	return replaced
}

func (t *Tracker) Disarm() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.slot.Disarm()
	t.notifyLocked()
	return was
}

func (t *Tracker) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slot.IsArmed()
}

// Stats is a point-in-time view used by metrics and the capture status endpoint.
type Stats struct {
	Addresses int
	Grants    int
	Armed     bool
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statsLocked()
}

func (t *Tracker) statsLocked() Stats {
	return Stats{
		Addresses: t.registry.Len(),
		Grants:    t.ledger.Len(),
		Armed:     t.slot.IsArmed(),
	}
}
