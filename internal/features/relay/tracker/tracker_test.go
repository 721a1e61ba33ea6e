package tracker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = Credentials{Token: "default-token", ChatID: "default-chat"}

func TestRegistryCountsPerAddress(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, 1, r.RecordAttempt("10.0.0.1"))
	assert.Equal(t, 2, r.RecordAttempt("10.0.0.1"))
	assert.Equal(t, 1, r.RecordAttempt("10.0.0.2"))
	assert.Equal(t, 3, r.RecordAttempt("10.0.0.1"))

	assert.Equal(t, map[string]int{"10.0.0.1": 3, "10.0.0.2": 1}, r.GetAll())

	r.ResetOne("10.0.0.1")
	assert.Equal(t, 0, r.Get("10.0.0.1"))
	r.ResetOne("never-seen")
	assert.Equal(t, 1, r.Len())

	r.ResetAll()
	assert.Empty(t, r.GetAll())
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.RecordAttempt("a")

	snap := r.GetAll()
	snap["a"] = 42

	assert.Equal(t, 1, r.Get("a"))
}

func TestSlotArmConsume(t *testing.T) {
	var s Slot
	assert.False(t, s.IsArmed())

	assert.False(t, s.Arm(Credentials{Token: "T1", ChatID: "C1"}))
	assert.True(t, s.Arm(Credentials{Token: "T2", ChatID: "C2"}))
	assert.True(t, s.IsArmed())

	got := s.Consume()
	assert.Equal(t, Credentials{Token: "T2", ChatID: "C2"}, got)
	assert.False(t, s.IsArmed())

	assert.Panics(t, func() { s.Consume() })
}

func TestSlotDisarm(t *testing.T) {
	var s Slot
	assert.False(t, s.Disarm())

	s.Arm(Credentials{Token: "T", ChatID: "C"})
	assert.True(t, s.Disarm())
	assert.False(t, s.IsArmed())
}

func TestCaptureThenForwardWithGrant(t *testing.T) {
	tr := New(defaults)
	tr.Arm(Credentials{Token: "T1", ChatID: "C1"})

	first := tr.Handle("1.2.3.4")
	assert.True(t, first.Captured())
	assert.Equal(t, "1.2.3.4", first.Address)
	assert.False(t, tr.Armed())

	second := tr.Handle("1.2.3.4")
	require.Equal(t, OutcomeForward, second.Kind)
	assert.Equal(t, 2, second.Count)
	assert.Equal(t, Credentials{Token: "T1", ChatID: "C1"}, second.Credentials)
	assert.True(t, second.Redirected)
}

func TestForwardWithDefaultsWhenNotArmed(t *testing.T) {
	tr := New(defaults)

	for want := 1; want <= 3; want++ {
		out := tr.Handle("5.6.7.8")
		assert.Equal(t, OutcomeForward, out.Kind)
		assert.Equal(t, want, out.Count)
		assert.Equal(t, defaults, out.Credentials)
		assert.False(t, out.Redirected)
	}

	_, ok := tr.Grant("5.6.7.8")
	assert.False(t, ok)
}

func TestKnownAddressIsNotCaptured(t *testing.T) {
	tr := New(defaults)
	tr.Handle("9.9.9.9")

	tr.Arm(Credentials{Token: "T", ChatID: "C"})
	out := tr.Handle("9.9.9.9")

	assert.Equal(t, OutcomeForward, out.Kind)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, defaults, out.Credentials)
	assert.True(t, tr.Armed(), "slot must stay armed for the next new address")

	next := tr.Handle("8.8.8.8")
	assert.True(t, next.Captured())
}

func TestResetAddressRestartsCounting(t *testing.T) {
	tr := New(defaults)
	tr.Arm(Credentials{Token: "T", ChatID: "C"})
	tr.Handle("a")
	tr.Handle("a")

	tr.ResetAddress("a")

	assert.Equal(t, 0, tr.Attempts("a"))
	_, ok := tr.Grant("a")
	assert.False(t, ok)

	out := tr.Handle("a")
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, defaults, out.Credentials)
}

func TestResetAllClearsCountersAndGrants(t *testing.T) {
	tr := New(defaults)
	tr.Arm(Credentials{Token: "T", ChatID: "C"})
	tr.Handle("a")
	tr.Handle("b")

	tr.ResetAll()

	assert.Empty(t, tr.Snapshot())
	for _, addr := range []string{"a", "b"} {
		_, ok := tr.Grant(addr)
		assert.False(t, ok, addr)
	}
	assert.Equal(t, Stats{}, tr.Stats())
}

func TestResetAfterCaptureAllowsRecapture(t *testing.T) {
	tr := New(defaults)
	tr.Arm(Credentials{Token: "T1", ChatID: "C1"})
	require.True(t, tr.Handle("a").Captured())

	tr.ResetAddress("a")
	tr.Arm(Credentials{Token: "T2", ChatID: "C2"})
	require.True(t, tr.Handle("a").Captured())

	g, ok := tr.Grant("a")
	require.True(t, ok)
	assert.Equal(t, "T2", g.Token)
}

func TestConcurrentFirstTimeAddressesCaptureOnce(t *testing.T) {
	for round := 0; round < 50; round++ {
		tr := New(defaults)
		tr.Arm(Credentials{Token: "T", ChatID: "C"})

		const n = 16
		outcomes := make([]Outcome, n)
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				outcomes[i] = tr.Handle(string(rune('a' + i)))
			}(i)
		}
		close(start)
		wg.Wait()

		captured := 0
		for _, o := range outcomes {
			if o.Captured() {
				captured++
				continue
			}
			assert.Equal(t, defaults, o.Credentials)
			assert.Equal(t, 1, o.Count)
		}
		assert.Equal(t, 1, captured)
		assert.Equal(t, 1, tr.Stats().Grants)
	}
}

func TestConcurrentCountingIsExact(t *testing.T) {
	tr := New(defaults)

	const n = 200
	seen := make([]bool, n+1)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := tr.Handle("same")
			mu.Lock()
			seen[out.Count] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, n, tr.Attempts("same"))
	for c := 1; c <= n; c++ {
		assert.True(t, seen[c], "count %d never observed", c)
	}
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "captured", OutcomeCaptured.String())
	assert.Equal(t, "forwarded", OutcomeForward.String())
}

func TestObserveSeesStatesInCommitOrder(t *testing.T) {
	tr := New(defaults)
	var seen []Stats
	tr.Observe(func(st Stats) { seen = append(seen, st) })
	require.Equal(t, []Stats{{}}, seen)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Handle(fmt.Sprintf("10.1.0.%d", i))
		}(i)
	}
	wg.Wait()

	require.Len(t, seen, n+1)
	for i, st := range seen {
		assert.Equal(t, i, st.Addresses)
	}
	assert.Equal(t, tr.Stats(), seen[len(seen)-1])

	tr.Arm(Credentials{Token: "x", ChatID: "y"})
	assert.True(t, seen[len(seen)-1].Armed)
	tr.Handle("10.2.0.1")
	assert.Equal(t, Stats{Addresses: n + 1, Grants: 1}, seen[len(seen)-1])
	tr.ResetAll()
	assert.Equal(t, Stats{}, seen[len(seen)-1])
}
