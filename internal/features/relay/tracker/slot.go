package tracker

// Slot holds at most one pending capture. The slot is armed exactly when
// pending is non-nil.
type Slot struct {
	pending *Credentials
}

// Arm stores the candidate, replacing any previous one. It reports whether
// a previous candidate was overwritten.
func (s *Slot) Arm(candidate Credentials) bool {
	replaced := s.pending != nil
	s.pending = &candidate
	return replaced
}

func (s *Slot) IsArmed() bool {
	return s.pending != nil
}

// Consume empties the slot and returns the candidate it held.
// Callers must check IsArmed first.
func (s *Slot) Consume() Credentials {
	if s.pending == nil {
		panic("tracker: consume called on a disarmed capture slot")
	}
	c := *s.pending
	s.pending = nil
	return c
}

// Disarm drops the pending candidate without granting it.
func (s *Slot) Disarm() bool {
	was := s.pending != nil
	s.pending = nil
	return was
}
