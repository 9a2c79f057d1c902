package core

import "sync"

// LocalState is the local instance's own mastership flags (§3:
// isMaster, isMasterEligible), mutated by the check loop's election rule
// and by explicit Promote/Demote calls, and read by the hello loop when
// building each outgoing hello.
type LocalState struct {
	mu               sync.RWMutex
	isMaster         bool
	isMasterEligible bool
}

// NewLocalState returns state with isMaster false and the given initial
// eligibility (true by default, per the public API contract).
func NewLocalState(eligible bool) *LocalState {
	return &LocalState{isMasterEligible: eligible}
}

func (s *LocalState) IsMaster() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isMaster
}

func (s *LocalState) SetMaster(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isMaster = v
}

func (s *LocalState) IsEligible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isMasterEligible
}

func (s *LocalState) SetEligible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isMasterEligible = v
}
