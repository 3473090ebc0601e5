package shop

import "fmt"

// Violation describes one broken invariant observed under the lock.
type Violation struct {
	Rule   string
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// CheckInvariants evaluates the room's invariants under the lock and
// returns every violation found. It never panics and never mutates; in
// the safety-disabled configuration violations are the expected signal of
// the experiment, so callers report them and keep the run going.
func (s *State) CheckInvariants() []Violation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var violations []Violation
	qLen := len(s.queue)
	if qLen < 0 || qLen > s.capacity {
		violations = append(violations, Violation{
			Rule:   "queue-bounds",
			Detail: fmt.Sprintf("queue length %d outside [0, %d]", qLen, s.capacity),
		})
	}
	if s.arrived < s.served+s.lost {
		violations = append(violations, Violation{
			Rule:   "accounting",
			Detail: fmt.Sprintf("arrived %d < served %d + lost %d", s.arrived, s.served, s.lost),
		})
	}
	seen := make(map[int]bool, qLen)
	for _, t := range s.queue {
		if t == nil {
			continue
		}
		if seen[t.ID] {
			violations = append(violations, Violation{
				Rule:   "ticket-unique",
				Detail: fmt.Sprintf("ticket %d queued more than once", t.ID),
			})
		}
		seen[t.ID] = true
	}
	return violations
}
