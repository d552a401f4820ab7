package services

import "context"

// requestKind separates advisory requests that replace each other.
type requestKind int

const (
	planRequest requestKind = iota
	adviceRequest
	suggestionRequest
)

func (k requestKind) String() string {
	switch k {
	case planRequest:
		return "plans"
	case adviceRequest:
		return "advice"
	case suggestionRequest:
		return "suggestions"
	}
	return "unknown"
}

type request struct {
	seq    uint64
	cancel context.CancelFunc
}

// begin starts an advisory request of the given kind. The request it
// replaces, if any, is cancelled and its result will be discarded. The
// returned context also ends when the service closes.
func (s *budgetService) begin(parent context.Context, kind requestKind) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.baseCtx, cancel)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.requests[kind]; ok {
		prev.cancel()
		s.log.Debugw("Superseding advisory request", "kind", kind, "seq", prev.seq)
	}
	s.seq++
	s.requests[kind] = &request{
		seq: s.seq,
		cancel: func() {
			stop()
			cancel()
		},
	}
	return ctx, s.seq
}

// currentLocked reports whether seq is still the latest request of its kind.
// s.mu must be held.
func (s *budgetService) currentLocked(kind requestKind, seq uint64) bool {
	r, ok := s.requests[kind]
	return ok && r.seq == seq
}

// endLocked releases a request that is still current. s.mu must be held.
func (s *budgetService) endLocked(kind requestKind, seq uint64) {
	if r, ok := s.requests[kind]; ok && r.seq == seq {
		r.cancel()
		delete(s.requests, kind)
	}
}

// finish releases a request whatever became of it.
func (s *budgetService) finish(kind requestKind, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked(kind, seq)
}

// cancelAll abandons every in-flight request.
func (s *budgetService) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind, r := range s.requests {
		r.cancel()
		delete(s.requests, kind)
	}
}
