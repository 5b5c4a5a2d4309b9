package ui

// FrameScheduler holds the controller's next-frame callback until the
// program's next frame tick.
type FrameScheduler struct {
	next func()
}

func NewFrameScheduler() *FrameScheduler { return &FrameScheduler{} }

// RequestFrame queues cb for the next tick, replacing any queued callback.
func (s *FrameScheduler) RequestFrame(cb func()) { s.next = cb }

func (s *FrameScheduler) pending() bool { return s.next != nil }

func (s *FrameScheduler) take() func() {
	cb := s.next
	s.next = nil
	return cb
}
