package scheduler

// ExportedTick exposes the private tick method for external tests.
func (s *Scheduler) ExportedTick() {
	s.tick()
}
