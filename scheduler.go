package warehouse

// System is a single unit of scheduled work: a function over a Storage,
// run in registration order by a Scheduler.
type System func(Storage) error

// Scheduler runs a fixed, ordered list of Systems against a Storage each
// tick, stopping at the first error.
type Scheduler struct {
	systems []System
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Add appends sys to the run order.
func (s *Scheduler) Add(sys System) {
	s.systems = append(s.systems, sys)
}

// Run executes every System against sto in registration order, stopping
// and returning a SchedulerError wrapping the first error encountered.
func (s *Scheduler) Run(sto Storage) error {
	for _, sys := range s.systems {
		if err := sys(sto); err != nil {
			return SchedulerError{Err: err}
		}
	}
	return nil
}
