package bridge

import "time"

// Scheduler keeps polls on a fixed-phase grid. It holds one absolute
// next-due timestamp and advances it by the interval each cycle, so cycle
// processing time does not accumulate as drift. If the schedule falls more
// than one interval behind wall clock, it resyncs to now instead of
// bursting to catch up.
type Scheduler struct {
	interval time.Duration
	next     time.Time
}

// NewScheduler creates a scheduler whose first poll is due at now.
func NewScheduler(now time.Time, interval time.Duration) *Scheduler {
	return &Scheduler{interval: interval, next: now}
}

// NextSleep returns how long to sleep before the next poll and advances the
// schedule by one interval.
func (s *Scheduler) NextSleep(now time.Time) time.Duration {
	sleep := s.next.Sub(now)
	if sleep < -s.interval {
		// More than one interval behind: resync rather than burst.
		s.next = now
		sleep = 0
	}
	s.next = s.next.Add(s.interval)
	if sleep < 0 {
		return 0
	}
	return sleep
}

// Push moves the schedule to delay after now. Used after backoff sleeps so
// the next poll does not fire immediately on top of the retry.
func (s *Scheduler) Push(now time.Time, delay time.Duration) {
	s.next = now.Add(delay)
}
