package application

import "time"

// HealthStatus is the liveness report served by the health endpoint.
type HealthStatus struct {
	Status        string
	Store         string
	Uptime        time.Duration
	MountedBoards int
}

// HealthService reports process liveness. It does not probe the preference
// store; a store outage surfaces on the next profile mount instead.
type HealthService struct {
	store   string
	boards  *BoardRegistry
	started time.Time
	now     func() time.Time
}

// NewHealthService creates a HealthService for the named store backend.
func NewHealthService(store string, boards *BoardRegistry) *HealthService {
	return &HealthService{
		store:   store,
		boards:  boards,
		started: time.Now(),
		now:     time.Now,
	}
}

// Status returns the current health report.
func (s *HealthService) Status() HealthStatus {
	return HealthStatus{
		Status:        "ok",
		Store:         s.store,
		Uptime:        s.now().Sub(s.started).Round(time.Second),
		MountedBoards: s.boards.Len(),
	}
}
