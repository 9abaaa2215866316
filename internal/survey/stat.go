package survey

import "sync"

// Stat is a snapshot of the survey counters
type Stat struct {
	Organizations uint
	Repositories  uint
	Failures      uint
}

type analysisStat struct {
	mu            sync.Mutex
	organizations uint
	repositories  uint
	failures      uint
}

func (as *analysisStat) IncreaseOrganization(value uint) {
	as.mu.Lock()
	as.organizations += value
	as.mu.Unlock()
}

func (as *analysisStat) IncreaseRepositories(value uint) {
	as.mu.Lock()
	as.repositories += value
	as.mu.Unlock()
}

func (as *analysisStat) IncreaseFailures(value uint) {
	as.mu.Lock()
	as.failures += value
	as.mu.Unlock()
}

func (as *analysisStat) reset() {
	as.mu.Lock()
	as.organizations, as.repositories, as.failures = 0, 0, 0
	as.mu.Unlock()
}

func (as *analysisStat) snapshot() Stat {
	as.mu.Lock()
	defer as.mu.Unlock()
	return Stat{
		Organizations: as.organizations,
		Repositories:  as.repositories,
		Failures:      as.failures,
	}
}
