package health

// severity orders statuses from best to worst for rollups. It differs from
// the Status ordinal order, which is kept for compatibility.
var severity = map[Status]int{
	StatusHealthy:   0,
	StatusNotRun:    1,
	StatusNotExists: 2,
	StatusOffline:   3,
	StatusUnhealthy: 4,
	StatusTimedOut:  5,
	StatusFaulty:    6,
}

// Summary is a rollup of endpoint statuses.
type Summary struct {
	Total  int
	Counts map[Status]int
	Worst  Status
}

// Summarize computes a rollup over endpoints. Endpoints without health count
// as StatusNotRun. An empty set summarizes as StatusHealthy.
func Summarize(endpoints []*Endpoint) Summary {
	s := Summary{
		Counts: make(map[Status]int),
		Worst:  StatusHealthy,
	}

	for _, ep := range endpoints {
		status := StatusNotRun
		if h := ep.Health(); h != nil {
			status = h.Status()
		}

		s.Total++
		s.Counts[status]++
		if severity[status] > severity[s.Worst] {
			s.Worst = status
		}
	}

	return s
}

// Degraded reports whether the worst status is a latency violation only.
func (s Summary) Degraded() bool {
	return s.Worst == StatusUnhealthy
}

// Ready reports whether every endpoint is healthy or not yet checked.
func (s Summary) Ready() bool {
	return severity[s.Worst] <= severity[StatusNotRun]
}
