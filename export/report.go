package export

import "time"

// Request selects what one run exports. An empty Kinds list means the
// whole catalog; Include holds opt-in action names per type name.
type Request struct {
	Kinds   []string            `json:"kinds,omitempty"`
	Include map[string][]string `json:"include,omitempty"`
}

// Report contains the results of one export run
type Report struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Accounts  int           `json:"accounts"`
	Regions   int           `json:"regions"`
	Documents int           `json:"documents"`
	Batches   int           `json:"batches"`
	Denied    int           `json:"denied,omitempty"`
	Failures  []Failure     `json:"failures,omitempty"`
	Success   bool          `json:"success"`
}

// Failure records one skipped unit of work. A failure with an empty
// Kind covers the whole account.
type Failure struct {
	Kind      string `json:"kind,omitempty"`
	AccountID string `json:"account_id"`
	Region    string `json:"region,omitempty"`
	Error     string `json:"error"`
}

func (r *Report) fail(kind, accountID, region string, err error) {
	r.Failures = append(r.Failures, Failure{
		Kind:      kind,
		AccountID: accountID,
		Region:    region,
		Error:     err.Error(),
	})
}
