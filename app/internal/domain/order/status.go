package order

import "strings"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusDelivered Status = "DELIVERED"
)

// transitions lists the legal successors of each status. Terminal statuses
// have none.
var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusDelivered},
	StatusRejected:  {},
	StatusDelivered: {},
}

var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusDelivered}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}
