package checkin

import "time"

type State string

const (
	StateCanCheckin          State = "CAN_CHECKIN"
	StateAlreadyCheckedToday State = "ALREADY_CHECKED_IN_TODAY"
)

// Status is derived from the daily_checkin entries of the ledger.
type Status struct {
	State         State
	CanCheckin    bool
	LastCheckin   *time.Time
	Streak        int
	TotalCheckins int
	Milestones    []Milestone
	NextMilestone *Milestone
}

// Milestone is a streak tier shown to the fan.
type Milestone struct {
	Days  int
	Label string
}

var Milestones = []Milestone{
	{Days: 3, Label: "3+ Day Streak"},
	{Days: 7, Label: "Weekly Champion"},
	{Days: 14, Label: "Fortnight Master"},
	{Days: 30, Label: "Monthly Legend"},
}

// Policy holds check-in reward parameters. A fan follows at most one club,
// so every check-in earns RewardPoints once.
type Policy struct {
	RewardPoints int64
	Location     *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		RewardPoints: 10,
		Location:     time.UTC,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}
