package model

import "fmt"

// SchedPolicy is a Linux scheduling policy number
type SchedPolicy int64

func (p SchedPolicy) String() string {
	switch p {
	case 0:
		return "SCHED_OTHER"
	case 1:
		return "SCHED_FIFO"
	case 2:
		return "SCHED_RR"
	case 3:
		return "SCHED_BATCH"
	case 5:
		return "SCHED_IDLE"
	default:
		return fmt.Sprintf("policy(%d)", int64(p))
	}
}

// TaskPriority is the scheduling setup of a process or thread
type TaskPriority struct {
	ID         int64 // pid or tid
	Name       string
	Policy     SchedPolicy
	Priority   int64
	Nice       int64
	RTPriority int64
}

// TaskPriorityFrom reads a processstats or threadstats record. idField
// selects "pid" or "tid".
func TaskPriorityFrom(r Record, idField string) (TaskPriority, error) {
	var (
		t   TaskPriority
		err error
	)
	if t.ID, err = r.Int(idField); err != nil {
		return t, err
	}
	if t.Name, err = r.Text("name"); err != nil {
		return t, err
	}
	policy, err := r.Int("policy")
	if err != nil {
		return t, err
	}
	t.Policy = SchedPolicy(policy)
	if t.Priority, err = r.Int("priority"); err != nil {
		return t, err
	}
	if t.Nice, err = r.Int("nice"); err != nil {
		return t, err
	}
	if t.RTPriority, err = r.Int("rtpriority"); err != nil {
		return t, err
	}
	return t, nil
}
