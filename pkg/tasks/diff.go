package tasks

import "strings"

type changeKind int

const (
	changeUnassigned changeKind = iota
	changeAssigned
	changeStatus
)

type change struct {
	kind   changeKind
	userID string
}

// diff lists the notifiable changes between before and after. IDs and
// statuses are compared by normalized value, so "Bob" and " bob " are the
// same assignee.
func diff(before, after *Task) []change {
	var out []change
	oldAssignee, newAssignee := deref(before.AssignedTo), deref(after.AssignedTo)
	if normalize(oldAssignee) != normalize(newAssignee) {
		if oldAssignee != "" {
			out = append(out, change{kind: changeUnassigned, userID: oldAssignee})
		}
		if newAssignee != "" {
			out = append(out, change{kind: changeAssigned, userID: newAssignee})
		}
	}
	if normalize(string(before.Status)) != normalize(string(after.Status)) {
		out = append(out, change{kind: changeStatus})
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
