package policy

import (
	"strings"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

// Criteria are the user-supplied task filters. Empty Search matches all
// tasks; Status and Priority accept the "ALL" sentinel (or empty) to match
// every value. All criteria are combined with AND.
type Criteria struct {
	Search   string
	Status   string
	Priority string
}

// Matches applies the criteria to a single task.
func (c Criteria) Matches(t domain.Task) bool {
	if c.Search != "" {
		term := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	if c.Status != "" && c.Status != domain.FilterAll && domain.Status(c.Status) != t.Status {
		return false
	}
	if c.Priority != "" && c.Priority != domain.FilterAll && domain.Priority(c.Priority) != t.Priority {
		return false
	}
	return true
}

// VisibleTasks restricts tasks to those the user may view, then applies the
// criteria. Input order is preserved; callers sort before filtering.
func VisibleTasks(u domain.User, tasks []domain.Task, c Criteria) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !CanView(u, t) {
			continue
		}
		if !c.Matches(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
