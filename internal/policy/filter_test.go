package policy_test

import (
	"testing"

	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/policy"
)

func fixtureTasks() []domain.Task {
	return []domain.Task{
		{ID: "t1", Title: "Patrol Sector A", CreatorID: "u1", Status: domain.StatusPending, Priority: domain.PriorityHigh},
		{ID: "t2", Title: "Write report", Description: "Summary of the night patrol", CreatorID: "u1", Status: domain.StatusCompleted, Priority: domain.PriorityLow},
		{ID: "t3", Title: "Check cameras", CreatorID: "u2", AssigneeIDs: []string{"u1"}, Status: domain.StatusInProgress, Priority: domain.PriorityMedium},
		{ID: "t4", Title: "Inventory", CreatorID: "u2", Status: domain.StatusPending, Priority: domain.PriorityMedium},
	}
}

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSearchMatchesTitleAndDescription(t *testing.T) {
	user := domain.User{ID: "u1", Role: domain.RoleUser}
	got := policy.VisibleTasks(user, fixtureTasks(), policy.Criteria{Search: "PATROL"})
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" {
		t.Fatalf("expected t1,t2 got %v", ids(got))
	}
}

func TestAllSentinelsAreIdentity(t *testing.T) {
	boss := domain.User{ID: "b1", Role: domain.RoleBoss}
	tasks := fixtureTasks()
	got := policy.VisibleTasks(boss, tasks, policy.Criteria{Search: "", Status: domain.FilterAll, Priority: domain.FilterAll})
	if len(got) != len(tasks) {
		t.Fatalf("expected all %d tasks, got %v", len(tasks), ids(got))
	}
	for i := range tasks {
		if got[i].ID != tasks[i].ID {
			t.Fatalf("order changed: %v", ids(got))
		}
	}
}

func TestCriteriaCombineWithAnd(t *testing.T) {
	boss := domain.User{ID: "b1", Role: domain.RoleBoss}
	got := policy.VisibleTasks(boss, fixtureTasks(), policy.Criteria{Status: string(domain.StatusPending), Priority: string(domain.PriorityMedium)})
	if len(got) != 1 || got[0].ID != "t4" {
		t.Fatalf("expected only t4, got %v", ids(got))
	}
}

func TestVisibilityAppliedBeforeCriteria(t *testing.T) {
	user := domain.User{ID: "u1", Role: domain.RoleUser}
	// t4 matches the criteria but is not visible to u1.
	got := policy.VisibleTasks(user, fixtureTasks(), policy.Criteria{Status: string(domain.StatusPending)})
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("expected only t1, got %v", ids(got))
	}
}
