package domain

import (
	"fmt"
	"strings"
)

// Role is the canonical role of an identity. PENDING users have registered
// but have not been approved; they cannot log in.
type Role string

const (
	RoleBoss    Role = "BOSS"
	RoleUser    Role = "USER"
	RolePending Role = "PENDING"
)

// roleAliases is the one mapping table between store spellings and canonical
// roles. Legacy rows used lowercase values and "admin" for the boss role;
// everything entering the domain goes through ParseRole exactly once.
var roleAliases = map[string]Role{
	"boss":    RoleBoss,
	"admin":   RoleBoss,
	"user":    RoleUser,
	"pending": RolePending,
}

func ParseRole(s string) (Role, error) {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityLow:
		return PriorityLow, nil
	}
	return "", fmt.Errorf("unknown task priority %q", s)
}

// FilterAll is the sentinel accepted by status/priority filters.
const FilterAll = "ALL"
