// Package workflow implements the task and cycle state machines and the
// signature-role requirements gating each transition (spec §4.9).
package workflow

import (
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/record"
)

// Default role names a signature's role must match to satisfy a
// transition's requirement, unless the transition allows any role.
const (
	RoleAuthor   = "author"
	RoleReviewer = "reviewer"
	RoleApprover = "approver"
)

type taskEdge struct {
	from, to      record.TaskStatus
	requiredRoles []string // any one of these roles must appear among the record's signatures; nil means any role suffices
}

// taskEdges is the full allowed-transition table for TaskPayload.Status.
// draft is the only state a task can ever be deleted from (spec §4.9);
// deletion isn't a status transition so it isn't listed here.
var taskEdges = []taskEdge{
	{record.TaskDraft, record.TaskReview, []string{RoleAuthor}},
	{record.TaskReview, record.TaskDraft, nil},
	{record.TaskReview, record.TaskReady, []string{RoleReviewer, RoleApprover}},
	{record.TaskReview, record.TaskDiscarded, []string{RoleAuthor}},
	{record.TaskReady, record.TaskActive, nil},
	{record.TaskReady, record.TaskDiscarded, []string{RoleAuthor}},
	{record.TaskActive, record.TaskPaused, nil},
	{record.TaskActive, record.TaskDone, []string{RoleAuthor}},
	{record.TaskPaused, record.TaskActive, nil},
	{record.TaskDone, record.TaskArchived, nil},
	{record.TaskDraft, record.TaskDiscarded, []string{RoleAuthor}},
}

// IsTaskTransitionAllowed reports whether from -> to is a legal task
// transition given the roles present among the mutating record's
// signatures, returning a *ggerr.WorkflowError naming the missing roles
// when it isn't.
func IsTaskTransitionAllowed(from, to record.TaskStatus, signedRoles []string) error {
	for _, e := range taskEdges {
		if e.from != from || e.to != to {
			continue
		}
		if len(e.requiredRoles) == 0 {
			return nil
		}
		if hasAnyRole(signedRoles, e.requiredRoles) {
			return nil
		}
		return &ggerr.WorkflowError{From: string(from), To: string(to), MissingRoles: e.requiredRoles}
	}
	return &ggerr.WorkflowError{From: string(from), To: string(to)}
}

// CanDeleteTask reports whether a task in status may be deleted outright
// (spec §4.9: only draft tasks are ever deleted; every later state must
// go through discarded instead, preserving the audit trail).
func CanDeleteTask(status record.TaskStatus) bool {
	return status == record.TaskDraft
}

type cycleEdge struct {
	from, to      record.CycleStatus
	requiredRoles []string
}

// cycleEdges is the allowed-transition table for CyclePayload.Status.
// Cycles move forward only; there is no paused/discarded branch.
var cycleEdges = []cycleEdge{
	{record.CyclePlanning, record.CycleActive, []string{RoleApprover}},
	{record.CycleActive, record.CycleCompleted, []string{RoleApprover}},
	{record.CycleCompleted, record.CycleArchived, nil},
}

// IsCycleTransitionAllowed reports whether from -> to is a legal cycle
// transition given the signed roles present.
func IsCycleTransitionAllowed(from, to record.CycleStatus, signedRoles []string) error {
	for _, e := range cycleEdges {
		if e.from != from || e.to != to {
			continue
		}
		if len(e.requiredRoles) == 0 || hasAnyRole(signedRoles, e.requiredRoles) {
			return nil
		}
		return &ggerr.WorkflowError{From: string(from), To: string(to), MissingRoles: e.requiredRoles}
	}
	return &ggerr.WorkflowError{From: string(from), To: string(to)}
}

func hasAnyRole(have, want []string) bool {
	set := make(map[string]bool, len(want))
	for _, r := range want {
		set[r] = true
	}
	for _, r := range have {
		if set[r] {
			return true
		}
	}
	return false
}

// SignedRoles extracts the distinct roles present among an envelope's
// signatures, in signature order, for feeding into the transition checks
// above.
func SignedRoles(env record.Envelope) []string {
	seen := make(map[string]bool, len(env.Header.Signatures))
	var roles []string
	for _, sig := range env.Header.Signatures {
		if seen[sig.Role] {
			continue
		}
		seen[sig.Role] = true
		roles = append(roles, sig.Role)
	}
	return roles
}
