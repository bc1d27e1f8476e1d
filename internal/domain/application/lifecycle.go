package application

import "underwriting-backend/internal/domain/user"

type Action string

const (
	ActionUpdate          Action = "update"
	ActionSubmit          Action = "submit"
	ActionRequestInfo     Action = "request_info"
	ActionMarkReady       Action = "mark_ready"
	ActionVerifyDocuments Action = "verify_documents"
	ActionAnalystApprove  Action = "analyst_approve"
	ActionAnalystReject   Action = "analyst_reject"
	ActionApprove         Action = "approve"
	ActionDecline         Action = "decline"
	ActionPend            Action = "pend"
	ActionPay             Action = "pay"
)

// Transition is one edge of the lifecycle graph. An empty To keeps the
// current status.
type Transition struct {
	Action Action
	Role   user.Role
	From   []Status
	To     Status
}

// Transitions is the complete lifecycle graph; anything not listed here is illegal.
var Transitions = []Transition{
	{ActionUpdate, user.RoleCustomer, []Status{StatusDraft}, ""},
	{ActionSubmit, user.RoleCustomer, []Status{StatusDraft, StatusPendingMoreInfo}, StatusSubmitted},
	{ActionRequestInfo, user.RoleAnalyst, []Status{StatusSubmitted}, StatusPendingMoreInfo},
	{ActionMarkReady, user.RoleAnalyst, []Status{StatusSubmitted, StatusPendingMoreInfo}, ""},
	{ActionVerifyDocuments, user.RoleAnalyst, []Status{StatusSubmitted}, ""},
	{ActionAnalystApprove, user.RoleAnalyst, []Status{StatusSubmitted}, StatusAnalystApproved},
	{ActionAnalystReject, user.RoleAnalyst, []Status{StatusSubmitted, StatusAnalystApproved}, StatusRejected},
	{ActionApprove, user.RoleUnderwriter, []Status{StatusAnalystApproved, StatusUnderReview}, StatusApproved},
	{ActionDecline, user.RoleUnderwriter, []Status{StatusAnalystApproved, StatusUnderReview}, StatusDeclined},
	{ActionPend, user.RoleUnderwriter, []Status{StatusAnalystApproved}, StatusUnderReview},
	{ActionPay, user.RoleCustomer, []Status{StatusApproved}, ""},
}

// Lookup returns the transition registered for action.
func Lookup(action Action) (Transition, bool) {
	for _, t := range Transitions {
		if t.Action == action {
			return t, true
		}
	}
	return Transition{}, false
}

func (t Transition) Allows(from Status) bool {
	for _, s := range t.From {
		if s == from {
			return true
		}
	}
	return false
}

// Target resolves the status after applying t to from.
func (t Transition) Target(from Status) Status {
	if t.To == "" {
		return from
	}
	return t.To
}

// CanTransition reports whether the graph contains an edge from -> to.
func CanTransition(from, to Status) bool {
	for _, t := range Transitions {
		if t.Allows(from) && t.Target(from) == to {
			return true
		}
	}
	return false
}
