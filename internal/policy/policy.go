// Package policy holds the single approval/admin predicate shared by the
// auth service at login time, the client route guard at render time and the
// HTTP middleware at request time.
package policy

import "auth-dashboard/internal/model"

// PendingApprovalReason is the redirect reason shown on the login view when
// a signed-in account has not been approved yet.
const PendingApprovalReason = "Your account is pending admin approval. Please wait for approval before accessing the dashboard."

// Verdict is the outcome of an access check.
type Verdict int

const (
	// Allowed admits the user.
	Allowed Verdict = iota
	// Unauthenticated means there is no user.
	Unauthenticated
	// PendingApproval means the user exists but is not approved.
	PendingApproval
	// Forbidden means the user is approved but lacks the admin role.
	Forbidden
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case Unauthenticated:
		return "unauthenticated"
	case PendingApproval:
		return "pending_approval"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// CheckApproved admits any approved user.
func CheckApproved(u *model.User) Verdict {
	if u == nil {
		return Unauthenticated
	}
	if !u.IsApproved {
		return PendingApproval
	}
	return Allowed
}

// CheckAdmin admits approved administrators.
func CheckAdmin(u *model.User) Verdict {
	if v := CheckApproved(u); v != Allowed {
		return v
	}
	if !u.IsAdmin {
		return Forbidden
	}
	return Allowed
}
