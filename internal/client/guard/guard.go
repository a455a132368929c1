// Package guard decides whether the current session may see a screen and
// keeps the navigation history of the terminal front end.
package guard

import "strconv"

// Session is the part of the session store the guard reads.
type Session interface {
	Loading() bool
	IsAuthenticated() bool
	IsAdmin() bool
}

type Requirement int

const (
	Public Requirement = iota
	Authenticated
	Admin
)

type State int

const (
	Checking State = iota
	Denied
	Allowed
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	DashboardPath    = "/dashboard"
)

// Decision is the outcome of one check. Redirect is set only when denied.
type Decision struct {
	State    State
	Redirect string
}

// Evaluate checks s against req. A session that is still loading is
// never allowed or denied.
func Evaluate(s Session, req Requirement) Decision {
	if req == Public {
		return Decision{State: Allowed}
	}
	if s.Loading() {
		return Decision{State: Checking}
	}
	if !s.IsAuthenticated() {
		return Decision{State: Denied, Redirect: LoginPath}
	}
	if req == Admin && !s.IsAdmin() {
		return Decision{State: Denied, Redirect: UnauthorizedPath}
	}
	return Decision{State: Allowed}
}
