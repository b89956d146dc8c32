// Package routeguard decides whether a navigation may render a view, given
// the current authentication state and the view's role requirement.
package routeguard

import "github.com/davehub/parc-manager/internal/authguard"

// Requirement is a view's access requirement.
type Requirement int

const (
	// Any view only requires a signed-in user.
	Any Requirement = iota
	// AdminOnly views require the admin role.
	AdminOnly
)

// Decision is the outcome of a guard check.
type Decision int

const (
	// Allow renders the wrapped view.
	Allow Decision = iota
	// RedirectLogin sends the visitor to the login entry point.
	RedirectLogin
	// RedirectHome sends an authenticated but under-privileged user to their
	// own dashboard rather than an error page (deliberate UX choice).
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect:/login"
	case RedirectHome:
		return "redirect:/user"
	default:
		return "unknown"
	}
}

// Decide evaluates the guard state against the requirement. It is a pure
// read of the current state: call it on every navigation, never cache it.
func Decide(guard *authguard.Guard, req Requirement) Decision {
	if !guard.IsAuthenticated() {
		return RedirectLogin
	}
	if req == AdminOnly && !guard.IsAdmin() {
		return RedirectHome
	}
	return Allow
}
