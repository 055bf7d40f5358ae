package middleware

import "Inshorts/internal/models"

// Decision is the outcome of a route guard.
type Decision int

const (
	Render Decision = iota
	RedirectLogin
	RedirectHome
	Pending
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	case Pending:
		return "pending"
	}
	return "unknown"
}

// Decide gates a route on the session. While the session is still loading
// the answer is Pending, never a redirect. An empty requiredRole only needs
// a principal.
func Decide(principal *models.User, requiredRole string, loading bool) Decision {
	switch {
	case loading:
		return Pending
	case principal == nil:
		return RedirectLogin
	case requiredRole != "" && !principal.HasRole(requiredRole):
		return RedirectHome
	default:
		return Render
	}
}
