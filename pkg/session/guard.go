package session

import "github.com/ethan2004g/interactive-web-novels/pkg/data"

type Route string

const (
	RouteHome      Route = "/"
	RouteLogin     Route = "/auth/login"
	RouteRegister  Route = "/auth/register"
	RouteBooks     Route = "/books"
	RouteBookmarks Route = "/bookmarks"
	RouteDashboard Route = "/dashboard"
	RouteProfile   Route = "/profile"
)

type Navigator interface {
	Navigate(Route)
}

type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }

type NopNavigator struct{}

func (NopNavigator) Navigate(Route) {}

type Decision int

const (
	// Pending means the session is still loading; render a placeholder.
	Pending Decision = iota
	Allow
	// Deny means render nothing; a redirect has been requested.
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "pending"
	}
}

// Guard decides whether a protected view may render. Without a user it
// redirects to the login view. With roles given, a user holding none of them
// is redirected home.
func (s *Session) Guard(roles ...data.Role) Decision {
	snap := s.Snapshot()
	if snap.Loading {
		return Pending
	}
	if snap.User == nil {
		s.navigate(RouteLogin)
		return Deny
	}
	if len(roles) > 0 && !s.HasRole(roles...) {
		s.navigate(RouteHome)
		return Deny
	}
	return Allow
}
