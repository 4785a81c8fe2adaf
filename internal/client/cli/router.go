package cli

import (
	"sync"

	"github.com/dmitrijs2005/impify/internal/client/session"
	"github.com/dmitrijs2005/impify/internal/common"
)

// Router tracks the current client route. It implements services.Navigator.
type Router struct {
	mu       sync.Mutex
	current  string
	history  []string
	onChange func(route string)
}

func NewRouter(initial string) *Router {
	return &Router{current: initial}
}

// OnChange registers fn to run after every navigation. fn runs outside the
// router lock.
func (r *Router) OnChange(fn func(route string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

func (r *Router) Navigate(route string) {
	r.mu.Lock()
	r.current = route
	r.history = append(r.history, route)
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(route)
	}
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History lists every navigation in order.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// toAuth moves to the sign-in route unless already there.
func (r *Router) toAuth() bool {
	r.mu.Lock()
	if r.current == common.AuthRoute {
		r.mu.Unlock()
		return false
	}
	r.current = common.AuthRoute
	r.history = append(r.history, common.AuthRoute)
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(common.AuthRoute)
	}
	return true
}

// Bind sends the user to the sign-in route whenever the session ends.
// Repeated invalidations navigate at most once.
func (r *Router) Bind(bus *session.Bus) (unsubscribe func()) {
	return bus.Subscribe(func(session.Event) { r.toAuth() })
}
