package oauth2

import (
	"errors"
	"fmt"
)

var (
	ErrRegistrySealed = errors.New("oauth2: grant registry is sealed")
	ErrDuplicateGrant = errors.New("oauth2: grant already registered")
)

// Registry indexes grants by grant type and response type. It is filled at
// startup and sealed by NewServer, after which it is read-only.
type Registry struct {
	grants        map[string]Grant
	responseTypes map[string]Grant
	sealed        bool
}

func NewRegistry() *Registry {
	return &Registry{
		grants:        make(map[string]Grant),
		responseTypes: make(map[string]Grant),
	}
}

// Register adds g. Registering after NewServer or registering the same
// grant type twice is an error.
func (r *Registry) Register(g Grant) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	if _, ok := r.grants[g.Type()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateGrant, g.Type())
	}
	if rt := g.ResponseType(); rt != "" {
		if _, ok := r.responseTypes[rt]; ok {
			return fmt.Errorf("%w: response type %s", ErrDuplicateGrant, rt)
		}
		r.responseTypes[rt] = g
	}
	r.grants[g.Type()] = g
	return nil
}

// MustRegister is Register that panics, for static wiring.
func (r *Registry) MustRegister(grants ...Grant) *Registry {
	for _, g := range grants {
		if err := r.Register(g); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) HasGrant(grantType string) bool {
	_, ok := r.grants[grantType]
	return ok
}

// Grant returns the grant for grantType or unsupported_grant_type.
func (r *Registry) Grant(grantType string) (Grant, error) {
	if g, ok := r.grants[grantType]; ok {
		return g, nil
	}
	return nil, UnsupportedGrantType("grant type %q is not supported by this server", grantType)
}

func (r *Registry) HasResponseType(responseType string) bool {
	_, ok := r.responseTypes[responseType]
	return ok
}

// ResponseType returns the grant for responseType or
// unsupported_response_type.
func (r *Registry) ResponseType(responseType string) (Grant, error) {
	if g, ok := r.responseTypes[responseType]; ok {
		return g, nil
	}
	return nil, UnsupportedResponseType("response type %q is not supported by this server", responseType)
}

// GrantTypes lists the registered grant types.
func (r *Registry) GrantTypes() []string {
	out := make([]string, 0, len(r.grants))
	for t := range r.grants {
		out = append(out, t)
	}
	return out
}

func (r *Registry) seal() { r.sealed = true }
