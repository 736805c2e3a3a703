package authsdk

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	bootstrapRequiredReason = "required"
	bootstrapOnlyAlphanum   = "must only contain a-z, A-Z, 0-9, _ or -"
)

var (
	reName  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	reScope = regexp.MustCompile(`^[a-z][a-z0-9._-]*(:[a-z][a-z0-9._-]*)?$`)
)

// Validate checks if the bootstrap request fields are valid.
// Returns a map of field names to error messages, or nil if all fields are valid.
func (b BootstrapRequest) Validate() map[string]string {
	errs := make(map[string]string)

	b.validateClientName(errs)
	b.validateClientScopes(errs)
	b.validateScopes(errs)
	b.validateUser(errs)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (b BootstrapRequest) validateClientName(errs map[string]string) {
	cname := strings.TrimSpace(b.ClientName)
	switch {
	case cname == "":
		errs["client_name"] = bootstrapRequiredReason
	case len(cname) > 100:
		errs["client_name"] = "too long (max 100)"
	case !reName.MatchString(cname):
		errs["client_name"] = bootstrapOnlyAlphanum
	}
}

func (b BootstrapRequest) validateClientScopes(errs map[string]string) {
	seen := make(map[string]struct{}, len(b.ClientScopes))
	for _, s := range b.ClientScopes {
		if !reScope.MatchString(s) {
			errs["client_scopes"] = fmt.Sprintf("invalid scope: %q", s)
			return
		}
		if _, dup := seen[s]; dup {
			errs["client_scopes"] = "duplicate scopes"
			return
		}
		seen[s] = struct{}{}
	}
}

func (b BootstrapRequest) validateScopes(errs map[string]string) {
	seen := make(map[string]struct{}, len(b.Scopes))
	for i, def := range b.Scopes {
		field := fmt.Sprintf("scopes[%d].name", i)
		switch {
		case def.Name == "":
			errs[field] = bootstrapRequiredReason
		case !reScope.MatchString(def.Name):
			errs[field] = fmt.Sprintf("invalid scope: %q", def.Name)
		default:
			if _, dup := seen[def.Name]; dup {
				errs[field] = "duplicate scope"
			}
			seen[def.Name] = struct{}{}
		}
	}
}

func (b BootstrapRequest) validateUser(errs map[string]string) {
	username := strings.TrimSpace(b.AdminUsername)
	if username == "" {
		if b.AdminPassword != "" {
			errs["admin_username"] = "required with admin_password"
		}
		return
	}

	switch {
	case len(username) < 3 || len(username) > 32:
		errs["admin_username"] = "must be 3-32 characters"
	case !reName.MatchString(username):
		errs["admin_username"] = bootstrapOnlyAlphanum
	}

	pw := b.AdminPassword
	switch {
	case pw == "":
		errs["admin_password"] = bootstrapRequiredReason
	case len(pw) < 8:
		errs["admin_password"] = "too short (min 8)"
	case len(pw) > 128:
		errs["admin_password"] = "too long (max 128)"
	}
}
