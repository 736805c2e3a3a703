package domain

// Scope is a named permission a token can carry. Scopes with a nil ID have
// not been persisted.
type Scope struct {
	ID          *int64
	Name        string
	Description string
	IsDefault   bool
}

func NewScope(name, description string, isDefault bool) Scope {
	return Scope{Name: name, Description: description, IsDefault: isDefault}
}

func (s Scope) String() string {
	return s.Name
}

// ScopeNames flattens scopes to their names, keeping order.
func ScopeNames(scopes []Scope) []string {
	names := make([]string, len(scopes))
	for i, s := range scopes {
		names[i] = s.Name
	}
	return names
}

// Scopes that guard the client administration API.
const (
	ScopeClientsRead  = "clients:read"
	ScopeClientsWrite = "clients:write"
)

// AdminScopes are registered and granted to the first client at bootstrap.
var AdminScopes = []ScopeDefinition{
	{Name: ScopeClientsRead, Description: "List registered clients and scopes"},
	{Name: ScopeClientsWrite, Description: "Register and delete clients"},
}
