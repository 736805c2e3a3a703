package domain

// BootstrapData describes the one-time setup of an empty server: the scope
// registry, the first confidential client and optionally a first user.
type BootstrapData struct {
	ClientName    string
	ClientScopes  []string
	Scopes        []ScopeDefinition
	AdminUsername string
	AdminPassword string
}

// ScopeDefinition is a scope to register, as read from a request or a seed
// file.
type ScopeDefinition struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Default     bool   `yaml:"default" json:"default,omitempty"`
}
