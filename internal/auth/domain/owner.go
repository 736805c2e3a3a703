package domain

// TokenOwner is whoever a token acts on behalf of, usually a user.
type TokenOwner interface {
	TokenOwnerID() string
}

// OwnerID is an owner known only by id, as reconstituted from storage.
type OwnerID string

func (o OwnerID) TokenOwnerID() string { return string(o) }

// OwnerIDOf returns the owner's id or "" for a nil owner.
func OwnerIDOf(o TokenOwner) string {
	if o == nil {
		return ""
	}
	return o.TokenOwnerID()
}
