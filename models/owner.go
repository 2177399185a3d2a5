package models

type OwnerKind int

const (
	OwnerAuthenticated OwnerKind = iota
	OwnerGuest
)

// Owner is the identity a cart or order is scoped to: either an
// authenticated account id or an opaque guest session key. Orders keep the
// account id only for authenticated owners; guest orders get an access code
// instead.
type Owner struct {
	Kind OwnerKind
	Key  string
}

func Authenticated(id string) Owner {
	return Owner{Kind: OwnerAuthenticated, Key: id}
}

func Guest(sessionKey string) Owner {
	return Owner{Kind: OwnerGuest, Key: sessionKey}
}

func (o Owner) IsGuest() bool {
	return o.Kind == OwnerGuest
}
