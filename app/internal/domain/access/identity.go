package access

import "context"

// Identity is who the identity provider says the caller is.
type Identity struct {
	Subject string
	Email   string
	Phone   string
	Name    string
	Role    Role
}

// Principal is the slice of an identity the gate looks at.
type Principal struct {
	Role    Role
	Subject string
}

var Anonymous = Principal{Role: RoleAnonymous}

func (i *Identity) Principal() Principal {
	if i == nil || !i.Role.IsValid() {
		return Anonymous
	}
	return Principal{Role: i.Role, Subject: i.Subject}
}

// SessionProvider resolves the caller of the current operation. Implementations
// are asked on every call, so a role change is visible immediately.
type SessionProvider interface {
	CurrentRole(ctx context.Context) Role
	CurrentIdentity(ctx context.Context) (*Identity, bool)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// ContextSession reads the identity that the transport layer stored in the
// request context after verifying the provider's token.
type ContextSession struct{}

func (ContextSession) CurrentRole(ctx context.Context) Role {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return RoleAnonymous
	}
	return id.Principal().Role
}

func (ContextSession) CurrentIdentity(ctx context.Context) (*Identity, bool) {
	return IdentityFrom(ctx)
}

// StaticSession always reports the same caller. A nil Identity is anonymous.
type StaticSession struct {
	Identity *Identity
}

func (s StaticSession) CurrentRole(context.Context) Role {
	return s.Identity.Principal().Role
}

func (s StaticSession) CurrentIdentity(context.Context) (*Identity, bool) {
	if s.Identity == nil {
		return nil, false
	}
	return s.Identity, true
}

// Resolve returns the caller's identity (possibly nil) and principal.
func Resolve(ctx context.Context, sessions SessionProvider) (*Identity, Principal) {
	id, ok := sessions.CurrentIdentity(ctx)
	if !ok {
		return nil, Anonymous
	}
	p := id.Principal()
	p.Role = sessions.CurrentRole(ctx)
	if !p.Role.IsValid() {
		return id, Anonymous
	}
	return id, p
}
