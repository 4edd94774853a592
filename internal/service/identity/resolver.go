package identity

import (
	"log"

	"github.com/google/uuid"

	identitymodel "github.com/counslerai/counslerai/internal/model/identity"
	"github.com/counslerai/counslerai/pkg/keyvalue"
)

// GuestIDKey is the fixed durable-storage key holding the guest identifier.
const GuestIDKey = "counslerai_guestId"

// AuthProvider reports the authenticated user, if any.
type AuthProvider interface {
	// CurrentUser returns the stable user identifier, or "" when the visitor
	// is not signed in. loading is true while the auth subsystem has not yet
	// reported a status; no identifier is meaningful in that case.
	CurrentUser() (id string, loading bool)
}

// Anonymous is an AuthProvider with no signed-in user.
type Anonymous struct{}

// CurrentUser always reports a signed-out visitor.
func (Anonymous) CurrentUser() (string, bool) { return "", false }

// Resolver decides whether the current actor is an authenticated user or a
// local guest. Guests get a generated identifier persisted under GuestIDKey
// so repeated resolutions return the same id until it is cleared.
type Resolver struct {
	auth  AuthProvider
	store keyvalue.Store
}

// NewResolver builds a Resolver over the given auth provider and durable
// store. A nil auth provider resolves everyone as a guest.
func NewResolver(auth AuthProvider, store keyvalue.Store) *Resolver {
	if auth == nil {
		auth = Anonymous{}
	}
	return &Resolver{auth: auth, store: store}
}

// Resolve returns the current actor. loading is true while authentication
// status is still unknown, and the returned actor is empty in that case.
// The result never carries both a user id and a guest id.
func (r *Resolver) Resolve() (actor identitymodel.Actor, loading bool) {
	userID, authLoading := r.auth.CurrentUser()
	if authLoading {
		return identitymodel.Actor{}, true
	}
	if userID != "" {
		return identitymodel.Actor{UserID: userID}, false
	}
	return identitymodel.Actor{GuestID: r.guestID()}, false
}

// guestID returns the stored guest identifier, minting and persisting a
// fresh one on first use. An unavailable store degrades to an empty id
// rather than failing.
func (r *Resolver) guestID() string {
	if r.store == nil {
		return ""
	}
	if stored, ok := r.store.Get(GuestIDKey); ok && stored != "" {
		return stored
	}
	id := uuid.NewString()
	if err := r.store.Set(GuestIDKey, id); err != nil {
		log.Printf("[identity] failed to persist guest id: %v", err)
		return ""
	}
	return id
}

// ClearGuestID drops the stored guest identifier; the next resolve mints a
// new one.
func (r *Resolver) ClearGuestID() {
	if r.store == nil {
		return
	}
	if err := r.store.Delete(GuestIDKey); err != nil {
		log.Printf("[identity] failed to clear guest id: %v", err)
	}
}
