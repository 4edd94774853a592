package identity

// Actor is the resolved identity initiating chat actions: an authenticated
// user with a server-issued identifier, or a guest with a locally generated
// one. At most one of the two fields is set.
type Actor struct {
	UserID  string `json:"userId,omitempty"`
	GuestID string `json:"guestId,omitempty"`
}

// Zero reports whether neither identifier is present.
func (a Actor) Zero() bool {
	return a.UserID == "" && a.GuestID == ""
}
