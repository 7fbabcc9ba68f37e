package domain

import "strings"

const anonymousPrefix = "anon:"

// Owner identifies who a deck or ledger belongs to: a registered user or
// an anonymous browser session.
type Owner struct {
	ID        string
	Anonymous bool
}

// UserOwner returns the owner for an authenticated user
func UserOwner(userID string) Owner {
	return Owner{ID: userID}
}

// SessionOwner returns the owner for an anonymous session
func SessionOwner(sessionID string) Owner {
	return Owner{ID: anonymousPrefix + sessionID, Anonymous: true}
}

// SessionID returns the bare session identifier of an anonymous owner
func (o Owner) SessionID() string {
	return strings.TrimPrefix(o.ID, anonymousPrefix)
}
