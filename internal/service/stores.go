package service

import "github.com/Rrens/slidecraft/internal/domain"

// Stores holds the persistence backends for both kinds of owner.
// Registered users and anonymous sessions never share a backend in the
// server; the CLI points both sides at the same local store.
type Stores struct {
	UserDecks    domain.DeckStore
	UserQuota    domain.QuotaRepository
	SessionDecks domain.DeckStore
	SessionQuota domain.QuotaRepository
}

// Decks returns the deck store for the owner
func (s Stores) Decks(owner domain.Owner) domain.DeckStore {
	if owner.Anonymous {
		return s.SessionDecks
	}
	return s.UserDecks
}

// Quota returns the ledger store for the owner
func (s Stores) Quota(owner domain.Owner) domain.QuotaRepository {
	if owner.Anonymous {
		return s.SessionQuota
	}
	return s.UserQuota
}
