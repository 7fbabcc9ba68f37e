// Package mongo stores decks of registered users in MongoDB when
// storage.driver is "mongo".
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/slidecraft/internal/config"
	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const deckCollection = "decks"

type deckDocument struct {
	ObjectID           primitive.ObjectID `bson:"_id"`
	DeckID             string             `bson:"deck_id"`
	OwnerID            string             `bson:"owner_id"`
	Mode               string             `bson:"type"`
	Title              string             `bson:"title"`
	Topic              string             `bson:"topic,omitempty"`
	Tone               string             `bson:"tone,omitempty"`
	SlideCount         int                `bson:"slide_count"`
	Slides             []domain.Slide     `bson:"slides"`
	OverallSuggestions string             `bson:"overall_suggestions,omitempty"`
	FolderID           string             `bson:"folder_id,omitempty"`
	SavedAt            time.Time          `bson:"saved_at"`
}

func toDocument(d *domain.Deck) deckDocument {
	doc := deckDocument{
		ObjectID:           primitive.NewObjectID(),
		DeckID:             d.ID,
		OwnerID:            d.OwnerID,
		Mode:               string(d.Mode),
		Title:              d.Title,
		Topic:              d.Topic,
		Tone:               string(d.Tone),
		SlideCount:         d.SlideCount,
		Slides:             d.Slides,
		OverallSuggestions: d.OverallSuggestions,
	}
	if d.FolderID != nil {
		doc.FolderID = d.FolderID.String()
	}
	if d.SavedAt != nil {
		doc.SavedAt = *d.SavedAt
	}
	return doc
}

func (doc deckDocument) toDeck() *domain.Deck {
	savedAt := doc.SavedAt.UTC()
	d := &domain.Deck{
		ID:                 doc.DeckID,
		OwnerID:            doc.OwnerID,
		Mode:               domain.Mode(doc.Mode),
		Title:              doc.Title,
		Topic:              doc.Topic,
		Tone:               domain.Tone(doc.Tone),
		SlideCount:         doc.SlideCount,
		Slides:             doc.Slides,
		OverallSuggestions: doc.OverallSuggestions,
		SavedAt:            &savedAt,
	}
	if doc.FolderID != "" {
		if id, err := uuid.Parse(doc.FolderID); err == nil {
			d.FolderID = &id
		}
	}
	return d
}

// DeckStore implements domain.DeckStore on a MongoDB collection
type DeckStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens a client and returns a store on the configured database
func Connect(ctx context.Context, cfg config.MongoConfig) (*DeckStore, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI).SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	store := &DeckStore{client: client, coll: client.Database(cfg.Database).Collection(deckCollection)}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// NewDeckStore wraps an existing collection
func NewDeckStore(coll *mongo.Collection) *DeckStore {
	return &DeckStore{coll: coll}
}

func (s *DeckStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "deck_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create deck indexes: %w", err)
	}
	return nil
}

// Ping verifies connectivity
func (s *DeckStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *DeckStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Save stores a copy of the deck under a fresh ID
func (s *DeckStore) Save(ctx context.Context, deck *domain.Deck, ownerID string) (*domain.Deck, error) {
	stored := deck.Stamped(ownerID, time.Now().UTC().Truncate(time.Millisecond))

	if _, err := s.coll.InsertOne(ctx, toDocument(stored)); err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}
	return stored, nil
}

// List returns summaries in insertion order
func (s *DeckStore) List(ctx context.Context, ownerID string) ([]domain.DeckSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"slides": 0})

	cursor, err := s.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer cursor.Close(ctx)

	decks := []domain.DeckSummary{}
	for cursor.Next(ctx) {
		var doc deckDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode deck: %w", err)
		}
		decks = append(decks, doc.toDeck().Summary())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}

	return decks, nil
}

// Get retrieves one deck of the owner
func (s *DeckStore) Get(ctx context.Context, id, ownerID string) (*domain.Deck, error) {
	var doc deckDocument
	err := s.coll.FindOne(ctx, bson.M{"deck_id": id, "owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return doc.toDeck(), nil
}

// Delete removes a deck; deleting a missing deck is not an error
func (s *DeckStore) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"deck_id": id, "owner_id": ownerID}); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}
