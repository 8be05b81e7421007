// Package mongo provides the MongoDB-backed document store. Pages live in a
// single collection keyed by page id, and Watch is implemented on change
// streams, so subscriptions see writes from every process sharing the
// database.
package mongo

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gridpress/gridpress/pkg/page"
	"github.com/gridpress/gridpress/pkg/store"
)

// Collection name for page documents.
const pagesCollection = "pages"

// connectTimeout bounds the initial server handshake.
const connectTimeout = 10 * time.Second

// Config holds connection settings for the mongo store.
type Config struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name.
	Database string

	// Logger receives change-stream lifecycle events. Defaults to
	// log.Default when nil.
	Logger *log.Logger
}

// Store is a MongoDB-backed page store.
type Store struct {
	client *mongo.Client
	pages  *mongo.Collection
	logger *log.Logger
}

// New connects to MongoDB and returns a store over the pages collection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{
		client: client,
		pages:  client.Database(cfg.Database).Collection(pagesCollection),
		logger: cfg.Logger,
	}, nil
}

// Get returns the document for a page id, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, pageID string) (page.Document, error) {
	var doc page.Document
	err := s.pages.FindOne(ctx, bson.M{"_id": pageID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return page.Document{}, store.ErrNotFound
	}
	if err != nil {
		return page.Document{}, err
	}
	if doc.Sections == nil {
		doc.Sections = []page.Section{}
	}
	return doc, nil
}

// Put overwrites the document, enforcing the revision check.
//
// A new document (base revision zero) is inserted; a duplicate-key failure
// means another writer created it first and reports as a conflict. An
// existing document is replaced only when the stored revision still matches
// the caller's base.
func (s *Store) Put(ctx context.Context, doc page.Document) (page.Document, error) {
	stored := doc.Clone()
	stored.Rev = doc.Rev + 1

	if doc.Rev == 0 {
		_, err := s.pages.InsertOne(ctx, stored)
		if mongo.IsDuplicateKeyError(err) {
			return page.Document{}, store.ErrConflict
		}
		if err != nil {
			return page.Document{}, err
		}
		return stored, nil
	}

	res, err := s.pages.ReplaceOne(ctx, bson.M{"_id": doc.ID, "rev": doc.Rev}, stored)
	if err != nil {
		return page.Document{}, err
	}
	if res.MatchedCount == 0 {
		return page.Document{}, store.ErrConflict
	}
	return stored, nil
}

// ForcePut overwrites unconditionally, bumping whatever revision is stored.
func (s *Store) ForcePut(ctx context.Context, doc page.Document) (page.Document, error) {
	current, err := s.Get(ctx, doc.ID)
	base := int64(0)
	if err == nil {
		base = current.Rev
	} else if err != store.ErrNotFound {
		return page.Document{}, err
	}

	stored := doc.Clone()
	stored.Rev = base + 1
	opts := options.Replace().SetUpsert(true)
	if _, err := s.pages.ReplaceOne(ctx, bson.M{"_id": doc.ID}, stored, opts); err != nil {
		return page.Document{}, err
	}
	return stored, nil
}

// Watch opens a change stream filtered to the page id and pumps full
// document snapshots into the subscription until Unsubscribe or stream
// error. Stream errors end the subscription; the consumer resubscribes if
// it still cares.
func (s *Store) Watch(ctx context.Context, pageID string) (*store.Subscription, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "fullDocument._id", Value: pageID}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cs, err := s.pages.Watch(streamCtx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := store.NewSubscription(cancel)

	go func() {
		defer func() {
			_ = cs.Close(context.Background())
			sub.Unsubscribe()
		}()
		for cs.Next(streamCtx) {
			var event struct {
				FullDocument page.Document `bson:"fullDocument"`
			}
			if err := cs.Decode(&event); err != nil {
				s.logger.Warn("decode change event", "page", pageID, "err", err)
				continue
			}
			if event.FullDocument.ID == "" {
				// Delete events carry no full document.
				continue
			}
			if event.FullDocument.Sections == nil {
				event.FullDocument.Sections = []page.Section{}
			}
			sub.Publish(event.FullDocument)
		}
		if err := cs.Err(); err != nil && streamCtx.Err() == nil {
			s.logger.Warn("change stream ended", "page", pageID, "err", err)
		}
	}()

	return sub, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
