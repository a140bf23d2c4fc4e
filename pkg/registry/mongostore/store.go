// Package mongostore implements registry.Storage on a MongoDB collection.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/mtenant/pkg/registry"
)

// CollectionName is the default collection holding registered tenants.
const CollectionName = "tenants_storage"

type document struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Tenant    string        `bson:"tenant"`
	Settings  *string       `bson:"settings"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func (d document) record() registry.Record {
	rec := registry.Record{Tenant: d.Tenant}
	if d.Settings != nil {
		rec.Settings = json.RawMessage(*d.Settings)
	}
	return rec
}

// Store is a MongoDB-backed registry.Storage. The unique tenant index is
// created on the first Add unless EnsureIndexes ran before.
type Store struct {
	coll *mongo.Collection

	mu      sync.Mutex
	indexed bool
}

var _ registry.Storage = (*Store)(nil)

// New uses the tenants_storage collection of db.
func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique index on tenant. A failed attempt is
// retried on the next call.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexed {
		return nil
	}

	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("tenant_unique"),
	})
	if err != nil {
		return err
	}
	s.indexed = true
	return nil
}

func (s *Store) Add(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	if err := registry.ValidateTenant(tenant); err != nil {
		return registry.Record{}, err
	}
	if err := registry.ValidateSettings(settings); err != nil {
		return registry.Record{}, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return registry.Record{}, err
	}

	now := time.Now().UTC()
	doc := document{
		Tenant:    tenant,
		Settings:  settingsField(settings),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return registry.Record{}, registry.ErrTenantExists
		}
		return registry.Record{}, err
	}
	return doc.record(), nil
}

func (s *Store) Remove(ctx context.Context, tenant string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "tenant", Value: tenant}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) Exists(ctx context.Context, tenant string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "tenant", Value: tenant}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UpdateSettings(ctx context.Context, tenant string, settings json.RawMessage) (registry.Record, error) {
	if err := registry.ValidateSettings(settings); err != nil {
		return registry.Record{}, err
	}

	var doc document
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "tenant", Value: tenant}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "settings", Value: settingsField(settings)},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return registry.Record{}, registry.ErrTenantNotFound
	}
	if err != nil {
		return registry.Record{}, err
	}
	return doc.record(), nil
}

func (s *Store) Get(ctx context.Context, tenant string) (registry.Record, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.D{{Key: "tenant", Value: tenant}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return registry.Record{}, registry.ErrTenantNotFound
	}
	if err != nil {
		return registry.Record{}, err
	}
	return doc.record(), nil
}

func (s *Store) List(ctx context.Context) ([]registry.Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "tenant", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	recs := make([]registry.Record, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.record())
	}
	return recs, nil
}

func settingsField(raw json.RawMessage) *string {
	if !registry.HasSettings(raw) {
		return nil
	}
	s := string(raw)
	return &s
}
