package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
)

const (
	defaultDatabase   = "reefgraph"
	defaultCollection = "snapshots"
)

type snapshotDoc struct {
	Hash      string         `bson:"_id"`
	NodeCount int            `bson:"node_count"`
	EdgeCount int            `bson:"edge_count"`
	CreatedAt time.Time      `bson:"created_at"`
	Snapshot  graph.Snapshot `bson:"snapshot"`
}

// MongoStore persists snapshots in a MongoDB collection keyed by content hash.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(defaultDatabase).Collection(defaultCollection),
	}, nil
}

// Save upserts the snapshot document keyed by its content hash.
func (m *MongoStore) Save(ctx context.Context, s graph.Snapshot) (string, error) {
	hash, err := HashSnapshot(s)
	if err != nil {
		return "", err
	}

	doc := snapshotDoc{
		Hash:      hash,
		NodeCount: len(s.Nodes),
		EdgeCount: len(s.Edges),
		CreatedAt: time.Now(),
		Snapshot:  s,
	}
	opts := options.Update().SetUpsert(true)
	update := bson.M{"$setOnInsert": doc}
	if _, err := m.coll.UpdateByID(ctx, hash, update, opts); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "save snapshot %s", hash)
	}
	return hash, nil
}

// Load retrieves a snapshot by hash.
func (m *MongoStore) Load(ctx context.Context, hash string) (graph.Snapshot, error) {
	var doc snapshotDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": hash}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return graph.Snapshot{}, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", hash)
	}
	if err != nil {
		return graph.Snapshot{}, errors.Wrap(errors.ErrCodeStorage, err, "load snapshot %s", hash)
	}
	return doc.Snapshot, nil
}

// List returns metadata for all stored snapshots, newest first.
func (m *MongoStore) List(ctx context.Context) ([]Meta, error) {
	opts := options.Find().
		SetProjection(bson.M{"node_count": 1, "edge_count": 1, "created_at": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list snapshots")
	}
	defer cursor.Close(ctx)

	var metas []Meta
	if err := cursor.All(ctx, &metas); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode snapshot listing")
	}
	return metas, nil
}

// Delete removes a snapshot. Missing hashes are ignored.
func (m *MongoStore) Delete(ctx context.Context, hash string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": hash}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot %s", hash)
	}
	return nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "disconnect from mongodb")
	}
	return nil
}
