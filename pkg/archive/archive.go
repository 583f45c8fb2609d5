// Package archive keeps a history of computed bracket layouts in MongoDB.
//
// Each [Record] is one pipeline snapshot (structure, columns, connector
// lines and extent) for a championship, stamped with a UUID and the time it
// was computed. Matches themselves are never stored here; the upstream API
// owns them.
//
//	store, err := archive.Open(ctx, "mongodb://localhost:27017", "bracketview")
//	rec, err := store.Save(ctx, 7, hash, layout.Snapshot())
//	latest, err := store.Latest(ctx, 7)
package archive

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/pipeline"
)

// DefaultDatabase is used when Open is given no database name.
const DefaultDatabase = "bracketview"

const collectionName = "layouts"

// Record is one archived layout.
type Record struct {
	ID             string    `bson:"_id" json:"id"`
	ChampionshipID int       `bson:"championship_id" json:"championship_id"`
	MatchesHash    string    `bson:"matches_hash" json:"matches_hash"`
	Placed         int       `bson:"placed" json:"placed"`
	LineCount      int       `bson:"line_count" json:"line_count"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`

	// Data is the snapshot JSON, the same document as the json artifact.
	Data []byte `bson:"snapshot" json:"-"`
}

// Snapshot decodes the archived snapshot.
func (r Record) Snapshot() (pipeline.Snapshot, error) {
	return pipeline.UnmarshalSnapshot(r.Data)
}

// Store archives layouts in one MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to MongoDB at uri, verifies the connection and ensures the
// collection's index.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	s := NewStore(client, client.Database(database))
	if err := s.ensureIndex(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing database handle. Close disconnects client.
func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{client: client, coll: db.Collection(collectionName)}
}

func (s *Store) ensureIndex(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "championship_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Save archives snap for a championship and returns the stored record.
func (s *Store) Save(ctx context.Context, championshipID int, matchesHash string, snap pipeline.Snapshot) (Record, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return Record{}, fmt.Errorf("encode snapshot: %w", err)
	}
	rec := Record{
		ID:             uuid.NewString(),
		ChampionshipID: championshipID,
		MatchesHash:    matchesHash,
		Placed:         snap.Structure.Len(),
		LineCount:      len(snap.Lines),
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
		Data:           data,
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("insert layout: %w", err)
	}
	return rec, nil
}

// Latest returns the most recent record of a championship, or a NOT_FOUND
// error if none was archived.
func (s *Store) Latest(ctx context.Context, championshipID int) (Record, error) {
	var rec Record
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := s.coll.FindOne(ctx, bson.D{{Key: "championship_id", Value: championshipID}}, opts).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, errors.New(errors.ErrCodeNotFound, "no archived layout for championship %d", championshipID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("find layout: %w", err)
	}
	return rec, nil
}

// List returns up to limit records of a championship, newest first.
// A limit <= 0 returns every record.
func (s *Store) List(ctx context.Context, championshipID, limit int) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{{Key: "championship_id", Value: championshipID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find layouts: %w", err)
	}
	recs := []Record{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode layouts: %w", err)
	}
	return recs, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
