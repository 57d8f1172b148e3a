package sink

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/tileorg/pkg/cache"
	"github.com/matzehuels/tileorg/pkg/errors"
	"github.com/matzehuels/tileorg/pkg/layout"
)

// Default MongoDB location of the frame history.
const (
	DefaultDatabase   = "tileorg"
	DefaultCollection = "frames"
)

type frameInserter interface {
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// FrameRecord is the stored form of one frame.
type FrameRecord struct {
	ID         string            `bson:"_id"`
	Scenario   string            `bson:"scenario"`
	Seq        int               `bson:"seq"`
	Mode       string            `bson:"mode"`
	Width      float64           `bson:"width"`
	Height     float64           `bson:"height"`
	Active     int               `bson:"active"`
	Placements []PlacementRecord `bson:"placements"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

// PlacementRecord is the stored form of one placement.
type PlacementRecord struct {
	Slot    int     `bson:"slot"`
	Stream  int     `bson:"stream"`
	Label   string  `bson:"label,omitempty"`
	Content bool    `bson:"content,omitempty"`
	X       float64 `bson:"x"`
	Y       float64 `bson:"y"`
	Width   float64 `bson:"width"`
	Height  float64 `bson:"height"`
}

// MongoRecorder stores frame history in a MongoDB collection.
type MongoRecorder struct {
	client *mongo.Client
	coll   frameInserter
	now    func() time.Time
}

// NewMongoRecorder connects to uri and records into database.collection.
// Empty names use DefaultDatabase and DefaultCollection.
func NewMongoRecorder(ctx context.Context, uri, database, collection string) (*MongoRecorder, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoRecorder{
		client: client,
		coll:   client.Database(database).Collection(collection),
		now:    time.Now,
	}, nil
}

// Publish inserts all frames in one batch. Frames without an ID cannot be
// stored.
func (m *MongoRecorder) Publish(ctx context.Context, scenario string, frames []layout.Frame) error {
	if len(frames) == 0 {
		return nil
	}
	docs := make([]interface{}, len(frames))
	at := m.now().UTC()
	for i, f := range frames {
		if f.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "frame %d has no id", i)
		}
		docs[i] = NewFrameRecord(scenario, i, f, at)
	}

	err := cache.Retry(ctx, publishAttempts, publishBackoff, func() error {
		_, err := m.coll.InsertMany(ctx, docs)
		if err == nil {
			return nil
		}
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
		}
		return err
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "record %d frames", len(frames))
	}
	return nil
}

// Close disconnects from MongoDB.
func (m *MongoRecorder) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// NewFrameRecord converts a frame to its stored form.
func NewFrameRecord(scenario string, seq int, f layout.Frame, at time.Time) FrameRecord {
	rec := FrameRecord{
		ID:         f.ID,
		Scenario:   scenario,
		Seq:        seq,
		Mode:       string(f.Mode),
		Width:      f.Width,
		Height:     f.Height,
		Active:     int(f.Active),
		Placements: make([]PlacementRecord, len(f.Placements)),
		RecordedAt: at,
	}
	for i, p := range f.Placements {
		rec.Placements[i] = PlacementRecord{
			Slot:    int(p.Slot),
			Stream:  int(p.Stream),
			Label:   p.Label,
			Content: p.Content,
			X:       p.Rect.X,
			Y:       p.Rect.Y,
			Width:   p.Rect.Width,
			Height:  p.Rect.Height,
		}
	}
	return rec
}

var _ Publisher = (*MongoRecorder)(nil)
