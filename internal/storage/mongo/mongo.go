package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/config"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

const (
	imagesCollection = "images"
	videosCollection = "videos"

	connectTimeout = 10 * time.Second
)

// Catalog persists media records in MongoDB, one collection per media kind.
type Catalog struct {
	client *mongo.Client
	images *mongo.Collection
	videos *mongo.Collection
}

// NewCatalog connects to MongoDB and returns a ready-to-use catalog.
func NewCatalog(cfg *config.Config) (*Catalog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)

	return &Catalog{
		client: client,
		images: db.Collection(imagesCollection),
		videos: db.Collection(videosCollection),
	}, nil
}

func (c *Catalog) collection(kind media.Kind) (*mongo.Collection, error) {
	switch kind {
	case media.KindImage:
		return c.images, nil
	case media.KindVideo:
		return c.videos, nil
	default:
		return nil, fmt.Errorf("unknown media kind: %q", kind)
	}
}

// Insert appends a record to the collection matching kind.
func (c *Catalog) Insert(ctx context.Context, record media.Record, kind media.Kind) error {
	coll, err := c.collection(kind)
	if err != nil {
		return err
	}

	if _, err := coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert media record: %w", err)
	}

	return nil
}

// List returns all image and video records, each newest first.
func (c *Catalog) List(ctx context.Context) ([]media.Record, []media.Record, error) {
	images, err := c.findAll(ctx, c.images)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list images: %w", err)
	}

	videos, err := c.findAll(ctx, c.videos)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list videos: %w", err)
	}

	return images, videos, nil
}

func (c *Catalog) findAll(ctx context.Context, coll *mongo.Collection) ([]media.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadDate", Value: -1}})

	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []media.Record{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// Keys returns the set of object keys present in either collection. Used by
// the reconciliation sweep to detect uncataloged store objects.
func (c *Catalog) Keys(ctx context.Context) (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	for _, coll := range []*mongo.Collection{c.images, c.videos} {
		values, err := coll.Distinct(ctx, "key", bson.D{})
		if err != nil {
			return nil, fmt.Errorf("failed to list catalog keys: %w", err)
		}
		for _, v := range values {
			if key, ok := v.(string); ok {
				keys[key] = struct{}{}
			}
		}
	}

	return keys, nil
}

// Close disconnects the underlying client.
func (c *Catalog) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
