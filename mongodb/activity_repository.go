package mongodb

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sketchmentor/core/domain"
)

// ActivityRepositoryMongo implements domain.ActivityRepository on
// MongoDB. Events are append-only; there is no update or delete path.
type ActivityRepositoryMongo struct {
	collection *mongo.Collection
}

// NewActivityRepositoryMongo creates the repository and ensures the
// feed's read index exists.
func NewActivityRepositoryMongo(ctx context.Context, db *mongo.Database) (*ActivityRepositoryMongo, error) {
	repo := &ActivityRepositoryMongo{
		collection: db.Collection(ActivitiesCollection),
	}

	indexModels := []mongo.IndexModel{
		{
			// The feed always reads "newest events for one owner".
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "timestamp", Value: -1}},
		},
	}
	if _, err := repo.collection.Indexes().CreateMany(ctx, indexModels, options.CreateIndexes()); err != nil {
		// Index creation races are benign on restart; log and continue.
		log.Warn().Err(err).Msg("issue creating indexes for user_activities collection")
	}

	return repo, nil
}

// Insert implements domain.ActivityRepository.Insert.
func (r *ActivityRepositoryMongo) Insert(ctx context.Context, event *domain.ActivityEvent) error {
	if event.ID == "" {
		event.ID = bson.NewObjectID().Hex()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		log.Error().Err(err).Str("activity_type", string(event.Type)).Msg("error storing activity event in MongoDB")
		return err
	}
	return nil
}

// ListRecentByOwner implements domain.ActivityRepository.ListRecentByOwner.
func (r *ActivityRepositoryMongo) ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.ActivityEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Msg("error listing activity events from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*domain.ActivityEvent
	if err = cursor.All(ctx, &events); err != nil {
		log.Error().Err(err).Msg("error decoding activity events from MongoDB")
		return nil, err
	}
	return events, nil
}

var _ domain.ActivityRepository = (*ActivityRepositoryMongo)(nil)
