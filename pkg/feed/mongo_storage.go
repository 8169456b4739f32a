package feed

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrMongoNotReady is returned when MongoDB cannot be reached within the
// configured retry budget.
var ErrMongoNotReady = errors.New("feed: mongodb is not ready")

// MongoConfig describes the MongoDB connection behind MongoStorage.
type MongoConfig struct {
	ConnectionURL  string        `env:"MONGO_URL,required"`
	Database       string        `env:"MONGO_DATABASE" envDefault:"notifykit"`
	Collection     string        `env:"MONGO_COLLECTION" envDefault:"notifications"`
	RetryAttempts  int           `env:"MONGO_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"MONGO_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"30s"`
}

// ConnectMongo establishes a MongoDB client with retries and returns the
// configured collection for MongoStorage.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Collection, error) {
	for attempt := 0; attempt < max(cfg.RetryAttempts, 1); attempt++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout),
		)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return client.Database(cfg.Database).Collection(cfg.Collection), nil
			}
			_ = client.Disconnect(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrMongoNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrMongoNotReady
}

// mongoNotification is the BSON document shape of a notification.
// ExpiresAt is omitted when unset so the not-expired filter can rely on
// field absence.
type mongoNotification struct {
	ID           string         `bson:"_id"`
	SubscriberID string         `bson:"subscriber_id"`
	Channel      string         `bson:"channel"`
	Content      string         `bson:"content"`
	CTA          *CTA           `bson:"cta,omitempty"`
	Payload      map[string]any `bson:"payload,omitempty"`
	Seen         bool           `bson:"seen"`
	SeenAt       *time.Time     `bson:"seen_at,omitempty"`
	CreatedAt    time.Time      `bson:"created_at"`
	ExpiresAt    *time.Time     `bson:"expires_at,omitempty"`
}

func (d mongoNotification) toNotification() Notification {
	return Notification{
		ID:           d.ID,
		SubscriberID: d.SubscriberID,
		Channel:      ChannelType(d.Channel),
		Content:      d.Content,
		CTA:          d.CTA,
		Payload:      d.Payload,
		Seen:         d.Seen,
		SeenAt:       d.SeenAt,
		CreatedAt:    d.CreatedAt,
		ExpiresAt:    d.ExpiresAt,
	}
}

// MongoStorage is a Storage implementation backed by MongoDB.
type MongoStorage struct {
	collection *mongo.Collection
}

// NewMongoStorage creates a storage over an established collection.
func NewMongoStorage(collection *mongo.Collection) *MongoStorage {
	return &MongoStorage{collection: collection}
}

// notExpired matches documents that have no expiry or have not expired yet.
func notExpired() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$exists": false}},
		bson.M{"expires_at": bson.M{"$gt": time.Now()}},
	}}
}

func (s *MongoStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if n.SubscriberID == "" {
		return ErrMissingSubscriberID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.collection.InsertOne(ctx, mongoNotification{
		ID:           n.ID,
		SubscriberID: n.SubscriberID,
		Channel:      string(n.Channel),
		Content:      n.Content,
		CTA:          n.CTA,
		Payload:      n.Payload,
		Seen:         n.Seen,
		SeenAt:       n.SeenAt,
		CreatedAt:    n.CreatedAt,
		ExpiresAt:    n.ExpiresAt,
	})
	return err
}

func (s *MongoStorage) Get(ctx context.Context, subscriberID, notifID string) (*Notification, error) {
	filter := bson.M{
		"_id":           notifID,
		"subscriber_id": subscriberID,
		"$and":          bson.A{notExpired()},
	}

	var doc mongoNotification
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	n := doc.toNotification()
	return &n, nil
}

func (s *MongoStorage) List(ctx context.Context, subscriberID string, opts ListOptions) ([]Notification, error) {
	filter := bson.M{
		"subscriber_id": subscriberID,
		"$and":          bson.A{notExpired()},
	}
	if opts.OnlyUnseen {
		filter["seen"] = false
	}
	if opts.Channel != "" {
		filter["channel"] = string(opts.Channel)
	}
	if opts.Since != nil {
		filter["created_at"] = bson.M{"$gte": *opts.Since}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts = findOpts.SetSkip(int64(opts.Offset))
	}

	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	notifications := []Notification{}
	for cursor.Next(ctx) {
		var doc mongoNotification
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		notifications = append(notifications, doc.toNotification())
	}
	return notifications, cursor.Err()
}

func (s *MongoStorage) MarkSeen(ctx context.Context, subscriberID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.collection.UpdateMany(ctx,
		bson.M{
			"subscriber_id": subscriberID,
			"_id":           bson.M{"$in": notifIDs},
			"seen":          false,
		},
		bson.M{"$set": bson.M{"seen": true, "seen_at": time.Now()}},
	)
	return err
}

func (s *MongoStorage) Delete(ctx context.Context, subscriberID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.collection.DeleteMany(ctx, bson.M{
		"subscriber_id": subscriberID,
		"_id":           bson.M{"$in": notifIDs},
	})
	return err
}

func (s *MongoStorage) CountUnseen(ctx context.Context, subscriberID string) (int, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{
		"subscriber_id": subscriberID,
		"seen":          false,
		"$and":          bson.A{notExpired()},
	})
	return int(count), err
}

func (s *MongoStorage) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lte": time.Now()},
	})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}
