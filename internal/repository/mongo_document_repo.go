package repository

import (
	"bigbrain/internal/store"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type documentRecord struct {
	Key       string    `bson:"_id"`
	Data      string    `bson:"data"`
	Revision  int64     `bson:"revision"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoDocumentRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDocumentStore creates a store.Store over the "documents" collection
func NewMongoDocumentStore(client *mongo.Client, database string) store.Store {
	return &mongoDocumentRepo{
		client:     client,
		collection: client.Database(database).Collection("documents"),
	}
}

func (r *mongoDocumentRepo) Load(ctx context.Context, key string) (store.Document, error) {
	var rec documentRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return store.Document{}, nil
	}
	if err != nil {
		return store.Document{}, err
	}
	return store.Document{Data: []byte(rec.Data), Revision: rec.Revision}, nil
}

func (r *mongoDocumentRepo) Save(ctx context.Context, key string, data []byte, expected int64) (int64, error) {
	next := expected + 1
	now := time.Now()

	if expected == 0 {
		_, err := r.collection.InsertOne(ctx, documentRecord{
			Key:       key,
			Data:      string(data),
			Revision:  next,
			UpdatedAt: now,
		})
		if mongo.IsDuplicateKeyError(err) {
			return 0, store.ErrConflict
		}
		if err != nil {
			return 0, err
		}
		return next, nil
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key, "revision": expected},
		bson.M{"$set": bson.M{"data": string(data), "revision": next, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	if result.MatchedCount == 0 {
		return 0, store.ErrConflict
	}
	return next, nil
}

func (r *mongoDocumentRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
