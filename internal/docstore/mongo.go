package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"tablecheck/internal/domain"
)

// Mongo maps each collection to a MongoDB collection with the document key as _id.
// Transactions need a replica set.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(client *mongo.Client, database string) *Mongo {
	return &Mongo{client: client, db: client.Database(database)}
}

func (m *Mongo) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	return mongoGet(ctx, m.db, collection, key)
}

func (m *Mongo) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	return mongoSet(ctx, m.db, collection, key, fields, opts)
}

func (m *Mongo) List(ctx context.Context, collection string) ([]Document, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var out []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("cannot decode %s: %w", collection, err)
		}
		out = append(out, fromBSON(raw))
	}
	return out, cursor.Err()
}

func (m *Mongo) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("cannot start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{db: m.db})
	}, txOpts)
	if err != nil && mongoConflict(err) {
		return fmt.Errorf("%w: %v", domain.ErrStorageConflict, err)
	}
	return err
}

func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
	}
	return nil
}

// mongoTx relies on the session carried by ctx, which WithTransaction hands to fn.
type mongoTx struct {
	db *mongo.Database
}

func (t *mongoTx) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	return mongoGet(ctx, t.db, collection, key)
}

func (t *mongoTx) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	return mongoSet(ctx, t.db, collection, key, fields, opts)
}

func mongoGet(ctx context.Context, db *mongo.Database, collection, key string) (Document, bool, error) {
	var raw bson.M
	err := db.Collection(collection).FindOne(ctx, bson.M{"_id": key}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("cannot get %s/%s: %w", collection, key, err)
	}
	return fromBSON(raw), true, nil
}

func mongoSet(ctx context.Context, db *mongo.Database, collection, key string, fields Fields, opts SetOptions) error {
	coll := db.Collection(collection)
	filter := bson.M{"_id": key}

	var err error
	if opts.Merge {
		if len(fields) == 0 {
			return nil
		}
		_, err = coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M(fields)}, options.Update().SetUpsert(true))
	} else {
		doc := bson.M{}
		for k, v := range fields {
			doc[k] = v
		}
		doc["_id"] = key
		_, err = coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	}
	if err != nil {
		return fmt.Errorf("cannot set %s/%s: %w", collection, key, err)
	}
	return nil
}

func fromBSON(raw bson.M) Document {
	key := fmt.Sprint(raw["_id"])
	delete(raw, "_id")
	f := make(Fields, len(raw))
	for k, v := range raw {
		f[k] = plainValue(v)
	}
	return Document{Key: key, Fields: f}
}

func plainValue(v any) any {
	switch x := v.(type) {
	case bson.M:
		m := make(map[string]any, len(x))
		for k, inner := range x {
			m[k] = plainValue(inner)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(x))
		for i, inner := range x {
			out[i] = plainValue(inner)
		}
		return out
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339Nano)
	case primitive.ObjectID:
		return x.Hex()
	default:
		return v
	}
}

func mongoConflict(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") ||
			se.HasErrorLabel("UnknownTransactionCommitResult") ||
			se.HasErrorCode(112) // WriteConflict
	}
	return false
}
