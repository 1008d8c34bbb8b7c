package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	studentsColl    = "students"
	messCutsColl    = "mess_cuts"
	quotaColl       = "mess_cut_quota"
	attendanceColl  = "attendance"
	billsColl       = "bills"
	submissionsColl = "payment_submissions"
)

// Repository implements the persistence store on MongoDB. Uniqueness constraints
// that back the engine's atomicity guarantees (one attendance per student/date/meal,
// one bill and one quota ledger row per student/month) live here as unique indexes.
type Repository struct {
	client *mongo.Client
	dbName string
}

// NewRepository connects to MongoDB, verifies the connection and ensures indexes.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &Repository{client: client, dbName: dbName}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	return r, nil
}

func (r *Repository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		studentsColl: {
			{Keys: bson.D{{Key: "mess_no", Value: 1}}, Options: unique},
		},
		messCutsColl: {
			{Keys: bson.D{{Key: "mess_no", Value: 1}, {Key: "from_date", Value: 1}}},
		},
		quotaColl: {
			{Keys: bson.D{{Key: "mess_no", Value: 1}, {Key: "month", Value: 1}}, Options: unique},
		},
		attendanceColl: {
			{Keys: bson.D{{Key: "mess_no", Value: 1}, {Key: "date", Value: 1}, {Key: "meal", Value: 1}}, Options: unique},
		},
		billsColl: {
			{Keys: bson.D{{Key: "mess_no", Value: 1}, {Key: "month", Value: 1}}, Options: unique},
		},
		submissionsColl: {
			// One outstanding (pending) submission per bill.
			{
				Keys: bson.D{{Key: "bill_id", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"verification": "pending"}),
			},
		},
	}

	for coll, models := range indexes {
		if _, err := r.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", coll, err)
		}
	}

	return nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
