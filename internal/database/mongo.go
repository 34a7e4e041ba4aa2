package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoIntrospector reverse-engineers collections by sampling one document
// per collection. Mongo has no schema catalog, so field types come from the
// sampled values.
type mongoIntrospector struct {
	client   *mongo.Client
	database string
}

func connectMongo(ctx context.Context, creds Credentials) (Introspector, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(creds.DSN()).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s:%d: %w", creds.Host, creds.Port, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to MongoDB at %s:%d: %w", creds.Host, creds.Port, err)
	}
	return &mongoIntrospector{client: client, database: creds.Database}, nil
}

func (m *mongoIntrospector) ListSchemas(ctx context.Context) ([]string, error) {
	// A Mongo connection is scoped to one database; it plays the role of
	// the schema.
	return []string{m.database}, nil
}

func (m *mongoIntrospector) Introspect(ctx context.Context, schema string) (*IntrospectResult, error) {
	if schema == "" {
		schema = m.database
	}
	db := m.client.Database(schema)

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections in %q: %w", schema, err)
	}

	var tables []Table
	for _, name := range names {
		var sample bson.D
		err := db.Collection(name).FindOne(ctx, bson.D{}).Decode(&sample)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("failed to sample collection %q: %w", name, err)
		}

		table := Table{Name: name}
		for _, elem := range sample {
			table.Columns = append(table.Columns, Column{
				Name:      elem.Key,
				DataType:  bsonTypeName(elem.Value),
				Nullable:  elem.Key != "_id",
				IsPrimary: elem.Key == "_id",
			})
		}
		tables = append(tables, table)
	}

	return &IntrospectResult{
		Tables:    len(tables),
		Datamodel: RenderDatamodel(tables),
	}, nil
}

func (m *mongoIntrospector) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// bsonTypeName maps a sampled BSON value to a native type name understood
// by ScalarForSQLType.
func bsonTypeName(v any) string {
	switch v.(type) {
	case int32, int64, int:
		return "int"
	case float32, float64:
		return "double"
	case bool:
		return "bool"
	case primitive.DateTime, time.Time:
		return "datetime"
	case primitive.ObjectID:
		return "varchar"
	case bson.D, bson.M, bson.A:
		return "json"
	default:
		return "text"
	}
}
