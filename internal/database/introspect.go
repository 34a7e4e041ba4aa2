package database

import (
	"context"
	"fmt"
)

// IntrospectResult is what reverse-engineering one schema produces.
type IntrospectResult struct {
	// Tables is the number of tables (or collections) found.
	Tables int
	// Datamodel is the rendered declarative schema text.
	Datamodel string
}

// Introspector reverse-engineers a datamodel from an existing database.
type Introspector interface {
	// ListSchemas enumerates the schemas (databases for MySQL, the single
	// database for Mongo) visible through the connection.
	ListSchemas(ctx context.Context) ([]string, error)
	// Introspect builds a datamodel from the given schema's table structure.
	Introspect(ctx context.Context, schema string) (*IntrospectResult, error)
	Close(ctx context.Context) error
}

// Connect opens an introspection connection for the credentials' engine.
// Container-network host aliases are resolved before dialing.
func Connect(ctx context.Context, creds Credentials) (Introspector, error) {
	creds = creds.WithResolvedHost()
	switch creds.Engine {
	case EnginePostgres:
		return connectPostgres(ctx, creds)
	case EngineMySQL:
		return connectMySQL(ctx, creds)
	case EngineMongo:
		return connectMongo(ctx, creds)
	}
	return nil, fmt.Errorf("unsupported database engine: %s", creds.Engine)
}
