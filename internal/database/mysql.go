package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// mysqlIntrospector reads table structure from information_schema. In MySQL
// a schema and a database are the same thing.
type mysqlIntrospector struct {
	db *sql.DB
}

func connectMySQL(ctx context.Context, creds Credentials) (Introspector, error) {
	db, err := sql.Open("mysql", creds.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL at %s:%d: %w", creds.Host, creds.Port, err)
	}
	return &mysqlIntrospector{db: db}, nil
}

func (m *mysqlIntrospector) ListSchemas(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'mysql', 'performance_schema', 'sys')
		ORDER BY schema_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

func (m *mysqlIntrospector) Introspect(ctx context.Context, schema string) (*IntrospectResult, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT c.table_name,
		       c.column_name,
		       c.data_type,
		       c.is_nullable = 'YES',
		       c.column_key = 'PRI'
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = ? AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect schema %q: %w", schema, err)
	}
	defer rows.Close()

	tables, err := collectTables(rows.Next, func() (string, Column, error) {
		var table string
		var col Column
		err := rows.Scan(&table, &col.Name, &col.DataType, &col.Nullable, &col.IsPrimary)
		return table, col, err
	})
	if err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to introspect schema %q: %w", schema, err)
	}

	return &IntrospectResult{
		Tables:    len(tables),
		Datamodel: RenderDatamodel(tables),
	}, nil
}

func (m *mysqlIntrospector) Close(ctx context.Context) error {
	return m.db.Close()
}
