package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// postgresIntrospector reads table structure from information_schema.
type postgresIntrospector struct {
	conn *pgx.Conn
}

func connectPostgres(ctx context.Context, creds Credentials) (Introspector, error) {
	conn, err := pgx.Connect(ctx, creds.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL at %s:%d: %w", creds.Host, creds.Port, err)
	}
	return &postgresIntrospector{conn: conn}, nil
}

func (p *postgresIntrospector) ListSchemas(ctx context.Context) ([]string, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'pg_catalog', 'pg_toast')
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

func (p *postgresIntrospector) Introspect(ctx context.Context, schema string) (*IntrospectResult, error) {
	if schema == "" {
		schema = "public"
	}

	rows, err := p.conn.Query(ctx, `
		SELECT c.table_name,
		       c.column_name,
		       c.data_type,
		       c.is_nullable = 'YES',
		       EXISTS (
		           SELECT 1
		           FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage kcu
		             ON tc.constraint_name = kcu.constraint_name
		            AND tc.table_schema = kcu.table_schema
		           WHERE tc.constraint_type = 'PRIMARY KEY'
		             AND tc.table_schema = c.table_schema
		             AND tc.table_name = c.table_name
		             AND kcu.column_name = c.column_name
		       )
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
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

func (p *postgresIntrospector) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

// collectTables groups ordered (table, column) rows into Table values.
func collectTables(next func() bool, scan func() (string, Column, error)) ([]Table, error) {
	var tables []Table
	for next() {
		tableName, col, err := scan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		if len(tables) == 0 || tables[len(tables)-1].Name != tableName {
			tables = append(tables, Table{Name: tableName})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, col)
	}
	return tables, nil
}
