// Package database holds connection credentials and the introspection
// clients used by the endpoint wizard.
package database

import (
	"fmt"
	"net/url"
)

// Engine identifies a supported database engine.
type Engine string

const (
	EnginePostgres Engine = "postgres"
	EngineMySQL    Engine = "mysql"
	EngineMongo    Engine = "mongo"
)

// Engines returns the supported engines in menu order.
func Engines() []Engine {
	return []Engine{EnginePostgres, EngineMySQL, EngineMongo}
}

// ParseEngine maps user input to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch s {
	case "postgres", "postgresql":
		return EnginePostgres, nil
	case "mysql":
		return EngineMySQL, nil
	case "mongo", "mongodb":
		return EngineMongo, nil
	}
	return "", fmt.Errorf("unsupported database engine: %s", s)
}

// defaultPorts is the closed per-engine port table.
var defaultPorts = map[Engine]int{
	EnginePostgres: 5432,
	EngineMySQL:    3306,
	EngineMongo:    27017,
}

// DefaultPort returns the engine's well-known port.
func (e Engine) DefaultPort() int {
	return defaultPorts[e]
}

// Credentials describes one database connection. Built once from prompt
// answers or defaults and not mutated afterwards.
type Credentials struct {
	Engine      Engine
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	Schema      string // Postgres only
	SSL         bool
	AlreadyData bool
}

// LocalCredentials returns the fixed credentials the generated Compose
// services are provisioned with. The host is the Compose service name.
func LocalCredentials(engine Engine) Credentials {
	creds := Credentials{
		Engine:   engine,
		Host:     string(engine),
		Port:     engine.DefaultPort(),
		Database: "server",
	}
	switch engine {
	case EnginePostgres:
		creds.User = "postgres"
		creds.Password = "clusterkit"
	case EngineMySQL:
		creds.User = "root"
		creds.Password = "clusterkit"
	case EngineMongo:
		creds.User = "mongo"
		creds.Password = "clusterkit"
	}
	return creds
}

// hostAliases rewrites container-network names to localhost so the wizard
// can reach a database from inside the same Compose network.
var hostAliases = map[string]string{
	"host.docker.internal":    "localhost",
	"docker.for.mac.localhost": "localhost",
}

// ResolveHost translates known container-network aliases to localhost.
// Unknown hosts pass through unchanged.
func ResolveHost(host string) string {
	if resolved, ok := hostAliases[host]; ok {
		return resolved
	}
	return host
}

// WithResolvedHost returns a copy of c with the host alias substitution
// applied. Connectors must only ever see the resolved host.
func (c Credentials) WithResolvedHost() Credentials {
	c.Host = ResolveHost(c.Host)
	return c
}

// DSN renders the connection string for the credential's engine.
func (c Credentials) DSN() string {
	switch c.Engine {
	case EnginePostgres:
		sslmode := "disable"
		if c.SSL {
			sslmode = "require"
		}
		return c.urlDSN("postgres", "sslmode="+sslmode)
	case EngineMySQL:
		tls := "false"
		if c.SSL {
			tls = "true"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=%s",
			c.User, c.Password, c.Host, c.Port, c.Database, tls)
	case EngineMongo:
		ssl := "false"
		if c.SSL {
			ssl = "true"
		}
		return c.urlDSN("mongodb", "ssl="+ssl)
	}
	return ""
}

// urlDSN builds a URL-shaped connection string. url.UserPassword handles
// userinfo escaping; query escaping would turn a space into "+", which the
// userinfo component does not decode.
func (c Credentials) urlDSN(scheme, query string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: query,
	}
	return u.String()
}
