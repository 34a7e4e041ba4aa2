// Package compose generates the docker-compose text for a locally
// provisioned server and its database.
package compose

import (
	"fmt"
	"strings"

	"github.com/compose-spec/compose-go/v2/types"
	"github.com/muesli/reflow/indent"
	"gopkg.in/yaml.v3"

	"github.com/clusterkit-dev/clusterkit/internal/database"
)

// ServerPort is the port the generated server service listens on.
const ServerPort = 4466

// BaseTemplate is the compose skeleton every generated file starts from.
// The database connector block is appended under `databases:` inside the
// server's block-scalar config.
const BaseTemplate = `version: '3'
services:
  server:
    image: clusterkit/server:1.0
    restart: always
    ports:
      - "4466:4466"
    environment:
      SERVER_CONFIG: |
        port: 4466
        managementApiSecret: ${CLUSTERKIT_MANAGEMENT_API_SECRET:-}
`

// Connector is the `databases.default` entry of the server config.
// Field order here is the emitted YAML order.
type Connector struct {
	Connector string `yaml:"connector"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Database  string `yaml:"database,omitempty"`
	Schema    string `yaml:"schema,omitempty"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	// Migrations is off when the database already holds data; the server
	// then treats the introspected datamodel as authoritative.
	Migrations bool `yaml:"migrations"`
	RawAccess  bool `yaml:"rawAccess"`
}

// NewConnector maps credentials to the connector entry.
func NewConnector(creds database.Credentials) Connector {
	return Connector{
		Connector:  string(creds.Engine),
		Host:       creds.Host,
		Port:       creds.Port,
		Database:   creds.Database,
		Schema:     creds.Schema,
		User:       creds.User,
		Password:   creds.Password,
		Migrations: !creds.AlreadyData,
		RawAccess:  true,
	}
}

// ConnectorBlock renders the `databases:` YAML block for the server config,
// indented to the 8 spaces the block scalar requires, blank lines stripped.
func ConnectorBlock(creds database.Credentials) (string, error) {
	doc := struct {
		Databases map[string]Connector `yaml:"databases"`
	}{
		Databases: map[string]Connector{"default": NewConnector(creds)},
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal connector block: %w", err)
	}
	return indent.String(stripBlankLines(string(raw)), 8), nil
}

func stripBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n") + "\n"
}

// engineFragments are the fixed per-engine service and volume definitions.
// Credentials must stay in sync with database.LocalCredentials.
var engineFragments = map[database.Engine]string{
	database.EnginePostgres: `  postgres:
    image: postgres:12
    restart: always
    environment:
      POSTGRES_USER: postgres
      POSTGRES_PASSWORD: clusterkit
    volumes:
      - postgres:/var/lib/postgresql/data
volumes:
  postgres: ~
`,
	database.EngineMySQL: `  mysql:
    image: mysql:5.7
    restart: always
    command: mysqld --max-connections=1000 --sql-mode="ALLOW_INVALID_DATES"
    environment:
      MYSQL_ROOT_PASSWORD: clusterkit
    volumes:
      - mysql:/var/lib/mysql
volumes:
  mysql: ~
`,
	database.EngineMongo: `  mongo:
    image: mongo:3.6
    restart: always
    environment:
      MONGO_INITDB_ROOT_USERNAME: mongo
      MONGO_INITDB_ROOT_PASSWORD: clusterkit
    ports:
      - "27017:27017"
    volumes:
      - mongo:/var/lib/mongo
volumes:
  mongo: ~
`,
}

// EngineFragment returns the fixed compose fragment for the engine.
func EngineFragment(engine database.Engine) (string, error) {
	fragment, ok := engineFragments[engine]
	if !ok {
		return "", fmt.Errorf("no compose fragment for engine %s", engine)
	}
	return fragment, nil
}

// Generate renders the full compose text for a local database setup: base
// template, connector block, then the engine's service/volume fragment.
func Generate(creds database.Credentials) (string, error) {
	block, err := ConnectorBlock(creds)
	if err != nil {
		return "", err
	}
	fragment, err := EngineFragment(creds.Engine)
	if err != nil {
		return "", err
	}
	return BaseTemplate + block + fragment, nil
}

// Project builds the typed compose model for the same setup. Callers that
// want structured access (service names, ports) use this instead of parsing
// the generated text.
func Project(name string, creds database.Credentials) *types.Project {
	dbService := types.ServiceConfig{
		Name:    string(creds.Engine),
		Image:   engineImage(creds.Engine),
		Restart: "always",
	}

	return &types.Project{
		Name: name,
		Services: types.Services{
			"server": {
				Name:    "server",
				Image:   "clusterkit/server:1.0",
				Restart: "always",
				Ports: []types.ServicePortConfig{{
					Target:    ServerPort,
					Published: fmt.Sprintf("%d", ServerPort),
				}},
			},
			string(creds.Engine): dbService,
		},
		Volumes: types.Volumes{
			string(creds.Engine): types.VolumeConfig{Name: string(creds.Engine)},
		},
	}
}

func engineImage(engine database.Engine) string {
	switch engine {
	case database.EnginePostgres:
		return "postgres:12"
	case database.EngineMySQL:
		return "mysql:5.7"
	case database.EngineMongo:
		return "mongo:3.6"
	}
	return ""
}
