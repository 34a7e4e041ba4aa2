package database

import (
	"strings"
	"testing"
)

func TestDefaultPorts(t *testing.T) {
	tests := []struct {
		engine Engine
		port   int
	}{
		{EnginePostgres, 5432},
		{EngineMySQL, 3306},
		{EngineMongo, 27017},
	}
	for _, tt := range tests {
		t.Run(string(tt.engine), func(t *testing.T) {
			if got := tt.engine.DefaultPort(); got != tt.port {
				t.Errorf("DefaultPort() = %d, want %d", got, tt.port)
			}
		})
	}
}

func TestParseEngine(t *testing.T) {
	tests := []struct {
		input   string
		want    Engine
		wantErr bool
	}{
		{"postgres", EnginePostgres, false},
		{"postgresql", EnginePostgres, false},
		{"mysql", EngineMySQL, false},
		{"mongo", EngineMongo, false},
		{"mongodb", EngineMongo, false},
		{"oracle", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEngine(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEngine(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEngine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"host.docker.internal", "localhost"},
		{"docker.for.mac.localhost", "localhost"},
		{"example.com", "example.com"},
		{"localhost", "localhost"},
		{"10.0.0.5", "10.0.0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := ResolveHost(tt.host); got != tt.want {
				t.Errorf("ResolveHost(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestWithResolvedHost_DoesNotMutateOriginal(t *testing.T) {
	creds := Credentials{Engine: EnginePostgres, Host: "host.docker.internal"}
	resolved := creds.WithResolvedHost()
	if resolved.Host != "localhost" {
		t.Errorf("resolved host = %q, want localhost", resolved.Host)
	}
	if creds.Host != "host.docker.internal" {
		t.Errorf("original credentials were mutated: host = %q", creds.Host)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  string
	}{
		{
			"postgres no ssl",
			Credentials{Engine: EnginePostgres, Host: "db", Port: 5432, User: "u", Password: "p", Database: "app"},
			"postgres://u:p@db:5432/app?sslmode=disable",
		},
		{
			"postgres ssl",
			Credentials{Engine: EnginePostgres, Host: "db", Port: 5432, User: "u", Password: "p", Database: "app", SSL: true},
			"postgres://u:p@db:5432/app?sslmode=require",
		},
		{
			"mysql",
			Credentials{Engine: EngineMySQL, Host: "db", Port: 3306, User: "root", Password: "p", Database: "app"},
			"root:p@tcp(db:3306)/app?parseTime=true&tls=false",
		},
		{
			"mongo",
			Credentials{Engine: EngineMongo, Host: "db", Port: 27017, User: "m", Password: "p", Database: "app"},
			"mongodb://m:p@db:27017/app?ssl=false",
		},
		{
			// A space must become %20, not "+": userinfo does not decode "+".
			"postgres password with space",
			Credentials{Engine: EnginePostgres, Host: "db", Port: 5432, User: "u", Password: "p w", Database: "app"},
			"postgres://u:p%20w@db:5432/app?sslmode=disable",
		},
		{
			"mongo password with reserved characters",
			Credentials{Engine: EngineMongo, Host: "db", Port: 27017, User: "m", Password: "p@ss w", Database: "app"},
			"mongodb://m:p%40ss%20w@db:27017/app?ssl=false",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalCredentials(t *testing.T) {
	for _, engine := range Engines() {
		t.Run(string(engine), func(t *testing.T) {
			creds := LocalCredentials(engine)
			if creds.Port != engine.DefaultPort() {
				t.Errorf("port = %d, want engine default %d", creds.Port, engine.DefaultPort())
			}
			if creds.Host != string(engine) {
				t.Errorf("host = %q, want compose service name %q", creds.Host, engine)
			}
			if creds.User == "" || creds.Password == "" {
				t.Error("local credentials must carry a fixed user and password")
			}
			if creds.AlreadyData {
				t.Error("fresh local database must not be flagged as already holding data")
			}
			if strings.Contains(creds.DSN(), "%!") {
				t.Errorf("DSN rendered badly: %s", creds.DSN())
			}
		})
	}
}
