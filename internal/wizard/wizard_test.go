package wizard

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clusterkit-dev/clusterkit/internal/cluster"
	"github.com/clusterkit-dev/clusterkit/internal/compose"
	"github.com/clusterkit-dev/clusterkit/internal/database"
	"github.com/clusterkit-dev/clusterkit/internal/prompt/prompttest"
	"github.com/clusterkit-dev/clusterkit/internal/schema"
)

type fakeAPI struct {
	online        bool
	requiresAuth  bool
	authenticated bool
	clusters      []cluster.Cluster
	clustersErr   error

	// existsQueue answers ProjectExists calls in order; exhausted means
	// "name is free".
	existsQueue []bool
	existsErr   error
	existsCalls []string

	loginErr   error
	loginToken string
}

func (f *fakeAPI) CheckOnline(ctx context.Context, endpoint string) bool  { return f.online }
func (f *fakeAPI) RequiresAuth(ctx context.Context, endpoint string) bool { return f.requiresAuth }
func (f *fakeAPI) IsAuthenticated(ctx context.Context) bool               { return f.authenticated }

func (f *fakeAPI) Login(ctx context.Context, token string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loginToken = token
	f.authenticated = true
	return nil
}

func (f *fakeAPI) ListClusters(ctx context.Context) ([]cluster.Cluster, error) {
	return f.clusters, f.clustersErr
}

func (f *fakeAPI) ProjectExists(ctx context.Context, service, stage, workspace string) (bool, error) {
	f.existsCalls = append(f.existsCalls, service+"/"+stage+"/"+workspace)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	if len(f.existsQueue) == 0 {
		return false, nil
	}
	taken := f.existsQueue[0]
	f.existsQueue = f.existsQueue[1:]
	return taken, nil
}

func (f *fakeAPI) EndpointFor(c cluster.Cluster, service, stage, workspace string) string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	if c.Shared && workspace != "" {
		return base + "/" + workspace + "/" + service + "/" + stage
	}
	return base + "/" + service + "/" + stage
}

type fakeIntrospector struct {
	schemas       []string
	result        *database.IntrospectResult
	introspectErr error
	introspected  []string
	closed        bool
}

func (f *fakeIntrospector) ListSchemas(ctx context.Context) ([]string, error) {
	return f.schemas, nil
}

func (f *fakeIntrospector) Introspect(ctx context.Context, schema string) (*database.IntrospectResult, error) {
	f.introspected = append(f.introspected, schema)
	if f.introspectErr != nil {
		return nil, f.introspectErr
	}
	return f.result, nil
}

func (f *fakeIntrospector) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

// introspectVia returns an IntrospectFunc serving the fake and recording the
// credentials it was handed.
func introspectVia(fake *fakeIntrospector, got *database.Credentials) IntrospectFunc {
	return func(ctx context.Context, creds database.Credentials) (database.Introspector, error) {
		if got != nil {
			*got = creds
		}
		return fake, nil
	}
}

func testOptions() Options {
	return Options{
		ProjectDir:    "/home/dev/myapp",
		LocalEndpoint: "http://localhost:4466",
		PingTimeout:   200 * time.Millisecond,
	}
}

func TestDialogNewLocalDatabase(t *testing.T) {
	api := &fakeAPI{}
	script := prompttest.NewScript(
		choiceNewDatabase,
		"MySQL",
		"", // service name, accept default
		"", // stage name, accept default
	)

	d := New(script, api, nil, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	require.True(t, res.NewDatabase)
	require.Equal(t, "myapp", res.Service)
	require.Equal(t, "dev", res.Stage)
	require.Equal(t, schema.DefaultDatamodel, res.Datamodel)
	require.Contains(t, res.Compose, "mysql:")
	require.True(t, strings.HasPrefix(res.Compose, compose.BaseTemplate))
	require.Equal(t, "http://localhost:4466/myapp/dev", res.Endpoint)
	require.NotNil(t, res.Credentials)
	require.Equal(t, database.EngineMySQL, res.Credentials.Engine)
	require.Zero(t, script.Remaining())
}

func TestDialogComposeExistsSkipsEngineQuestion(t *testing.T) {
	api := &fakeAPI{clusters: []cluster.Cluster{
		{Name: "local", Local: true, BaseURL: "http://localhost:4466"},
	}}
	opts := testOptions()
	opts.ComposeExists = true
	script := prompttest.NewScript(choiceNewDatabase, "", "")

	d := New(script, api, nil, nil, opts)
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	// Default engine when the compose file is reused.
	require.Equal(t, database.EnginePostgres, res.Credentials.Engine)
	require.Zero(t, script.Remaining())
}

func TestDialogCustomServer(t *testing.T) {
	api := &fakeAPI{requiresAuth: true}
	script := prompttest.NewScript(
		choiceCustomServer,
		"https://db.example.com",
		"s3cret",
		"api", // service
		"",    // stage, accept default
	)

	d := New(script, api, nil, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "https://db.example.com", res.Endpoint)
	require.Equal(t, "s3cret", res.ManagementSecret)
	require.Empty(t, res.Compose)
	require.Empty(t, res.Datamodel)
	require.Nil(t, res.Cluster)
	require.Equal(t, "api", res.Service)
	require.Equal(t, "dev", res.Stage)
	// Custom servers never go through the project-existence check.
	require.Empty(t, api.existsCalls)
	require.Zero(t, script.Remaining())
}

func TestDialogCustomServerRejectsBadURL(t *testing.T) {
	api := &fakeAPI{}
	script := prompttest.NewScript(
		choiceCustomServer,
		"not a url at all",
		"https://srv.internal:4466",
		"", "",
	)

	d := New(script, api, nil, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://srv.internal:4466", res.Endpoint)
}

func TestDialogExistingDatabaseIntrospects(t *testing.T) {
	const model = "type Post @db(name: \"posts\") {\n  id: ID! @id\n}\n"
	fake := &fakeIntrospector{
		schemas: []string{"public"},
		result:  &database.IntrospectResult{Tables: 3, Datamodel: model},
	}
	var seen database.Credentials
	api := &fakeAPI{}
	script := prompttest.NewScript(
		choiceExistingDatabase,
		"PostgreSQL",
		"host.docker.internal",
		"",      // port, accept default 5432
		"alice", // user
		"pw",    // password
		"appdb", // database
		"n",     // SSL
		"y",     // already contains data
		"",      // schema, pick later
		"", "",  // service, stage
	)

	d := New(script, api, introspectVia(fake, &seen), nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	// Introspected datamodel is carried over verbatim.
	require.Equal(t, model, res.Datamodel)
	require.False(t, res.NewDatabase)
	require.Equal(t, []string{"public"}, fake.introspected)
	require.True(t, fake.closed)

	require.Equal(t, 5432, seen.Port)
	require.Equal(t, "host.docker.internal", seen.Host)

	// Compose: base template plus connector block, no database service.
	require.True(t, strings.HasPrefix(res.Compose, compose.BaseTemplate))
	require.Contains(t, res.Compose, "host.docker.internal")
	require.NotContains(t, res.Compose, "image: postgres")
	require.Zero(t, script.Remaining())
}

func TestDialogExistingDatabaseSchemaChoice(t *testing.T) {
	fake := &fakeIntrospector{
		schemas: []string{"public", "audit"},
		result:  &database.IntrospectResult{Tables: 1, Datamodel: "type A {\n  id: ID! @id\n}\n"},
	}
	api := &fakeAPI{}
	script := prompttest.NewScript(
		choiceExistingDatabase,
		"PostgreSQL",
		"db.internal", "", "alice", "pw", "appdb", "n", "y",
		"",      // no schema given up front
		"audit", // picked from the listed schemas
		"", "",
	)

	d := New(script, api, introspectVia(fake, nil), nil, testOptions())
	_, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"audit"}, fake.introspected)
}

func TestDialogExistingDatabaseWithoutDataSkipsIntrospection(t *testing.T) {
	called := false
	introspect := func(ctx context.Context, creds database.Credentials) (database.Introspector, error) {
		called = true
		return nil, errors.New("must not be called")
	}
	api := &fakeAPI{}
	script := prompttest.NewScript(
		choiceExistingDatabase,
		"MySQL",
		"db.internal", "", "root", "pw", "appdb", "n",
		"n", // no existing data
		"", "",
	)

	d := New(script, api, introspect, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	require.False(t, called)
	require.True(t, res.NewDatabase)
	require.Equal(t, schema.DefaultDatamodel, res.Datamodel)
}

func TestDialogExistingDatabaseNoTablesIsFatal(t *testing.T) {
	fake := &fakeIntrospector{
		schemas: []string{"public"},
		result:  &database.IntrospectResult{Tables: 0},
	}
	api := &fakeAPI{}
	script := prompttest.NewScript(
		choiceExistingDatabase,
		"PostgreSQL",
		"db.internal", "", "alice", "pw", "appdb", "n", "y", "",
	)

	d := New(script, api, introspectVia(fake, nil), nil, testOptions())
	res, err := d.Run(context.Background())
	require.Error(t, err)
	require.True(t, IsFatal(err))
	require.Nil(t, res)
	require.True(t, fake.closed)
}

func TestDialogDemoServerLogsInAndResolvesRegion(t *testing.T) {
	api := &fakeAPI{
		authenticated: false,
		clusters: []cluster.Cluster{
			{Name: "prisma-eu1", Shared: true, BaseURL: "https://eu1.clusterkit.dev"},
		},
	}
	opts := testOptions()
	opts.Regions = map[string]string{"prisma-eu1": "http://127.0.0.1:1"}
	script := prompttest.NewScript(
		choiceDemoServer,
		"token123",
		"demo-eu1", // region shown under its public name
		"", "",     // service, stage (single prompt pass, non-local)
	)

	d := New(script, api, nil, nil, opts)
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "token123", api.loginToken)
	require.NotNil(t, res.Cluster)
	require.Equal(t, "prisma-eu1", res.Cluster.Name)
	require.Equal(t, "https://eu1.clusterkit.dev/myapp/dev", res.Endpoint)
	require.Zero(t, script.Remaining())
}

func TestDialogDemoServerRestartsWhenRegionUnknown(t *testing.T) {
	api := &fakeAPI{authenticated: true, clusters: nil}
	opts := testOptions()
	opts.Regions = map[string]string{"prisma-us1": "http://127.0.0.1:1"}

	// Every restart consumes the same two answers.
	answers := make([]string, 0, 2*maxRestarts)
	for i := 0; i < maxRestarts; i++ {
		answers = append(answers, choiceDemoServer, "demo-us1")
	}
	script := prompttest.NewScript(answers...)

	d := New(script, api, nil, nil, opts)
	res, err := d.Run(context.Background())
	require.Error(t, err)
	require.True(t, IsFatal(err))
	require.Nil(t, res)
	require.Zero(t, script.Remaining())
}

func TestDialogAnonymousSharedClusterGetsGeneratedName(t *testing.T) {
	api := &fakeAPI{
		authenticated: false,
		clusters: []cluster.Cluster{
			{Name: "prisma-us1", Shared: true, BaseURL: "https://us1.clusterkit.dev"},
		},
		existsQueue: []bool{true, false}, // first generated name collides
	}
	script := prompttest.NewScript("demo-us1")

	d := New(script, api, nil, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Regexp(t, regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`), res.Service)
	require.Equal(t, "dev", res.Stage)
	// Collision was resolved by regenerating, never by prompting.
	require.Len(t, api.existsCalls, 2)
	require.Zero(t, script.Remaining())
}

func TestDialogLocalClusterTakenNameReprompts(t *testing.T) {
	api := &fakeAPI{
		clusters: []cluster.Cluster{
			{Name: "local", Local: true, BaseURL: "http://localhost:4466"},
		},
		existsQueue: []bool{true, false},
	}
	script := prompttest.NewScript(
		"local",
		"", "", // first pass, defaults myapp/dev, taken
		"api", "", // second pass after the collision notice
	)

	d := New(script, api, nil, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, "api", res.Service)
	require.Equal(t, "dev", res.Stage)

	var sawCollision bool
	for _, q := range script.Asked {
		if strings.Contains(q, "already exists") {
			sawCollision = true
		}
	}
	require.True(t, sawCollision)
	require.Zero(t, script.Remaining())
}

func TestDialogLocalClusterFreeNameNotReprompted(t *testing.T) {
	api := &fakeAPI{
		clusters: []cluster.Cluster{
			{Name: "local", Local: true, BaseURL: "http://localhost:4466"},
		},
	}
	script := prompttest.NewScript("local", "", "")

	d := New(script, api, nil, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "myapp", res.Service)
	require.Len(t, api.existsCalls, 1)
	require.Zero(t, script.Remaining())
}

func TestNamedClusterUnknownIsFatal(t *testing.T) {
	d := New(prompttest.NewScript(), &fakeAPI{}, nil, nil, testOptions())
	_, err := d.namedCluster("acme/ghost", nil, true)
	require.ErrorIs(t, err, ErrNoCluster)
	require.True(t, IsFatal(err))
}

func TestDialogProjectExistsErrorPropagates(t *testing.T) {
	api := &fakeAPI{
		clusters: []cluster.Cluster{
			{Name: "local", Local: true, BaseURL: "http://localhost:4466"},
		},
		existsErr: errors.New("api down"),
	}
	script := prompttest.NewScript("local", "", "")

	d := New(script, api, nil, nil, testOptions())
	_, err := d.Run(context.Background())
	require.Error(t, err)
	require.False(t, IsFatal(err))
	require.Contains(t, err.Error(), "api down")
}

func TestDialogGeneratorQuestion(t *testing.T) {
	for _, answer := range []string{GeneratorGo, ""} {
		api := &fakeAPI{}
		opts := testOptions()
		opts.AskGenerator = true
		script := prompttest.NewScript(choiceNewDatabase, "PostgreSQL", "", "", answer)

		d := New(script, api, nil, nil, opts)
		res, err := d.Run(context.Background())
		require.NoError(t, err)

		want := answer
		if want == "" {
			want = GeneratorNone
		}
		require.Equal(t, want, res.Generator)
	}
}

func TestDialogClusterListFailureStillShowsMenu(t *testing.T) {
	api := &fakeAPI{clustersErr: errors.New("platform unreachable")}
	script := prompttest.NewScript(choiceNewDatabase, "PostgreSQL", "", "")

	d := New(script, api, nil, nil, testOptions())
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.NewDatabase)
}

func TestDefaultServiceName(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"/home/dev/myapp", "myapp"},
		{"/home/dev/MyApp", "my-app"},
		{"/home/dev/my_app", "my-app"},
		{".", "service"},
		{"", "service"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, defaultServiceName(tt.dir), "dir %q", tt.dir)
	}
}

func TestValidateServiceName(t *testing.T) {
	require.NoError(t, validateServiceName("my-service"))
	require.NoError(t, validateServiceName("api2"))
	require.Error(t, validateServiceName("a"))
	require.Error(t, validateServiceName("My-Service"))
	require.Error(t, validateServiceName("-leading"))
	require.Error(t, validateServiceName("trailing-"))
}
