// Package wizard implements the interactive endpoint configuration dialog.
// It walks the user from a top-level menu choice to a fully resolved
// endpoint: a cluster, service/stage names, and generated compose and
// datamodel text where applicable.
package wizard

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/stoewer/go-strcase"
	"go.uber.org/zap"

	"github.com/clusterkit-dev/clusterkit/internal/cluster"
	"github.com/clusterkit-dev/clusterkit/internal/compose"
	"github.com/clusterkit-dev/clusterkit/internal/database"
	"github.com/clusterkit-dev/clusterkit/internal/prompt"
	"github.com/clusterkit-dev/clusterkit/internal/schema"
)

// Top-level menu choices. Anything else selected from the menu is treated
// as a `[workspace/]cluster` label.
const (
	choiceNewDatabase      = "Create new database"
	choiceExistingDatabase = "Use existing database"
	choiceDemoServer       = "Try a hosted demo server"
	choiceCustomServer     = "Use other server"
)

// Client generator targets offered after the endpoint is resolved.
const (
	GeneratorTypeScript = "typescript-client"
	GeneratorFlow       = "flow-client"
	GeneratorJavaScript = "javascript-client"
	GeneratorGo         = "go-client"
	GeneratorNone       = "no-generation"
)

// Generators returns the client generator choices in menu order.
func Generators() []string {
	return []string{GeneratorTypeScript, GeneratorFlow, GeneratorJavaScript, GeneratorGo, GeneratorNone}
}

// DefaultStage is the stage name offered when the user has no preference.
const DefaultStage = "dev"

// maxRestarts bounds the demo-server self-restart loop.
const maxRestarts = 5

// ClusterAPI is the slice of the platform client the dialog depends on.
type ClusterAPI interface {
	CheckOnline(ctx context.Context, endpoint string) bool
	RequiresAuth(ctx context.Context, endpoint string) bool
	IsAuthenticated(ctx context.Context) bool
	Login(ctx context.Context, token string) error
	ListClusters(ctx context.Context) ([]cluster.Cluster, error)
	ProjectExists(ctx context.Context, service, stage, workspace string) (bool, error)
	EndpointFor(c cluster.Cluster, service, stage, workspace string) string
}

// IntrospectFunc opens an introspection connection for the credentials.
type IntrospectFunc = func(ctx context.Context, creds database.Credentials) (database.Introspector, error)

// Options configures one dialog run.
type Options struct {
	// ProjectDir names the project; its folder name seeds the default
	// service name.
	ProjectDir string
	// ComposeExists indicates a compose file is already present, so the
	// local branch reuses it instead of creating a fresh database.
	ComposeExists bool
	// AskGenerator adds the client-generator question at the end.
	AskGenerator bool
	// LocalEndpoint is the local server probed for reachability.
	LocalEndpoint string
	// Regions maps hosted region cluster names to their base URLs.
	Regions map[string]string
	// PingTimeout bounds each region probe.
	PingTimeout time.Duration
}

// Result is the resolved endpoint configuration, produced exactly once per
// successful run. The caller persists Compose and Datamodel.
type Result struct {
	Endpoint         string
	Cluster          *cluster.Cluster
	Service          string
	Stage            string
	Workspace        string
	Compose          string
	Datamodel        string
	NewDatabase      bool
	ManagementSecret string
	Generator        string
	Credentials      *database.Credentials
}

// Dialog is the endpoint configuration wizard.
type Dialog struct {
	prompter   prompt.Prompter
	api        ClusterAPI
	introspect IntrospectFunc
	logger     *zap.Logger
	opts       Options
}

// New creates a Dialog. A nil introspect falls back to database.Connect,
// a nil logger to a no-op logger.
func New(prompter prompt.Prompter, api ClusterAPI, introspect IntrospectFunc, logger *zap.Logger, opts Options) *Dialog {
	if introspect == nil {
		introspect = database.Connect
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialog{
		prompter:   prompter,
		api:        api,
		introspect: introspect,
		logger:     logger,
		opts:       opts,
	}
}

// Run executes the dialog until it resolves an endpoint. The demo-server
// branch may restart the whole dialog; the loop is bounded so a cluster
// list that never matches cannot recurse forever.
func (d *Dialog) Run(ctx context.Context) (*Result, error) {
	for attempt := 0; attempt < maxRestarts; attempt++ {
		result, restart, err := d.runOnce(ctx)
		if err != nil {
			return nil, err
		}
		if restart {
			d.logger.Debug("no hosted cluster matched, restarting dialog",
				zap.Int("attempt", attempt+1))
			continue
		}
		return result, nil
	}
	return nil, ErrNoCluster
}

// branchResult carries what a menu branch resolved before the shared
// post-branch steps run.
type branchResult struct {
	cluster          *cluster.Cluster
	endpoint         string
	compose          string
	datamodel        string
	newDatabase      bool
	managementSecret string
	creds            *database.Credentials
	service          string
	stage            string
	// namesFixed means the service name was derived (not asked) and must
	// not be re-prompted; collisions regenerate instead.
	namesFixed bool
}

func (d *Dialog) runOnce(ctx context.Context) (*Result, bool, error) {
	// Environment facts feeding menu construction. Probe failures are
	// facts ("not running", "not logged in"), not errors.
	localRunning := d.api.CheckOnline(ctx, d.opts.LocalEndpoint)
	authenticated := d.api.IsAuthenticated(ctx)
	clusters, err := d.api.ListClusters(ctx)
	if err != nil {
		d.logger.Debug("cluster listing failed, menu shows none", zap.Error(err))
		clusters = nil
	}

	choice, err := d.prompter.Select(ctx, prompt.SelectQuestion{
		Message: "How do you want to set up your service endpoint?",
		Options: d.menuOptions(clusters, localRunning),
		Default: choiceNewDatabase,
	})
	if err != nil {
		return nil, false, err
	}

	var branch branchResult
	switch choice {
	case choiceCustomServer:
		branch, err = d.customServer(ctx)
	case choiceNewDatabase:
		branch, err = d.localDatabase(ctx, clusters)
	case choiceExistingDatabase:
		branch, err = d.existingDatabase(ctx, clusters)
	case choiceDemoServer:
		var restart bool
		branch, restart, err = d.demoServer(ctx, authenticated)
		if restart {
			return nil, true, nil
		}
	default:
		branch, err = d.namedCluster(choice, clusters, authenticated)
	}
	if err != nil {
		return nil, false, err
	}

	service, stage := branch.service, branch.stage
	if service == "" {
		service = defaultServiceName(d.opts.ProjectDir)
	}
	if stage == "" {
		stage = DefaultStage
	}
	// Local targets are asked here once; non-local targets are asked inside
	// the uniqueness loop instead, so they see a single prompt pass.
	if !branch.namesFixed && (branch.cluster == nil || branch.cluster.Local) {
		service, stage, err = d.collectNames(ctx, service, stage)
		if err != nil {
			return nil, false, err
		}
	}

	workspace := ""
	if branch.cluster != nil {
		workspace = branch.cluster.Workspace
	}

	service, stage, err = d.ensureUniqueNames(ctx, branch.cluster, service, stage, workspace, branch.namesFixed)
	if err != nil {
		return nil, false, err
	}

	endpoint := branch.endpoint
	if endpoint == "" {
		if branch.cluster == nil {
			return nil, false, ErrNoCluster
		}
		endpoint = d.api.EndpointFor(*branch.cluster, service, stage, workspace)
	}

	result := &Result{
		Endpoint:         endpoint,
		Cluster:          branch.cluster,
		Service:          service,
		Stage:            stage,
		Workspace:        workspace,
		Compose:          branch.compose,
		Datamodel:        branch.datamodel,
		NewDatabase:      branch.newDatabase,
		ManagementSecret: branch.managementSecret,
		Credentials:      branch.creds,
	}

	if d.opts.AskGenerator {
		options := make([]prompt.SelectOption, 0, len(Generators()))
		for _, g := range Generators() {
			options = append(options, prompt.SelectOption{Label: g})
		}
		generator, err := d.prompter.Select(ctx, prompt.SelectQuestion{
			Message: "Select the client to generate",
			Options: options,
			Default: GeneratorNone,
		})
		if err != nil {
			return nil, false, err
		}
		result.Generator = generator
	}

	return result, false, nil
}

func (d *Dialog) menuOptions(clusters []cluster.Cluster, localRunning bool) []prompt.SelectOption {
	options := []prompt.SelectOption{
		{Label: "Set up a new database:", Separator: true},
		{Label: choiceNewDatabase, Detail: "MySQL, PostgreSQL or MongoDB via Docker"},
		{Label: choiceExistingDatabase, Detail: "introspect its schema"},
		{Label: "Or deploy to a server:", Separator: true},
		{Label: choiceDemoServer, Detail: "no local setup needed"},
		{Label: choiceCustomServer, Detail: "enter the endpoint yourself"},
	}
	if len(clusters) == 0 {
		return options
	}
	options = append(options, prompt.SelectOption{Label: "Your clusters:", Separator: true})
	for _, c := range clusters {
		detail := ""
		if c.Local && localRunning {
			detail = "running"
		}
		options = append(options, prompt.SelectOption{Label: cluster.DisplayName(c), Detail: detail})
	}
	return options
}

// customServer asks for the endpoint directly. No compose text is generated
// for a server the user operates themselves.
func (d *Dialog) customServer(ctx context.Context) (branchResult, error) {
	endpoint, err := d.prompter.Text(ctx, prompt.TextQuestion{
		Message:  "Enter the endpoint URL of your server",
		Required: true,
		Validate: validateEndpointURL,
	})
	if err != nil {
		return branchResult{}, err
	}

	var secret string
	if d.api.RequiresAuth(ctx, endpoint) {
		secret, err = d.prompter.Password(ctx, prompt.TextQuestion{
			Message:  "Enter the management API secret of your server",
			Required: true,
		})
		if err != nil {
			return branchResult{}, err
		}
	}

	return branchResult{endpoint: endpoint, managementSecret: secret}, nil
}

// localDatabase provisions a fresh Docker-based database next to the local
// server.
func (d *Dialog) localDatabase(ctx context.Context, clusters []cluster.Cluster) (branchResult, error) {
	local, found := findLocalCluster(clusters)
	if !found {
		local = cluster.Cluster{Name: "local", Local: true, BaseURL: d.opts.LocalEndpoint}
	}

	engine := database.EnginePostgres
	if !d.opts.ComposeExists {
		label, err := d.prompter.Select(ctx, prompt.SelectQuestion{
			Message: "Select the database your server should use",
			Options: engineOptions(),
			Default: engineLabel(database.EnginePostgres),
		})
		if err != nil {
			return branchResult{}, err
		}
		engine = engineForLabel(label)
	}

	creds := database.LocalCredentials(engine)
	composeText, err := compose.Generate(creds)
	if err != nil {
		return branchResult{}, err
	}

	return branchResult{
		cluster:     &local,
		compose:     composeText,
		datamodel:   schema.DefaultDatamodel,
		newDatabase: true,
		creds:       &creds,
	}, nil
}

// existingDatabase collects full connection parameters and, when the
// database already holds data, introspects it.
func (d *Dialog) existingDatabase(ctx context.Context, clusters []cluster.Cluster) (branchResult, error) {
	creds, err := d.collectCredentials(ctx)
	if err != nil {
		return branchResult{}, err
	}

	local, found := findLocalCluster(clusters)
	if !found {
		local = cluster.Cluster{Name: "local", Local: true, BaseURL: d.opts.LocalEndpoint}
	}

	branch := branchResult{
		cluster:     &local,
		datamodel:   schema.DefaultDatamodel,
		newDatabase: !creds.AlreadyData,
		creds:       &creds,
	}

	if creds.AlreadyData {
		datamodel, err := d.introspectExisting(ctx, creds)
		if err != nil {
			return branchResult{}, err
		}
		branch.datamodel = datamodel
	}

	// The connector block keeps the host exactly as entered: it is read by
	// the server container, not by this process.
	block, err := compose.ConnectorBlock(creds)
	if err != nil {
		return branchResult{}, err
	}
	branch.compose = compose.BaseTemplate + block

	return branch, nil
}

func (d *Dialog) collectCredentials(ctx context.Context) (database.Credentials, error) {
	var creds database.Credentials

	label, err := d.prompter.Select(ctx, prompt.SelectQuestion{
		Message: "What kind of database do you want to connect to?",
		Options: engineOptions(),
	})
	if err != nil {
		return creds, err
	}
	creds.Engine = engineForLabel(label)

	if creds.Host, err = d.prompter.Text(ctx, prompt.TextQuestion{
		Message:  "Enter database host",
		Required: true,
	}); err != nil {
		return creds, err
	}

	portStr, err := d.prompter.Text(ctx, prompt.TextQuestion{
		Message:  "Enter database port",
		Default:  strconv.Itoa(creds.Engine.DefaultPort()),
		Required: true,
		Validate: validatePort,
	})
	if err != nil {
		return creds, err
	}
	creds.Port, _ = strconv.Atoi(portStr)

	if creds.User, err = d.prompter.Text(ctx, prompt.TextQuestion{
		Message:  "Enter database user",
		Required: true,
	}); err != nil {
		return creds, err
	}

	if creds.Password, err = d.prompter.Password(ctx, prompt.TextQuestion{
		Message: "Enter database password",
	}); err != nil {
		return creds, err
	}

	if creds.Database, err = d.prompter.Text(ctx, prompt.TextQuestion{
		Message:  "Enter name of existing database",
		Required: true,
	}); err != nil {
		return creds, err
	}

	if creds.SSL, err = d.prompter.Confirm(ctx, prompt.ConfirmQuestion{
		Message: "Use SSL?",
	}); err != nil {
		return creds, err
	}

	if creds.AlreadyData, err = d.prompter.Confirm(ctx, prompt.ConfirmQuestion{
		Message: "Does your database contain existing data?",
		Default: true,
	}); err != nil {
		return creds, err
	}

	if creds.Engine == database.EnginePostgres {
		if creds.Schema, err = d.prompter.Text(ctx, prompt.TextQuestion{
			Message: "Enter name of existing schema (leave empty to pick later)",
		}); err != nil {
			return creds, err
		}
	}

	return creds, nil
}

// introspectExisting reverse-engineers a datamodel from the user's
// database. A schema without tables is fatal: the user declared data, so
// continuing with an empty model would be wrong.
func (d *Dialog) introspectExisting(ctx context.Context, creds database.Credentials) (string, error) {
	intro, err := d.introspect(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("could not connect to database %s:%d: %w", creds.Host, creds.Port, err)
	}
	defer func() {
		if closeErr := intro.Close(ctx); closeErr != nil {
			d.logger.Debug("closing introspection connection failed", zap.Error(closeErr))
		}
	}()

	schemaName := creds.Schema
	if schemaName == "" {
		schemas, err := intro.ListSchemas(ctx)
		if err != nil {
			return "", fmt.Errorf("could not list database schemas: %w", err)
		}
		switch len(schemas) {
		case 0:
			return "", Fatalf("no schemas found in database %q", creds.Database)
		case 1:
			schemaName = schemas[0]
		default:
			options := make([]prompt.SelectOption, 0, len(schemas))
			for _, s := range schemas {
				options = append(options, prompt.SelectOption{Label: s})
			}
			schemaName, err = d.prompter.Select(ctx, prompt.SelectQuestion{
				Message: "Select the schema to introspect",
				Options: options,
			})
			if err != nil {
				return "", err
			}
		}
	}

	result, err := intro.Introspect(ctx, schemaName)
	if err != nil {
		return "", fmt.Errorf("could not introspect schema %q: %w", schemaName, err)
	}
	if result.Tables == 0 {
		return "", Fatalf("schema %q contains no tables; there is nothing to introspect", schemaName)
	}

	d.logger.Debug("introspected schema",
		zap.String("schema", schemaName),
		zap.Int("tables", result.Tables))
	return result.Datamodel, nil
}

// demoServer resolves one of the fixed hosted regions, logging the user in
// first when needed. A region with no matching cluster restarts the dialog.
func (d *Dialog) demoServer(ctx context.Context, authenticated bool) (branchResult, bool, error) {
	if !authenticated {
		token, err := d.prompter.Password(ctx, prompt.TextQuestion{
			Message:  "Paste your platform token",
			Required: true,
		})
		if err != nil {
			return branchResult{}, false, err
		}
		if err := d.api.Login(ctx, token); err != nil {
			return branchResult{}, false, err
		}
	}

	pings := cluster.PingRegions(ctx, d.opts.Regions, d.pingTimeout())
	options := make([]prompt.SelectOption, 0, len(pings))
	for _, p := range pings {
		detail := "unreachable"
		if p.Reachable {
			detail = fmt.Sprintf("%d ms", p.Latency.Milliseconds())
		}
		options = append(options, prompt.SelectOption{
			Label:  cluster.EncodeName(p.Region),
			Detail: detail,
		})
	}

	label, err := d.prompter.Select(ctx, prompt.SelectQuestion{
		Message: "Choose the region of your demo server",
		Options: options,
	})
	if err != nil {
		return branchResult{}, false, err
	}
	_, name := cluster.ParseChoice(label)

	// Re-list: login may have widened what is visible.
	clusters, err := d.api.ListClusters(ctx)
	if err != nil {
		return branchResult{}, false, fmt.Errorf("failed to list clusters: %w", err)
	}
	cl, ok := cluster.FindByName(clusters, name, "")
	if !ok {
		return branchResult{}, true, nil
	}
	return branchResult{cluster: &cl}, false, nil
}

// namedCluster resolves a `[workspace/]name` menu label against the
// fetched cluster list.
func (d *Dialog) namedCluster(label string, clusters []cluster.Cluster, authenticated bool) (branchResult, error) {
	workspace, name := cluster.ParseChoice(label)
	cl, ok := cluster.FindByName(clusters, name, workspace)
	if !ok {
		return branchResult{}, ErrNoCluster
	}

	branch := branchResult{cluster: &cl}
	if !authenticated && cl.Shared {
		// Anonymous deploys to a shared cluster get a generated public
		// name instead of a prompt.
		branch.service = RandomName()
		branch.stage = DefaultStage
		branch.namesFixed = true
	}
	return branch, nil
}

func (d *Dialog) collectNames(ctx context.Context, service, stage string) (string, string, error) {
	service, err := d.prompter.Text(ctx, prompt.TextQuestion{
		Message:  "Choose a name for your service",
		Default:  service,
		Required: true,
		Validate: validateServiceName,
	})
	if err != nil {
		return "", "", err
	}

	stage, err = d.prompter.Text(ctx, prompt.TextQuestion{
		Message:  "Choose a name for your stage",
		Default:  stage,
		Required: true,
		Validate: validateServiceName,
	})
	if err != nil {
		return "", "", err
	}

	return service, stage, nil
}

// ensureUniqueNames re-prompts for service/stage exactly when the target
// cluster is non-local or the (service, stage, workspace) triple is taken.
// Uniqueness is cluster-scoped.
func (d *Dialog) ensureUniqueNames(ctx context.Context, cl *cluster.Cluster, service, stage, workspace string, namesFixed bool) (string, string, error) {
	if cl == nil {
		return service, stage, nil
	}

	taken, err := d.api.ProjectExists(ctx, service, stage, workspace)
	if err != nil {
		return "", "", fmt.Errorf("failed to check project name: %w", err)
	}
	if cl.Local && !taken {
		return service, stage, nil
	}

	if namesFixed {
		// Generated names are never prompted; collide, regenerate.
		for taken {
			service = RandomName()
			taken, err = d.api.ProjectExists(ctx, service, stage, workspace)
			if err != nil {
				return "", "", fmt.Errorf("failed to check project name: %w", err)
			}
		}
		return service, stage, nil
	}

	for {
		message := "Choose a name for your service"
		if taken {
			message = fmt.Sprintf("%s/%s already exists on this cluster, choose another service name", service, stage)
		}
		service, err = d.prompter.Text(ctx, prompt.TextQuestion{
			Message:  message,
			Default:  service,
			Required: true,
			Validate: validateServiceName,
		})
		if err != nil {
			return "", "", err
		}
		stage, err = d.prompter.Text(ctx, prompt.TextQuestion{
			Message:  "Choose a name for your stage",
			Default:  stage,
			Required: true,
			Validate: validateServiceName,
		})
		if err != nil {
			return "", "", err
		}

		taken, err = d.api.ProjectExists(ctx, service, stage, workspace)
		if err != nil {
			return "", "", fmt.Errorf("failed to check project name: %w", err)
		}
		if !taken {
			return service, stage, nil
		}
	}
}

func (d *Dialog) pingTimeout() time.Duration {
	if d.opts.PingTimeout > 0 {
		return d.opts.PingTimeout
	}
	return 5 * time.Second
}

func findLocalCluster(clusters []cluster.Cluster) (cluster.Cluster, bool) {
	for _, c := range clusters {
		if c.Local {
			return c, true
		}
	}
	return cluster.Cluster{}, false
}

// Engine menu labels, a closed table alongside database.Engines.
var engineLabels = map[database.Engine]string{
	database.EnginePostgres: "PostgreSQL",
	database.EngineMySQL:    "MySQL",
	database.EngineMongo:    "MongoDB",
}

func engineLabel(engine database.Engine) string { return engineLabels[engine] }

func engineForLabel(label string) database.Engine {
	for engine, l := range engineLabels {
		if l == label {
			return engine
		}
	}
	return database.EnginePostgres
}

func engineOptions() []prompt.SelectOption {
	options := make([]prompt.SelectOption, 0, len(database.Engines()))
	for _, engine := range database.Engines() {
		options = append(options, prompt.SelectOption{Label: engineLabel(engine)})
	}
	return options
}

func defaultServiceName(projectDir string) string {
	base := filepath.Base(projectDir)
	if base == "." || base == "/" || base == "" {
		return "service"
	}
	return strcase.KebabCase(base)
}

// serviceNameRegex matches the platform constraint for service and stage
// names: lowercase alphanumeric with inner hyphens, at least 2 characters.
var serviceNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

func validateServiceName(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	if !serviceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid name %q: lowercase letters, digits and hyphens only, starting with a letter", name)
	}
	return nil
}

func validateEndpointURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint URL must start with http:// or https://")
	}
	if parsed.Host == "" {
		return fmt.Errorf("endpoint URL must include a host")
	}
	return nil
}

func validatePort(raw string) error {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
