package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clusterkit-dev/clusterkit/internal/cluster"
	"github.com/clusterkit-dev/clusterkit/internal/compose"
	"github.com/clusterkit-dev/clusterkit/internal/logging"
	"github.com/clusterkit-dev/clusterkit/internal/prompt"
	"github.com/clusterkit-dev/clusterkit/internal/schema"
	"github.com/clusterkit-dev/clusterkit/internal/wizard"
)

const (
	composeFileName   = "docker-compose.yml"
	datamodelFileName = "datamodel.graphql"
	projectFileName   = "clusterkit.yml"
)

var (
	initDir             string
	initSelectGenerator bool
	initVerbose         bool
)

var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up a service endpoint",
	Long: `Walks through endpoint setup: a new local database via Docker, an
existing database, a hosted demo server, or a server you run yourself.`,
	RunE: runInit,
}

func init() {
	InitCmd.Flags().StringVar(&initDir, "dir", ".", "Project directory to set up")
	InitCmd.Flags().BoolVar(&initSelectGenerator, "select-generator", false, "Ask which client to generate")
	InitCmd.Flags().BoolVar(&initVerbose, "verbose", false, "Also print the server's management datamodel")
}

// projectFile is what `ckctl init` persists as clusterkit.yml.
type projectFile struct {
	Endpoint  string `yaml:"endpoint"`
	Service   string `yaml:"service"`
	Stage     string `yaml:"stage"`
	Workspace string `yaml:"workspace,omitempty"`
	Cluster   string `yaml:"cluster,omitempty"`
	Datamodel string `yaml:"datamodel,omitempty"`
	Generator string `yaml:"generator,omitempty"`
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(initDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory: %w", err)
	}

	logger := logging.NewWizardLogger("init")
	defer func() { _ = logger.Sync() }()

	api := cluster.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)

	_, statErr := os.Stat(filepath.Join(dir, composeFileName))
	opts := wizard.Options{
		ProjectDir:    dir,
		ComposeExists: statErr == nil,
		AskGenerator:  initSelectGenerator,
		LocalEndpoint: cfg.LocalEndpoint,
		Regions:       cfg.Regions(),
		PingTimeout:   cfg.PingTimeout,
	}

	dialog := wizard.New(prompt.NewTerminal(), api, nil, logger, opts)
	res, err := dialog.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, prompt.ErrCanceled) {
			fmt.Println("Canceled.")
			return nil
		}
		return err
	}

	if err := persistResult(dir, res); err != nil {
		return err
	}

	fmt.Printf("✓ Endpoint: %s\n", res.Endpoint)
	if res.NewDatabase && res.Compose != "" && res.Credentials != nil {
		fmt.Printf("Run `docker-compose up -d` to start %s.\n",
			strings.Join(serviceNames(res), " and "))
	}

	if initVerbose {
		fmt.Println("\nManagement datamodel used by the server:")
		fmt.Print(schema.ManagementDatamodel, "\n")
	}
	return nil
}

// serviceNames lists the services of the generated setup, taken from the
// typed compose model rather than re-parsing the emitted text.
func serviceNames(res *wizard.Result) []string {
	project := compose.Project(res.Service, *res.Credentials)
	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// persistResult writes the dialog outcome into the project directory:
// compose file and datamodel when generated, plus clusterkit.yml.
func persistResult(dir string, res *wizard.Result) error {
	if res.Compose != "" {
		if err := os.WriteFile(filepath.Join(dir, composeFileName), []byte(res.Compose), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", composeFileName, err)
		}
		fmt.Printf("✓ Wrote %s\n", composeFileName)
	}

	datamodelPath := ""
	if res.Datamodel != "" {
		datamodelPath = datamodelFileName
		if err := os.WriteFile(filepath.Join(dir, datamodelFileName), []byte(res.Datamodel), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", datamodelFileName, err)
		}
		fmt.Printf("✓ Wrote %s\n", datamodelFileName)
	}

	project := projectFile{
		Endpoint:  res.Endpoint,
		Service:   res.Service,
		Stage:     res.Stage,
		Workspace: res.Workspace,
		Datamodel: datamodelPath,
	}
	if res.Cluster != nil {
		project.Cluster = res.Cluster.Name
	}
	if res.Generator != "" && res.Generator != wizard.GeneratorNone {
		project.Generator = res.Generator
	}
	data, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", projectFileName, err)
	}
	if err := os.WriteFile(filepath.Join(dir, projectFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", projectFileName, err)
	}
	fmt.Printf("✓ Wrote %s\n", projectFileName)
	return nil
}
