package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clusterkit-dev/clusterkit/internal/version"
)

type VersionOutput struct {
	CkctlVersion string `json:"ckctl_version"`
	GitCommit    string `json:"git_commit"`
	BuildDate    string `json:"build_date"`
}

var jsonOutput bool

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Displays the version of ckctl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output := VersionOutput{
			CkctlVersion: version.Version,
			GitCommit:    version.GitCommit,
			BuildDate:    version.BuildDate,
		}

		if jsonOutput {
			jsonBytes, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal version output: %w", err)
			}
			fmt.Println(string(jsonBytes))
			return nil
		}

		fmt.Printf("ckctl version %s\n", output.CkctlVersion)
		fmt.Printf("Git commit: %s\n", output.GitCommit)
		fmt.Printf("Build date: %s\n", output.BuildDate)
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version information in JSON format")
}
