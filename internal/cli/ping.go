package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clusterkit-dev/clusterkit/internal/cluster"
)

var PingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure latency to the hosted regions",
	Long:  `Probes every hosted demo region and prints the round-trip latency.`,
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	results := cluster.PingRegions(cmd.Context(), cfg.Regions(), cfg.PingTimeout)
	if len(results) == 0 {
		return fmt.Errorf("no regions configured")
	}
	for _, r := range results {
		if !r.Reachable {
			fmt.Printf("%-12s unreachable\n", cluster.EncodeName(r.Region))
			continue
		}
		fmt.Printf("%-12s %4d ms\n", cluster.EncodeName(r.Region), r.Latency.Milliseconds())
	}
	return nil
}
