package cluster

import (
	"context"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// RegionLatency is the measured round-trip to one hosted region.
type RegionLatency struct {
	Region    string
	URL       string
	Latency   time.Duration
	Reachable bool
}

// PingRegions probes each region concurrently and reports the round-trip
// latency. An unreachable region is reported with Reachable=false, never as
// an error; ordering between probes does not matter for correctness.
func PingRegions(ctx context.Context, regions map[string]string, timeout time.Duration) []RegionLatency {
	results := make([]RegionLatency, 0, len(regions))
	for region, u := range regions {
		results = append(results, RegionLatency{Region: region, URL: u})
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range results {
		i := i // per-iteration copy; the go directive predates Go 1.22 loop scoping
		g.Go(func() error {
			results[i] = pingOne(ctx, results[i], timeout)
			return nil
		})
	}
	_ = g.Wait() // probes never return errors

	sort.Slice(results, func(i, j int) bool { return results[i].Region < results[j].Region })
	return results
}

func pingOne(ctx context.Context, probe RegionLatency, timeout time.Duration) RegionLatency {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe.URL+"/status", nil)
	if err != nil {
		return probe
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return probe
	}
	defer func() { _ = resp.Body.Close() }()

	probe.Latency = time.Since(start)
	probe.Reachable = resp.StatusCode == http.StatusOK
	return probe
}
