package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seo-optimizer/tagscope/analyzer"
	"github.com/seo-optimizer/tagscope/fetcher"
	"github.com/seo-optimizer/tagscope/service"
	"github.com/seo-optimizer/tagscope/storage"
)

var (
	concurrency int
	failOn      string
	pretty      bool
	timeout     time.Duration
	userAgent   string
)

// pageReport is one line of analyze output.
type pageReport struct {
	URL    string           `json:"url"`
	Result *analyzer.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>...",
	Short: "Analyze one or more pages and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var threshold *analyzer.TagStatus
		if failOn != "" {
			status, err := analyzer.ParseStatus(failOn)
			if err != nil {
				return fmt.Errorf("--fail-on: %w", err)
			}
			threshold = &status
		}

		f := fetcher.New(fetcher.Options{Timeout: timeout, UserAgent: userAgent})
		svc := service.New(f, storage.NewMemoryStore(), nil, service.Options{})
		defer svc.Close()

		reports := analyzeAll(cmd.Context(), svc, args, concurrency)
		if err := writeReports(cmd.OutOrStdout(), reports, pretty); err != nil {
			return err
		}
		return checkReports(reports, threshold)
	},
}

// analyzeAll runs the analyses with at most limit in flight. Reports keep the
// order of urls.
func analyzeAll(ctx context.Context, svc *service.Service, urls []string, limit int) []pageReport {
	reports := make([]pageReport, len(urls))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			reports[i].URL = u
			result, err := svc.Analyze(ctx, u)
			if err != nil {
				log.Printf("Failed to analyze %s: %v", u, err)
				reports[i].Error = err.Error()
				return nil
			}
			reports[i].Result = result
			return nil
		})
	}
	g.Wait()

	return reports
}

func writeReports(w io.Writer, reports []pageReport, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// checkReports fails when any page could not be analyzed, or when a page's
// worst tag status is at least as severe as threshold.
func checkReports(reports []pageReport, threshold *analyzer.TagStatus) error {
	failed, flagged := 0, 0
	for _, r := range reports {
		switch {
		case r.Result == nil:
			failed++
		case threshold != nil && r.Result.WorstStatus().Severity() >= threshold.Severity():
			flagged++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d page(s) could not be analyzed", failed, len(reports))
	}
	if flagged > 0 {
		return fmt.Errorf("%d of %d page(s) have tags that are %s or worse", flagged, len(reports), *threshold)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Number of pages analyzed in parallel")
	analyzeCmd.Flags().StringVar(&failOn, "fail-on", "", "Exit with an error if any tag status is at least this severe (good, needs-improvement, missing, error)")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", fetcher.DefaultTimeout, "HTTP timeout per page")
	analyzeCmd.Flags().StringVar(&userAgent, "user-agent", fetcher.DefaultUserAgent, "User-Agent header sent to the page")
}
