package commands

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewCheckCmd creates the check command, which probes a running server's extended health
func NewCheckCmd() *cobra.Command {
	var baseURL string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a running server",
		Long:  "Call /healthz?mode=extended on a running server and print every dependency check",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			url := strings.TrimRight(baseURL, "/") + "/healthz?mode=extended"
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("call %s: %w", url, err)
			}
			defer func() { _ = resp.Body.Close() }()

			var report healthReport
			if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", report.Status)
			names := make([]string, 0, len(report.Checks))
			for name := range report.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %s: %s\n", name, report.Checks[name])
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("server reported %s", report.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}
