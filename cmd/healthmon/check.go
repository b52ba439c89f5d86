package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/msusur/healthmonitoring/health"
)

var errNotReady = errors.New("one or more endpoints are failing")

type checkOptions struct {
	*rootOptions
	json bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "check [--json]",
		Short: "Check every configured endpoint once and print the results",
		Long: "Runs a single pass over the configured endpoints. The exit status is non-zero " +
			"when any endpoint is worse than unhealthy.",
		RunE: opts.run,
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	return cmd
}

func (o *checkOptions) run(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()

	a, err := newApp(ctx, o.configPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close(ctx))
	}()

	sched, err := a.scheduler()
	if err != nil {
		return err
	}
	if err := sched.RunOnce(ctx); err != nil {
		return err
	}

	endpoints := a.registry.Endpoints()
	if o.json {
		if err := writeJSONResults(cmd.OutOrStdout(), endpoints); err != nil {
			return err
		}
	} else {
		writeTableResults(cmd.OutOrStdout(), endpoints)
	}

	if s := health.Summarize(endpoints); !s.Ready() && !s.Degraded() {
		return errNotReady
	}
	return nil
}

func writeJSONResults(w io.Writer, endpoints []*health.Endpoint) error {
	out := make([]health.EndpointResponse, 0, len(endpoints))
	for _, ep := range endpoints {
		out = append(out, health.NewEndpointResponse(ep))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeTableResults(w io.Writer, endpoints []*health.Endpoint) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STATUS\tENDPOINT\tRESPONSE\tDETAILS")
	for _, ep := range endpoints {
		status, response, details := health.StatusNotRun.String(), "-", ""
		if h := ep.Health(); h != nil {
			status = h.Status().String()
			response = h.ResponseTime().Round(time.Millisecond).String()
			details = h.PrettyDetails()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, ep, response, details)
	}
	_ = tw.Flush()
}
