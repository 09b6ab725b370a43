// raven — command-line companion for the error report client.
// Validates collector addresses and sends test events, so a DSN and its
// filter configuration can be exercised before any page ships with them.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeevl/raven-js/pkg/raven"
	"github.com/zeevl/raven-js/pkg/raven/transport/beacon"
	"github.com/zeevl/raven-js/pkg/raven/transport/memory"
)

// version is set by ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "raven",
		Short:         "Error report client companion",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd())
	root.AddCommand(newSendCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <dsn>",
		Short: "Parse a collector address and print the derived endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := raven.ParseDSN(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("project:  %s\n", dsn.ProjectID)
			fmt.Printf("endpoint: %s\n", dsn.Endpoint())
			fmt.Printf("auth:     %s\n", dsn.AuthQuery())
			return nil
		},
	}
}

func newSendCmd() *cobra.Command {
	var (
		dsn         string
		site        string
		logger      string
		optionsFile string
		tags        []string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "send [message...]",
		Short: "Send a test message through the full capture pipeline",
		Long: `Send a test message through the full capture pipeline.

The message passes filtering, merging, and transport exactly like an event
captured in a page would. With --dry-run the request is assembled but kept
local and printed instead of sent.

Examples:
  raven send --dsn https://publickey@errors.example.com/1 "deploy smoke test"
  raven send --dsn https://publickey@errors.example.com/1 --tag env=staging --dry-run "hello"
  raven send --options raven.yaml --dsn https://publickey@errors.example.com/1 "hello"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = os.Getenv("RAVEN_DSN")
			}
			if dsn == "" {
				return errors.New("collector DSN required: use --dsn or set RAVEN_DSN")
			}

			tagMap, err := parseTags(tags)
			if err != nil {
				return err
			}

			var opts []raven.Option
			if optionsFile != "" {
				fileOpts, err := raven.OptionsFromFile(optionsFile)
				if err != nil {
					return err
				}
				opts = append(opts, fileOpts...)
			}
			if site != "" {
				opts = append(opts, raven.WithSite(site))
			}
			if logger != "" {
				opts = append(opts, raven.WithLogger(logger))
			}
			if len(tagMap) > 0 {
				opts = append(opts, raven.WithTags(tagMap))
			}

			recorder := memory.New()
			if dryRun {
				opts = append(opts, raven.WithTransport(recorder))
			} else {
				opts = append(opts, raven.WithTransport(beacon.New()))
			}

			client, err := raven.New(dsn, opts...)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			outcome := make(chan raven.Notification, 1)
			defer client.Subscribe(raven.NoteSuccess, func(n raven.Notification) { outcome <- n })()
			defer client.Subscribe(raven.NoteFailure, func(n raven.Notification) { outcome <- n })()

			client.CaptureMessage(strings.Join(args, " "), nil)

			if client.LastEventID() == "" {
				return errors.New("message was filtered; nothing sent")
			}

			if dryRun {
				for _, req := range recorder.Requests() {
					fmt.Printf("would send %d bytes to %s%s\n", len(req.Body), req.Endpoint, req.Auth)
					fmt.Printf("payload: %s\n", req.Body)
				}
				fmt.Printf("event id: %s\n", client.LastEventID())
				return nil
			}

			select {
			case n := <-outcome:
				if n.Err != nil {
					return fmt.Errorf("send failed: %w", n.Err)
				}
				fmt.Printf("sent event %s\n", client.LastEventID())
				return nil
			case <-time.After(30 * time.Second):
				return errors.New("timed out waiting for transport completion")
			}
		},
	}

	cmd.Flags().StringVarP(&dsn, "dsn", "d", "", "collector DSN (or set RAVEN_DSN)")
	cmd.Flags().StringVar(&site, "site", "", "site label attached to the payload")
	cmd.Flags().StringVar(&logger, "logger", "", "logger name attached to the payload")
	cmd.Flags().StringVarP(&optionsFile, "options", "o", "", "YAML option file applied before flags")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag in k=v form, repeatable")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "assemble the request but print it instead of sending")
	return cmd
}

func parseTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag %q, want k=v", pair)
		}
		tags[k] = v
	}
	return tags, nil
}
