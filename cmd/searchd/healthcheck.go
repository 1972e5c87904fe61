// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RunHealthcheckCommand probes a running instance's readiness endpoint.
// Intended as a container HEALTHCHECK.
func RunHealthcheckCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check that a running instance is healthy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := &http.Client{Timeout: 5 * time.Second}

			resp, err := client.Get(fmt.Sprintf("http://%s/api/health/readiness", addr))
			if err != nil {
				return errors.Wrap(err, "readiness request failed")
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode != http.StatusOK {
				return errors.Errorf("not ready: HTTP %d", resp.StatusCode)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "host:port of the running instance")
	return cmd
}
