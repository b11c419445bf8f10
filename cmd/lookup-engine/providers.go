// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show provider status diagnostics",
	Long: `Providers lists every registered catalog provider with its priority,
capabilities, and current status. Disabled or misconfigured providers show
the reason.`,
	RunE: runProviders,
}

func runProviders(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.close()

	descs := eng.orchestrator.ProviderDiagnostics()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(descs)
	}

	fmt.Fprintf(os.Stdout, "%-18s  %-24s  %-8s  %-14s  %-8s  %s\n",
		"Key", "Name", "Priority", "Capabilities", "Enabled", "Status")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, d := range descs {
		var caps []string
		if d.SupportsTextSearch {
			caps = append(caps, "search")
		}
		if d.SupportsBarcode {
			caps = append(caps, "barcode")
		}

		status := "ready"
		switch {
		case d.MissingConfig:
			status = d.StatusReason
		case !d.Enabled:
			status = d.StatusReason
		case !eng.cfg.OnlineLookupEnabled:
			status = "online lookup disabled in settings"
		}

		fmt.Fprintf(os.Stdout, "%-18s  %-24s  %-8d  %-14s  %-8t  %s\n",
			d.Key, d.DisplayName, d.Priority, strings.Join(caps, ","), d.Enabled, status)
	}
	return nil
}

func init() {
	providersCmd.Flags().Bool("json", false, "output descriptors as JSON")

	rootCmd.AddCommand(providersCmd)
}
