// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealworks/lookup-engine/internal/trust"
)

var barcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Resolve a barcode to a single food",
	Long: `Barcode queries every enabled provider for the scanned code and prints
the best merged candidate. Providers are consulted concurrently; the
highest-priority richest record wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runBarcode,
}

func runBarcode(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.close()

	req, err := requestFromFlags(cmd, eng)
	if err != nil {
		return err
	}
	req.Barcode = args[0]

	report, err := eng.orchestrator.LookupBarcode(context.Background(), req)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	first := report.FirstCandidate()
	if first == nil {
		fmt.Printf("Barcode %s not found in any catalog.\n", args[0])
		for _, pr := range report.ProviderResults {
			fmt.Printf("  %s: %s\n", pr.ProviderID, pr.Status)
		}
		return nil
	}

	sig := trust.Derive(*first)
	fmt.Printf("%s", first.Name)
	if first.Brand != "" {
		fmt.Printf(" - %s", first.Brand)
	}
	fmt.Printf(" [%s]\n", sig.ProvenanceLabel)
	if first.CaloriesKcalPer100g != nil {
		fmt.Printf("  %.0f kcal/100g", *first.CaloriesKcalPer100g)
		if first.ProteinGPer100g != nil {
			fmt.Printf(", %.1fg protein", *first.ProteinGPer100g)
		}
		if first.CarbsGPer100g != nil {
			fmt.Printf(", %.1fg carbs", *first.CarbsGPer100g)
		}
		if first.FatGPer100g != nil {
			fmt.Printf(", %.1fg fat", *first.FatGPer100g)
		}
		fmt.Println()
	}
	if first.ServingSize != "" {
		fmt.Printf("  Serving: %s", first.ServingSize)
		if sig.ServingReview == trust.ServingNeedsReview {
			fmt.Print(" (needs review)")
		}
		fmt.Println()
	}
	fmt.Printf("  Nutrition data: %s\n", sig.Completeness)
	return nil
}

func init() {
	barcodeCmd.Flags().Bool("local-only", false, "skip all online providers")
	barcodeCmd.Flags().Bool("online-only", false, "query online providers only")
	barcodeCmd.Flags().Bool("refresh", false, "bypass the result cache")
	barcodeCmd.Flags().Bool("json", false, "output the full execution report as JSON")

	rootCmd.AddCommand(barcodeCmd)
}
