// check validates a consumables workbook from the command line without
// starting the server. Exit code 1 means the file failed to load or has
// validation errors.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/spf13/cobra"

	"cargue/internal/catalog"
	"cargue/internal/core"
	"cargue/internal/ingest"
)

// Version is set at build time using ldflags.
var Version = "dev"

var (
	flagSheet      string
	flagHeaderRow  int
	flagCostHeader string
	flagRefs       string
	flagJSON       bool
)

var rootCmd = &cobra.Command{
	Use:          "check FILE",
	Short:        "Validate a consumables upload workbook",
	Long: `check loads an .xlsx consumables workbook, runs the same ingestion and
validation pipeline as the import server, and prints a summary with every
validation error found.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("check %s (%s)\n", Version, runtime.Version())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagSheet, "sheet", "Hoja_Cargue", "fallback sheet name when the first sheet is unusable")
	rootCmd.Flags().IntVar(&flagHeaderRow, "header-row", 5, "0-based header row offset")
	rootCmd.Flags().StringVar(&flagCostHeader, "cost-header", "VALOR", "cost column title variant")
	rootCmd.Flags().StringVar(&flagRefs, "refs", "", "YAML file overriding the reference sets")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the result as JSON")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	refs := catalog.DefaultReferences()
	if flagRefs != "" {
		refs, err = catalog.LoadReferences(flagRefs)
		if err != nil {
			return fmt.Errorf("loading reference sets: %w", err)
		}
	}

	cat := catalog.New(refs, catalog.Options{CostHeader: flagCostHeader})
	session := core.NewSession(cat, core.SessionOptions{
		Ingest: ingest.Options{
			TargetSheet: flagSheet,
			HeaderRow:   flagHeaderRow,
		},
		Limits: core.DefaultLimits(),
	})

	summary, err := session.LoadFile(args[0], data)
	if err != nil {
		msg := core.MapError(err)
		if flagJSON {
			json.NewEncoder(os.Stdout).Encode(map[string]any{"error": msg})
			return fmt.Errorf("%s", msg.Code)
		}
		return fmt.Errorf("%s (%s)", msg.Message, msg.Code)
	}

	if flagJSON {
		return printJSON(session, summary)
	}
	return printText(session, summary)
}

func printJSON(session *core.Session, summary *core.LoadSummary) error {
	out := map[string]any{
		"summary": summary,
		"errors":  session.DisplayErrors(),
		"valid":   session.Ready(),
	}
	if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
		return err
	}
	if !session.Ready() {
		return fmt.Errorf("%d validation errors", len(session.Errors()))
	}
	return nil
}

func printText(session *core.Session, summary *core.LoadSummary) error {
	fmt.Printf("sheet:      %s\n", summary.Sheet)
	fmt.Printf("rows:       %d\n", summary.Rows)
	fmt.Printf("error rows: %d\n", summary.ErrorRows)

	if session.Ready() {
		fmt.Println("result:     OK")
		return nil
	}

	fmt.Println()
	for _, re := range session.ErrorsByRow() {
		// Rows print 1-based to match how they appear in the sheet viewer.
		fmt.Printf("row %d:\n", re.Row+1)
		errs := re.Errors
		sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
		for _, e := range errs {
			fmt.Printf("  %-20s %s\n", e.Field, e.Message)
		}
	}

	return fmt.Errorf("%d validation errors in %d rows", len(session.Errors()), summary.ErrorRows)
}
