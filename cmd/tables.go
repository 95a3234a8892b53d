package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-recommender/internal/dataset"
	"github.com/spigell/career-recommender/internal/encoder"
	"github.com/spigell/career-recommender/internal/logger"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the category tables used to encode answers",
	Run: func(cmd *cobra.Command, _ []string) {
		format, _ := cmd.Flags().GetString("output")
		if err := printTables(cmd.OutOrStdout(), encoder.Canonical(), format); err != nil {
			log.Fatalf("printing tables: %s", err)
		}
	},
}

var tablesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the category tables with codes derived from a training dataset",
	Run: func(cmd *cobra.Command, _ []string) {
		verifyTables(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.AddCommand(tablesVerifyCmd)

	tablesCmd.PersistentFlags().StringP("output", "o", outputText, "output format: text or json")
	tablesVerifyCmd.Flags().String("dataset", "", "training dataset CSV with a header row")
	tablesVerifyCmd.MarkFlagRequired("dataset")
}

func printTables(w io.Writer, tables *encoder.Tables, format string) error {
	if strings.EqualFold(format, outputJSON) {
		out := make(map[encoder.Field][]string, len(encoder.Fields()))
		for _, field := range encoder.Fields() {
			out[field] = tables.Table(field).Labels()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range encoder.Fields() {
		fmt.Fprintf(tw, "%s\n", field)
		for code, label := range tables.Table(field).Labels() {
			fmt.Fprintf(tw, "  %d\t%s\n", code, label)
		}
	}
	return tw.Flush()
}

func verifyTables(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	path, _ := cmd.Flags().GetString("dataset")
	format, _ := cmd.Flags().GetString("output")

	report, err := dataset.VerifyFile(path, encoder.Canonical())
	if err != nil {
		logger.Fatal("verifying tables", zap.Error(err), zap.String("dataset", path))
	}

	if err := printReport(cmd.OutOrStdout(), report, format); err != nil {
		logger.Fatal("printing report", zap.Error(err))
	}

	if !report.OK() {
		logger.Fatal("category tables disagree with the dataset", zap.String("dataset", path))
	}

	logger.Info("category tables agree with the dataset", zap.Int("rows", report.Rows))
}

func printReport(w io.Writer, report *dataset.Report, format string) error {
	if strings.EqualFold(format, outputJSON) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, f := range report.Fields {
		status := "ok"
		if !f.OK() {
			status = "MISMATCH"
		}
		if _, err := fmt.Fprintf(w, "%s (%q): %s\n", f.Field, f.Column, status); err != nil {
			return err
		}
		for _, label := range f.Missing {
			fmt.Fprintf(w, "  missing from table: %s\n", label)
		}
		for _, label := range f.Unseen {
			fmt.Fprintf(w, "  not in dataset: %s\n", label)
		}
		for _, m := range f.Mismatched {
			fmt.Fprintf(w, "  %s: table code %d, dataset code %d\n", m.Label, m.Canonical, m.Derived)
		}
	}
	return nil
}
