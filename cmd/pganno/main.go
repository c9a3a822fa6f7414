// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pganno/internal/diff"
	"pganno/internal/dialect"
	_ "pganno/internal/dialect/postgres"
	"pganno/internal/extract"
	"pganno/internal/introspect"
	pgintrospect "pganno/internal/introspect/postgres"
	"pganno/internal/model"
	"pganno/internal/output"
	"pganno/internal/parser/toml"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pganno",
		Short: "PostgreSQL schema annotation toolkit: extract, diff, and snapshot dialect metadata",
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(introspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func extractCmd() *cobra.Command {
	var format string
	var outFile string

	cmd := &cobra.Command{
		Use:   "extract <model.toml>",
		Short: "Extract design-time annotations from a model definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := extractFile(args[0])
			if err != nil {
				return err
			}

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			rendered, err := formatter.FormatReport(report)
			if err != nil {
				return err
			}
			return write(cmd, outFile, rendered)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "human", "Output format: human or json")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (defaults to stdout)")
	return cmd
}

func diffCmd() *cobra.Command {
	var format string
	var outFile string

	cmd := &cobra.Command{
		Use:   "diff <old.toml> <new.toml>",
		Short: "Compare the extracted annotations of two model definitions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldReport, err := extractFile(args[0])
			if err != nil {
				return err
			}
			newReport, err := extractFile(args[1])
			if err != nil {
				return err
			}

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			rendered, err := formatter.FormatDiff(diff.Compare(oldReport, newReport))
			if err != nil {
				return err
			}
			return write(cmd, outFile, rendered)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "human", "Output format: human or json")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (defaults to stdout)")
	return cmd
}

func introspectCmd() *cobra.Command {
	var dsn string
	var format string
	var outFile string

	cmd := &cobra.Command{
		Use:   "introspect --dsn <postgres-dsn>",
		Short: "Snapshot the annotation-relevant metadata of a live database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := pgintrospect.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			introspecter, err := introspect.NewIntrospecter(dialect.PostgreSQL)
			if err != nil {
				return err
			}
			report, err := introspecter.Introspect(ctx, db)
			if err != nil {
				return err
			}

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			rendered, err := formatter.FormatReport(report)
			if err != nil {
				return err
			}
			return write(cmd, outFile, rendered)
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string")
	cmd.Flags().StringVarP(&format, "format", "f", "human", "Output format: human or json")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}

// extractFile parses a TOML model definition and extracts its design-time
// annotations with the PostgreSQL provider.
func extractFile(path string) (*extract.Report, error) {
	m, err := toml.NewParser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	return extractModel(m)
}

func extractModel(m *model.Model) (*extract.Report, error) {
	provider, err := dialect.Get(dialect.PostgreSQL)
	if err != nil {
		return nil, err
	}
	return extract.Extract(m, provider, true), nil
}

func write(cmd *cobra.Command, outFile, rendered string) error {
	if outFile == "" {
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Output saved to %s\n", outFile)
	return nil
}
