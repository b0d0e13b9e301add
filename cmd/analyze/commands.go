package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"farmalytics/analysis"
	"farmalytics/dataset"
	"farmalytics/loader"
	"farmalytics/report"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Analyze a spreadsheet and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, roles, err := loadWithRoles(cmd, args[0])
			if err != nil {
				return err
			}

			cfg, err := analysisConfig(cmd)
			if err != nil {
				return err
			}
			res, err := analysis.Analyze(table, roles, cfg)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Analyze a spreadsheet and write a report file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, roles, err := loadWithRoles(cmd, args[0])
			if err != nil {
				return err
			}

			gen, err := report.NewGenerator(flagOutDir)
			if err != nil {
				return err
			}

			var path string
			switch flagFormat {
			case "quick":
				path, err = gen.Quick(table)
			case "html":
				path, err = analyzeAndRender(cmd, table, roles, gen.HTML)
			case "excel":
				path, err = analyzeAndRender(cmd, table, roles, gen.Comprehensive)
			default:
				return fmt.Errorf("unknown format %q, expected excel, quick or html", flagFormat)
			}
			if err != nil {
				return err
			}

			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagOutDir, "out", "o", "reports", "output directory for the report")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "excel", "report format: excel, quick or html")
	return cmd
}

type renderFunc func(*dataset.Table, *analysis.Result) (string, error)

func analyzeAndRender(cmd *cobra.Command, table *dataset.Table, roles analysis.RoleMapping, render renderFunc) (string, error) {
	cfg, err := analysisConfig(cmd)
	if err != nil {
		return "", err
	}
	res, err := analysis.Analyze(table, roles, cfg)
	if err != nil {
		return "", err
	}
	return render(table, res)
}

// loadWithRoles parses the file and resolves column roles, honoring the
// --keywords override when given.
func loadWithRoles(cmd *cobra.Command, path string) (*dataset.Table, analysis.RoleMapping, error) {
	table, err := loader.Load(path)
	if err != nil {
		return nil, nil, err
	}

	keywords := analysis.DefaultKeywords()
	if flagKeywords != "" {
		keywords, err = analysis.LoadKeywordTable(flagKeywords)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load keywords file: %w", err)
		}
	}
	roles := keywords.Resolve(table.ColumnNames())

	if len(roles) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no column roles recognized; sales and stock sections will be empty")
	}
	return table, roles, nil
}

func analysisConfig(cmd *cobra.Command) (analysis.Config, error) {
	f := cmd.Root().PersistentFlags()

	cfg := analysis.DefaultConfig()
	var err error
	if cfg.LowStockThreshold, err = f.GetFloat64("low-stock"); err != nil {
		return cfg, err
	}
	if cfg.OverstockThreshold, err = f.GetFloat64("overstock"); err != nil {
		return cfg, err
	}
	if cfg.TopN, err = f.GetInt("top-n"); err != nil {
		return cfg, err
	}
	if cfg.ZScoreThreshold, err = f.GetFloat64("zscore"); err != nil {
		return cfg, err
	}
	if cfg.IQRMultiplier, err = f.GetFloat64("iqr"); err != nil {
		return cfg, err
	}
	return cfg, nil
}
