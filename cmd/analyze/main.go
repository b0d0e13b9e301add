// Command analyze runs the analysis pipeline from the terminal, for working
// with spreadsheets without starting the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagKeywords string
	flagOutDir   string
	flagFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Sales and inventory analytics for pharmacy and retail spreadsheets",
	Long: `Loads a CSV or Excel file, infers which columns hold products,
categories, sales and stock, and produces either a JSON analysis or a
multi-sheet report file.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	v := viper.New()
	v.SetEnvPrefix("FARMALYTICS")
	v.AutomaticEnv()

	v.SetDefault("low_stock_threshold", 5.0)
	v.SetDefault("overstock_threshold", 100.0)
	v.SetDefault("top_n", 20)
	v.SetDefault("zscore_threshold", 3.0)
	v.SetDefault("iqr_multiplier", 1.5)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagKeywords, "keywords", "", "YAML file overriding the column keyword table")
	pf.Float64("low-stock", v.GetFloat64("low_stock_threshold"), "stock level at or below which a product is low stock")
	pf.Float64("overstock", v.GetFloat64("overstock_threshold"), "stock level above which a product is overstocked")
	pf.Int("top-n", v.GetInt("top_n"), "number of top products to report")
	pf.Float64("zscore", v.GetFloat64("zscore_threshold"), "z-score cutoff for outlier detection")
	pf.Float64("iqr", v.GetFloat64("iqr_multiplier"), "IQR fence multiplier for outlier detection")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newReportCmd())
}
