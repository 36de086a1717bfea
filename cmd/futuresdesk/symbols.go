package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/futuresdesk/internal/market"
)

var (
	symbolsExchange string
	symbolsJSON     bool
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List the futures varieties in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVarP(&symbolsExchange, "exchange", "e", "", "Only list varieties of this exchange, e.g. SHFE")
	symbolsCmd.Flags().BoolVar(&symbolsJSON, "json", false, "Print as JSON")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	var list []market.Symbol
	for _, s := range market.Symbols() {
		if symbolsExchange != "" && !strings.EqualFold(s.Exchange, symbolsExchange) {
			continue
		}
		list = append(list, s)
	}

	if symbolsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Println("No varieties found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tEXCHANGE")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Code, s.Name, s.Exchange)
	}
	return w.Flush()
}
