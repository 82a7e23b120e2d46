package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"invoicing/internal/idgen"
	"invoicing/internal/invoice"
	"invoicing/internal/logger"
	"invoicing/internal/receipt"
	"invoicing/pkg/models"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create, inspect and cancel invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Price line items and create an invoice",
	Long: `Read line items from a JSON file, price them with the given tax rate
and write the resulting invoice as JSON.

The items file holds an array of {"description", "quantity", "unit_price"}.
Each line's tax is computed and rounded individually; the invoice totals are
sums of the rounded line values.`,
	Example: `  # Create an invoice with the default tax rate
  invoicing invoice create -f items.json

  # Explicit tax rate and date, written to a file
  invoicing invoice create -f items.json --tax-rate 0.19 --date 2025-01-15 -o invoice.json`,
	RunE: runInvoiceCreate,
}

var invoiceShowCmd = &cobra.Command{
	Use:     "show [invoice-file]",
	Short:   "Print an invoice as text",
	Example: `  invoicing invoice show invoice.json`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoiceShow,
}

var invoiceCancelCmd = &cobra.Command{
	Use:   "cancel [invoice-file]",
	Short: "Mark an invoice as cancelled",
	Long: `Mark an invoice as cancelled. A cancelled invoice keeps its amounts
but rejects every further payment.`,
	Example: `  invoicing invoice cancel invoice.json -o invoice.json`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoiceCancel,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceShowCmd, invoiceCancelCmd)

	invoiceCreateCmd.Flags().StringP("file", "f", "", "Line items JSON file [REQUIRED]")
	invoiceCreateCmd.Flags().Float64("tax-rate", -1, "Tax rate between 0 and 1 (default: DEFAULT_TAX_RATE)")
	invoiceCreateCmd.Flags().String("date", "", "Invoice date YYYY-MM-DD (default: today)")
	invoiceCreateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	invoiceCreateCmd.Flags().Bool("text", false, "Print the invoice as text instead of JSON")
	invoiceCreateCmd.Flags().Int("timeout", 30, "Timeout in seconds")
	_ = invoiceCreateCmd.MarkFlagRequired("file")

	invoiceCancelCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

func runInvoiceCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	itemsPath, _ := cmd.Flags().GetString("file")
	taxRate, _ := cmd.Flags().GetFloat64("tax-rate")
	dateStr, _ := cmd.Flags().GetString("date")
	outputPath, _ := cmd.Flags().GetString("output")
	asText, _ := cmd.Flags().GetBool("text")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if !cmd.Flags().Changed("tax-rate") {
		taxRate = cfg.DefaultTaxRate
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return err
	}

	var items []models.LineItemInput
	if err := readJSON(itemsPath, &items); err != nil {
		return err
	}

	log.Info().
		Str("file", itemsPath).
		Int("items", len(items)).
		Float64("tax_rate", taxRate).
		Str("date", date.Format(dateLayout)).
		Msg("Creating invoice")

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	engine, _, closeEngine, err := newEngine(ctx, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	inv, err := engine.Invoices.CreateInvoice(ctx, items, taxRate, date)
	if err != nil {
		return handleEngineError(err, log)
	}

	if asText {
		return receipt.RenderInvoice(os.Stdout, inv)
	}
	return writeJSON(inv, outputPath, log)
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	var inv models.Invoice
	if err := readJSON(args[0], &inv); err != nil {
		return err
	}
	return receipt.RenderInvoice(os.Stdout, inv)
}

func runInvoiceCancel(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	outputPath, _ := cmd.Flags().GetString("output")

	var inv models.Invoice
	if err := readJSON(args[0], &inv); err != nil {
		return err
	}
	if inv.Status == models.InvoiceStatusCancelled {
		return fmt.Errorf("invoice %s is already cancelled", inv.InvoiceNumber)
	}

	// Cancelling assigns no reference numbers, so no sequence backend is needed.
	svc := invoice.NewService(cfg.InvoiceLimits(), idgen.NewMemoryGenerator())
	return writeJSON(svc.Cancel(inv), outputPath, log)
}
