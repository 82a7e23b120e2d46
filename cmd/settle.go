package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"invoicing/internal/logger"
	"invoicing/internal/money"
	"invoicing/internal/settlement"
	"invoicing/internal/sheets"
	"invoicing/pkg/models"
)

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Apply payments recorded in Google Sheets to stored invoices",
	Long: `Read payment rows from a Google Sheets worksheet and apply them to the
invoices stored as JSON files in a folder (as written by "invoice create" or
"batch --out-dir").

The payments worksheet has a header row and the columns
  A=Datum  B=Rechnungsnr  C=Methode  D=Betrag  E=Verwendungszweck
Dates may be DD.MM.YYYY or YYYY-MM-DD, amounts German ("1.234,56") or plain.

Payments are applied in date order. Updated invoices are written back to
their files and every payment attempt is appended to the ledger worksheet.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Google Sheets URL containing the payments worksheet`,
	Example: `  # Apply payments from the "Incoming" worksheet
  invoicing settle --invoices ./state

  # Preview without writing invoices or ledger rows
  invoicing settle --invoices ./state --sheet Zahlungen --dry-run`,
	RunE: runSettle,
}

func init() {
	rootCmd.AddCommand(settleCmd)

	settleCmd.Flags().String("invoices", "", "Folder with invoice JSON files [REQUIRED]")
	settleCmd.Flags().String("sheet", "Incoming", "Worksheet holding the payment rows")
	settleCmd.Flags().String("ledger", "", "Ledger worksheet (default: LEDGER_WORKSHEET)")
	settleCmd.Flags().Bool("dry-run", false, "Apply payments but don't write invoices or ledger rows")
	settleCmd.Flags().Int("timeout", 10, "Timeout in minutes")
	_ = settleCmd.MarkFlagRequired("invoices")
}

func runSettle(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("settle")

	invoiceDir, _ := cmd.Flags().GetString("invoices")
	sheetName, _ := cmd.Flags().GetString("sheet")
	ledgerName, _ := cmd.Flags().GetString("ledger")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeoutMins, _ := cmd.Flags().GetInt("timeout")

	if ledgerName == "" {
		ledgerName = cfg.LedgerWorksheet
	}
	if ledgerName == sheetName {
		return fmt.Errorf("payments worksheet and ledger worksheet must differ (both %q)", sheetName)
	}
	if cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required")
	}

	stored, err := loadInvoices(invoiceDir)
	if err != nil {
		return err
	}

	log.Info().
		Str("invoices", invoiceDir).
		Int("invoice_count", len(stored)).
		Str("sheet", sheetName).
		Str("ledger", ledgerName).
		Bool("dry_run", dryRun).
		Msg("Starting settlement")

	ctx, cancel := createContext(time.Duration(timeoutMins)*time.Minute, log)
	defer cancel()

	sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}

	rows, rowErrs, err := settlement.NewDataReader(sheetsService).ReadPayments(ctx, sheetName)
	if err != nil {
		return fmt.Errorf("failed to read payments: %w", err)
	}

	engine, _, closeEngine, err := newEngine(ctx, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	invoices := make([]models.Invoice, len(stored))
	for i, s := range stored {
		invoices[i] = s.Invoice
	}

	report, err := settlement.NewSettler(engine).Apply(ctx, invoices, rows)
	if err != nil {
		return handleEngineError(err, log)
	}

	printSettlementReport(report, rowErrs)

	if dryRun {
		fmt.Println("Dry run: no invoices or ledger rows written.")
		return nil
	}

	paths := make(map[string]string, len(stored))
	for _, s := range stored {
		paths[s.Invoice.InvoiceNumber] = s.Path
	}
	for _, inv := range report.Updated() {
		if err := writeJSON(inv, paths[inv.InvoiceNumber], log); err != nil {
			return err
		}
	}

	if err := sheetsService.WriteLedger(ctx, report.Entries, ledgerName); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	log.Info().
		Int("applied", report.Applied()).
		Int("failed", report.Failed()).
		Int("unmatched", len(report.Unmatched)).
		Int("updated_invoices", len(report.Updated())).
		Msg("Settlement completed")

	return nil
}

type storedInvoice struct {
	Path    string
	Invoice models.Invoice
}

// loadInvoices reads every invoice JSON file in dir.
func loadInvoices(dir string) ([]storedInvoice, error) {
	files, err := findJSONFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	seen := make(map[string]string, len(files))
	stored := make([]storedInvoice, 0, len(files))
	for _, path := range files {
		var inv models.Invoice
		if err := readJSON(path, &inv); err != nil {
			return nil, err
		}
		if inv.InvoiceNumber == "" {
			return nil, fmt.Errorf("%s has no invoice number", path)
		}
		if other, dup := seen[inv.InvoiceNumber]; dup {
			return nil, fmt.Errorf("invoice %s appears in both %s and %s", inv.InvoiceNumber, other, path)
		}
		seen[inv.InvoiceNumber] = path
		stored = append(stored, storedInvoice{Path: path, Invoice: inv})
	}

	return stored, nil
}

func printSettlementReport(report settlement.Report, rowErrs []settlement.RowError) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                              SETTLEMENT")
	fmt.Println(strings.Repeat("=", 80))

	for _, entry := range report.Entries {
		status := getStatusEmoji("success")
		detail := fmt.Sprintf("%s -> %s", entry.Invoice.InvoiceNumber, entry.Invoice.Status)
		if entry.Err != nil {
			status = getStatusEmoji("error")
			detail = entry.Err.Error()
		}
		fmt.Printf("%s %s %10s %-14s %s\n", status, entry.Payment.ReferenceNumber,
			money.Format(entry.Payment.Amount), entry.Payment.PaymentMethod, detail)
	}

	for _, row := range report.Unmatched {
		fmt.Printf("%s row %d: no invoice %s\n", getStatusEmoji("warning"), row.Row, row.InvoiceNumber)
	}
	for _, rowErr := range rowErrs {
		fmt.Printf("%s %s\n", getStatusEmoji("warning"), rowErr.Error())
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("Applied: %d  Rejected: %d  Unmatched: %d  Unreadable: %d\n",
		report.Applied(), report.Failed(), len(report.Unmatched), len(rowErrs))
	fmt.Println(strings.Repeat("=", 80))
}

