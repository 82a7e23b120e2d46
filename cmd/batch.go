package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicing/internal/logger"
	"invoicing/internal/money"
	"invoicing/internal/sheets"
	"invoicing/pkg/models"
	"invoicing/pkg/services"
)

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Create invoices and apply their payments for every JSON file in a folder",
	Long: `Process every *.json file in a folder. Each file describes one invoice
and the payments made against it:

  {
    "tax_rate": 0.07,
    "date": "2025-01-15",
    "items": [{"description": "Monthly Fee", "quantity": 1, "unit_price": 500}],
    "payments": [{"amount": 300, "method": "cash", "date": "2025-01-20"}]
  }

Files are processed in parallel; the payments of one file are applied in
order. tax_rate defaults to DEFAULT_TAX_RATE, dates default to today and
payment dates to the invoice date.

Optional environment variables:
  BATCH_WORKERS - Number of parallel workers (default: 12)
  GOOGLE_SHEET_URL - Google Sheets URL for --export
  LEDGER_WORKSHEET - Worksheet receiving the ledger rows (default: Payments)`,
	Example: `  # Process a folder and print a summary
  invoicing batch ./invoices

  # Write the resulting invoices to a folder for "settle"
  invoicing batch ./invoices --out-dir ./state

  # Append every payment attempt to the ledger sheet
  invoicing batch ./invoices --export

  # Start numbering from 0001 again (Redis backend)
  invoicing batch ./invoices --reset-sequence`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// BatchInput is the content of one batch file.
type BatchInput struct {
	TaxRate  *float64               `json:"tax_rate,omitempty"`
	Date     string                 `json:"date,omitempty"`
	Items    []models.LineItemInput `json:"items"`
	Payments []BatchPayment         `json:"payments,omitempty"`
}

// BatchPayment is one payment of a batch file.
type BatchPayment struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Date   string  `json:"date,omitempty"`
}

// BatchResult represents the result of processing a single file
type BatchResult struct {
	Filename string
	Invoice  *models.Invoice
	Outcomes []services.PaymentOutcome
	Error    error
	Status   string // "success", "warning", "error"
	Index    int    // Original order index
}

// WorkerJob represents a file processing job
type WorkerJob struct {
	FilePath string
	Index    int
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Bool("export", false, "Append the payment ledger to Google Sheets")
	batchCmd.Flags().String("sheet", "", "Ledger worksheet (default: LEDGER_WORKSHEET)")
	batchCmd.Flags().String("out-dir", "", "Write each resulting invoice to this folder")
	batchCmd.Flags().Bool("reset-sequence", false, "Reset reference number counters before processing")
	batchCmd.Flags().Bool("verbose", false, "Show detailed processing information")
	batchCmd.Flags().Int("timeout", 30, "Timeout in minutes")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	folderPath := args[0]
	export, _ := cmd.Flags().GetBool("export")
	sheetName, _ := cmd.Flags().GetString("sheet")
	outDir, _ := cmd.Flags().GetString("out-dir")
	resetSequence, _ := cmd.Flags().GetBool("reset-sequence")
	verbose, _ := cmd.Flags().GetBool("verbose")
	timeoutMins, _ := cmd.Flags().GetInt("timeout")

	if sheetName == "" {
		sheetName = cfg.LedgerWorksheet
	}
	if export && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --export")
	}

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create output folder: %w", err)
		}
	}

	log.Info().
		Str("folder", folderPath).
		Bool("export", export).
		Str("out_dir", outDir).
		Bool("reset_sequence", resetSequence).
		Msg("Starting batch processing")

	ctx, cancel := createContext(time.Duration(timeoutMins)*time.Minute, log)
	defer cancel()

	engine, ids, closeEngine, err := newEngine(ctx, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	if resetSequence {
		if err := ids.Reset(ctx); err != nil {
			return handleEngineError(err, log)
		}
		log.Info().Msg("Reference number counters reset")
	}

	files, err := findJSONFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to find JSON files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No JSON files found in folder.")
		return nil
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                              BATCH PROCESSING")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Folder: %s\n", folderPath)
	fmt.Printf("Processing %d files with %d parallel workers...\n\n", len(files), cfg.BatchWorkers)

	results := processFilesInParallel(ctx, files, engine, cfg.DefaultTaxRate, cfg.BatchWorkers, log, verbose)

	var successCount, warningCount, errorCount int
	var entries []sheets.LedgerEntry
	for _, result := range results {
		switch result.Status {
		case "success":
			successCount++
		case "warning":
			warningCount++
		case "error":
			errorCount++
		}
		for _, outcome := range result.Outcomes {
			entries = append(entries, outcome.LedgerEntry())
		}

		if outDir != "" && result.Invoice != nil {
			path := filepath.Join(outDir, result.Invoice.InvoiceNumber+".json")
			if err := writeJSON(result.Invoice, path, log); err != nil {
				return err
			}
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                     RESULT")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Successful: %d\n", successCount)
	if warningCount > 0 {
		fmt.Printf("With rejected payments: %d\n", warningCount)
	}
	if errorCount > 0 {
		fmt.Printf("Failed: %d\n", errorCount)
	}
	fmt.Printf("Payment attempts: %d\n", len(entries))
	fmt.Println()

	if export {
		fmt.Println("Writing ledger to Google Sheet...")

		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets service: %w", err)
		}
		if err := sheetsService.WriteLedger(ctx, entries, sheetName); err != nil {
			return fmt.Errorf("failed to write to Google Sheet: %w", err)
		}

		fmt.Printf("Sheet: %s\n", sheetName)
		fmt.Printf("Rows added: %d\n", len(entries))
		fmt.Printf("URL: %s\n", cfg.GoogleSheetURL)
	}

	fmt.Println(strings.Repeat("=", 80))

	summary := map[string]interface{}{
		"component": "batch",
		"total":     len(files),
		"success":   successCount,
		"warnings":  warningCount,
		"errors":    errorCount,
		"payments":  len(entries),
	}
	summaryLog := logger.WithFields(summary)
	summaryLog.Info().Msg("Batch processing completed")

	return nil
}

// findJSONFiles finds all JSON files in the specified folder
func findJSONFiles(folderPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".json") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// processBatchFile creates the invoice described by one file and applies its
// payments in order.
func processBatchFile(ctx context.Context, path string, engine *services.Engine, defaultTaxRate float64, log zerolog.Logger, verbose bool) BatchResult {
	result := BatchResult{
		Filename: filepath.Base(path),
		Status:   "error",
	}

	var input BatchInput
	if err := readJSON(path, &input); err != nil {
		result.Error = err
		return result
	}

	taxRate := defaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}

	invoiceDate, err := parseDate(input.Date)
	if err != nil {
		result.Error = err
		return result
	}

	inv, err := engine.Invoices.CreateInvoice(ctx, input.Items, taxRate, invoiceDate)
	if err != nil {
		result.Error = fmt.Errorf("invoice creation failed: %w", err)
		return result
	}

	result.Status = "success"
	for i, p := range input.Payments {
		paymentDate := invoiceDate
		if p.Date != "" {
			// An unparseable date stays zero and is rejected by the processor.
			paymentDate, _ = time.Parse(dateLayout, p.Date)
		}

		outcome := engine.Pay(ctx, inv, p.Amount, models.ParsePaymentMethod(p.Method), paymentDate)
		result.Outcomes = append(result.Outcomes, outcome)
		inv = outcome.Invoice

		if err := outcome.Failure(); err != nil {
			result.Status = "warning"
			if verbose {
				log.Warn().
					Err(err).
					Str("file", result.Filename).
					Int("payment", i+1).
					Msg("Payment not applied")
			}
		}
	}

	result.Invoice = &inv

	if verbose {
		log.Info().
			Str("file", result.Filename).
			Str("invoice_number", inv.InvoiceNumber).
			Float64("total", inv.TotalAmount).
			Float64("outstanding", inv.OutstandingAmount).
			Str("status", inv.Status.String()).
			Msg("File processed")
	}

	return result
}

// processFilesInParallel processes files using a worker pool pattern
func processFilesInParallel(ctx context.Context, files []string, engine *services.Engine, defaultTaxRate float64, numWorkers int, log zerolog.Logger, verbose bool) []BatchResult {
	jobs := make(chan WorkerJob, len(files))
	results := make([]BatchResult, len(files))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", job.FilePath).
					Int("index", job.Index+1).
					Msg("Worker processing file")

				result := processBatchFile(ctx, job.FilePath, engine, defaultTaxRate, log, verbose)
				result.Index = job.Index
				results[job.Index] = result

				mu.Lock()
				processedCount++
				fmt.Printf("[%d/%d] %s - %s", processedCount, len(files), result.Filename, getStatusEmoji(result.Status))
				if result.Error != nil {
					fmt.Printf(" (%s)", result.Error.Error())
				} else if result.Invoice != nil {
					fmt.Printf(" (%s %s, outstanding %s)", result.Invoice.InvoiceNumber,
						result.Invoice.Status, money.Format(result.Invoice.OutstandingAmount))
				}
				fmt.Println()
				mu.Unlock()
			}
		}(w)
	}

	for i, file := range files {
		jobs <- WorkerJob{FilePath: file, Index: i}
	}
	close(jobs)

	wg.Wait()

	return results
}

// getStatusEmoji returns an emoji for the processing status
func getStatusEmoji(status string) string {
	switch status {
	case "success":
		return "✅"
	case "warning":
		return "⚠️"
	case "error":
		return "❌"
	default:
		return "❓"
	}
}
