package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"invoicing/internal/logger"
	"invoicing/internal/receipt"
	"invoicing/pkg/models"
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Apply a payment to an invoice and issue a receipt",
	Long: `Apply a payment to an invoice read from a JSON file (as written by
"invoice create"), then issue a receipt allocating the payment across the
invoice's line items.

Payments above the outstanding amount are accepted and leave the invoice
OVERPAID. Cancelled invoices reject every payment.

Payment methods: CASH, BANK_TRANSFER, CREDIT_CARD, DEBIT_CARD, CHECK.`,
	Example: `  # Pay 150.00 in cash and print the receipt
  invoicing pay -i invoice.json --amount 150 --method cash

  # Record a bank transfer and write the updated invoice back
  invoicing pay -i invoice.json --amount 589.57 --method bank-transfer -o invoice.json

  # Machine-readable output
  invoicing pay -i invoice.json --amount 50 --method credit-card --json`,
	RunE: runPay,
}

// PayOutput is the JSON output of the pay command.
type PayOutput struct {
	Payment models.Payment  `json:"payment"`
	Invoice models.Invoice  `json:"invoice"`
	Receipt *models.Receipt `json:"receipt,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func init() {
	rootCmd.AddCommand(payCmd)

	payCmd.Flags().StringP("invoice", "i", "", "Invoice JSON file [REQUIRED]")
	payCmd.Flags().Float64("amount", 0, "Payment amount [REQUIRED]")
	payCmd.Flags().String("method", "", "Payment method [REQUIRED]")
	payCmd.Flags().String("date", "", "Payment date YYYY-MM-DD (default: today)")
	payCmd.Flags().StringP("output", "o", "", "Write the updated invoice to this file")
	payCmd.Flags().Bool("json", false, "Print payment, invoice and receipt as JSON")
	payCmd.Flags().Int("timeout", 30, "Timeout in seconds")
	_ = payCmd.MarkFlagRequired("invoice")
	_ = payCmd.MarkFlagRequired("amount")
	_ = payCmd.MarkFlagRequired("method")
}

func runPay(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("pay")

	invoicePath, _ := cmd.Flags().GetString("invoice")
	amount, _ := cmd.Flags().GetFloat64("amount")
	methodStr, _ := cmd.Flags().GetString("method")
	dateStr, _ := cmd.Flags().GetString("date")
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	date, err := parseDate(dateStr)
	if err != nil {
		return err
	}

	var inv models.Invoice
	if err := readJSON(invoicePath, &inv); err != nil {
		return err
	}

	method := models.ParsePaymentMethod(methodStr)

	log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Float64("amount", amount).
		Str("method", method.String()).
		Str("date", date.Format(dateLayout)).
		Msg("Applying payment")

	ctx, cancel := createContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	engine, _, closeEngine, err := newEngine(ctx, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	if check := engine.Payments.ValidatePaymentAmount(inv, amount); check.Valid && check.Message != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", check.Message)
	}

	outcome := engine.Pay(ctx, inv, amount, method, date)

	if jsonOutput {
		out := PayOutput{Payment: outcome.Payment, Invoice: outcome.Invoice, Receipt: outcome.Receipt}
		if err := outcome.Failure(); err != nil {
			out.Error = err.Error()
		}
		if err := writeJSON(out, "", log); err != nil {
			return err
		}
	}

	if !outcome.Success {
		return handleEngineError(outcome.Failure(), log)
	}

	if outputPath != "" {
		if err := writeJSON(outcome.Invoice, outputPath, log); err != nil {
			return err
		}
	}

	if outcome.ReceiptErr != nil {
		return handleEngineError(outcome.ReceiptErr, log)
	}

	if !jsonOutput {
		if err := receipt.Render(os.Stdout, *outcome.Receipt); err != nil {
			return err
		}
		fmt.Printf("Invoice %s is now %s\n", outcome.Invoice.InvoiceNumber, outcome.Invoice.Status)
	}

	return nil
}
