// Package settlement applies payments recorded in a spreadsheet to invoices.
package settlement

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"invoicing/internal/logger"
	"invoicing/pkg/models"
)

// RangeReader reads cell values from a spreadsheet range.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

// DataReader reads payment rows from Google Sheets
type DataReader struct {
	sheets RangeReader
	log    zerolog.Logger
}

// NewDataReader creates a new data reader for Google Sheets
func NewDataReader(sheets RangeReader) *DataReader {
	return &DataReader{
		sheets: sheets,
		log:    logger.WithComponent("settlement-reader"),
	}
}

// ReadPayments reads payment rows from sheetName. The first row is a header.
// Expected columns: A=Datum, B=Rechnungsnr, C=Methode, D=Betrag, E=Verwendungszweck.
// Rows that cannot be parsed are logged and returned as RowErrors.
func (dr *DataReader) ReadPayments(ctx context.Context, sheetName string) ([]PaymentRow, []RowError, error) {
	const op = "ReadPayments"

	dr.log.Info().Str("sheet", sheetName).Msg("Reading payments")

	values, err := dr.sheets.ReadRange(ctx, sheetName+"!A:E")
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("%s: %s sheet is empty", op, sheetName)
	}

	rows, rowErrs := ParsePaymentRows(values[1:], 2)
	for _, rowErr := range rowErrs {
		dr.log.Warn().
			Err(rowErr.Err).
			Int("row", rowErr.Row).
			Str("sheet", sheetName).
			Msg("Failed to parse payment row, skipping")
	}

	dr.log.Info().
		Int("total_rows", len(values)-1).
		Int("parsed_payments", len(rows)).
		Str("sheet", sheetName).
		Msg("Payments read successfully")

	return rows, rowErrs, nil
}

// ParsePaymentRows parses sheet values into payment rows. firstRow is the
// sheet row number of values[0]. Blank rows are skipped silently.
func ParsePaymentRows(values [][]interface{}, firstRow int) ([]PaymentRow, []RowError) {
	var rows []PaymentRow
	var rowErrs []RowError

	for i, row := range values {
		rowNum := firstRow + i
		if isBlank(row) {
			continue
		}

		parsed, err := parsePaymentRow(row, rowNum)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Err: err})
			continue
		}
		rows = append(rows, parsed)
	}

	return rows, rowErrs
}

// parsePaymentRow parses a single payment row. The method is kept as
// written when it is not recognised so that the processor records the
// rejection.
func parsePaymentRow(row []interface{}, rowNum int) (PaymentRow, error) {
	dateStr := getString(row, 0)
	date, err := parseDate(dateStr)
	if err != nil {
		return PaymentRow{}, fmt.Errorf("invalid date '%s': %w", dateStr, err)
	}

	invoiceNumber := getString(row, 1)
	if invoiceNumber == "" {
		return PaymentRow{}, fmt.Errorf("missing invoice number")
	}

	amountStr := getString(row, 3)
	if amountStr == "" {
		return PaymentRow{}, fmt.Errorf("missing amount")
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		return PaymentRow{}, fmt.Errorf("invalid amount '%s': %w", amountStr, err)
	}

	return PaymentRow{
		Row:           rowNum,
		Date:          date,
		InvoiceNumber: invoiceNumber,
		Method:        parseMethod(getString(row, 2)),
		Amount:        amount,
		Note:          getString(row, 4),
	}, nil
}

// methodAliases maps German method names to payment methods.
var methodAliases = map[string]models.PaymentMethod{
	"BAR":          models.PaymentMethodCash,
	"BARZAHLUNG":   models.PaymentMethodCash,
	"ÜBERWEISUNG":  models.PaymentMethodBankTransfer,
	"UEBERWEISUNG": models.PaymentMethodBankTransfer,
	"KREDITKARTE":  models.PaymentMethodCreditCard,
	"EC_KARTE":     models.PaymentMethodDebitCard,
	"GIROCARD":     models.PaymentMethodDebitCard,
	"SCHECK":       models.PaymentMethodCheck,
}

func parseMethod(s string) models.PaymentMethod {
	method := models.ParsePaymentMethod(s)
	if alias, ok := methodAliases[method.String()]; ok {
		return alias
	}
	return method
}

// parseDate parses German (DD.MM.YYYY) and ISO dates
func parseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	formats := []string{
		"02.01.2006", // DD.MM.YYYY
		"2.1.2006",   // D.M.YYYY
		"02.01.06",   // DD.MM.YY
		"2.1.06",     // D.M.YY
		"2006-01-02", // ISO
	}

	for _, format := range formats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// parseAmount parses amounts in German ("1.234,56"), English ("1,234.56")
// or plain ("1234.56") notation with an optional currency marker. When both
// separators appear, the last one is the decimal separator.
func parseAmount(amountStr string) (float64, error) {
	cleaned := strings.TrimSpace(amountStr)

	isNegative := strings.HasPrefix(cleaned, "-")
	if isNegative {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "-"))
	}

	cleaned = strings.NewReplacer(" ", "", "€", "", "EUR", "", "USD", "").Replace(cleaned)

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// 1.234,56
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else {
			// 1,234.56
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if parts := strings.Split(cleaned, ","); len(parts) == 2 && len(parts[1]) <= 2 {
			// 1234,56
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		} else if isGrouped(parts) {
			// 1,234
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0:
		if parts := strings.Split(cleaned, "."); len(parts) > 2 && isGrouped(parts) {
			// 1.234.567
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", amountStr, cleaned)
	}

	if isNegative {
		amount = -amount
	}
	return amount, nil
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}

func isBlank(row []interface{}) bool {
	for i := range row {
		if getString(row, i) != "" {
			return false
		}
	}
	return true
}

// isGrouped reports whether parts are thousands groups: a leading group of
// one to three digits followed by groups of exactly three.
func isGrouped(parts []string) bool {
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, group := range parts[1:] {
		if len(group) != 3 {
			return false
		}
	}
	return true
}
