package accounting

import (
	"fmt"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept for amounts.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// maxAmount is the smallest magnitude a NUMERIC(12, 2) column cannot hold.
var maxAmount = decimal.New(1, 10)

// CheckAmount rejects a value that would not be stored unchanged: more than
// MoneyPlaces decimal places, or more than ten integer digits.
func CheckAmount(name string, d decimal.Decimal) error {
	if !d.Equal(d.Round(MoneyPlaces)) {
		return fmt.Errorf("%s %s has more than %d decimal places", name, d.String(), MoneyPlaces)
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%s %s is too large", name, d.String())
	}
	return nil
}

type namedAmount struct {
	name  string
	value decimal.Decimal
}

func checkAmounts(prefix string, amounts ...namedAmount) error {
	for _, a := range amounts {
		if err := CheckAmount(prefix+a.name, a.value); err != nil {
			return err
		}
	}
	return nil
}

// CalculateLine fills the HT, TVA and TTC totals of a line from its quantity, unit price and VAT rate.
// HT and TVA are rounded half away from zero to cents; TTC is their sum.
// Inputs and totals must fit a NUMERIC(12, 2) column exactly.
func CalculateLine(line domain.InvoiceLine) (domain.InvoiceLine, error) {
	prefix := fmt.Sprintf("line %d: ", line.Position)
	if err := checkAmounts(prefix,
		namedAmount{"quantity", line.Qty},
		namedAmount{"unit price", line.UnitPrice},
		namedAmount{"vat rate", line.VATRate},
	); err != nil {
		return line, err
	}
	if line.Qty.IsNegative() {
		return line, fmt.Errorf("line %d: quantity must not be negative", line.Position)
	}
	if line.VATRate.IsNegative() || line.VATRate.GreaterThan(hundred) {
		return line, fmt.Errorf("line %d: vat rate must be between 0 and 100", line.Position)
	}

	ht := line.Qty.Mul(line.UnitPrice).Round(MoneyPlaces)
	tva := ht.Mul(line.VATRate).Div(hundred).Round(MoneyPlaces)

	line.TotalHT = ht
	line.TotalTVA = tva
	line.TotalTTC = ht.Add(tva)
	if err := checkAmounts(prefix,
		namedAmount{"total ht", line.TotalHT},
		namedAmount{"total tva", line.TotalTVA},
		namedAmount{"total ttc", line.TotalTTC},
	); err != nil {
		return line, err
	}
	return line, nil
}

// CalculateInvoiceTotals recomputes every line and sets the invoice totals to the sum of its lines.
// Lines get consecutive positions starting at 1 when none were given.
func CalculateInvoiceTotals(invoice *domain.Invoice) error {
	totalHT := decimal.Zero
	totalTVA := decimal.Zero

	for i := range invoice.Lines {
		if invoice.Lines[i].Position == 0 {
			invoice.Lines[i].Position = i + 1
		}
		computed, err := CalculateLine(invoice.Lines[i])
		if err != nil {
			return err
		}
		invoice.Lines[i] = computed
		totalHT = totalHT.Add(computed.TotalHT)
		totalTVA = totalTVA.Add(computed.TotalTVA)
	}

	invoice.TotalHT = totalHT
	invoice.TotalTVA = totalTVA
	invoice.TotalTTC = totalHT.Add(totalTVA)
	return checkAmounts("invoice ",
		namedAmount{"total ht", invoice.TotalHT},
		namedAmount{"total tva", invoice.TotalTVA},
		namedAmount{"total ttc", invoice.TotalTTC},
	)
}

// ValidateMatchedAmount checks that a reconciliation amount is strictly positive and storable.
func ValidateMatchedAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("matched amount must be positive, got %s", amount.String())
	}
	return CheckAmount("matched amount", amount)
}
