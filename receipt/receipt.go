// Package receipt renders a ledger entry as a tenant-facing monthly
// receipt with currency-formatted amounts.
package receipt

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/darioabadie/inmo/ledger"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the Argentine peso, the currency of every
// administered contract.
const DefaultCurrency = "ARS"

// Amount formats a decimal amount in the given currency, respecting its
// fraction digits and locale separators ("$ 121.000,00" for ARS).
func Amount(d decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return d.StringFixed(2)
	}
	return money.New(d.Shift(int32(cur.Fraction)).IntPart(), currency).Display()
}

// Render produces the plain-text receipt for one property-month.
func Render(e ledger.Entry) string {
	ars := func(d decimal.Decimal) string { return Amount(d, DefaultCurrency) }

	var b strings.Builder
	fmt.Fprintf(&b, "RECIBO DE ALQUILER - %s\n", e.Month)
	fmt.Fprintf(&b, "Inmueble:    %s", e.Property)
	if e.Address != "" {
		fmt.Fprintf(&b, " (%s)", e.Address)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Inquilino:   %s\n", e.Tenant)
	fmt.Fprintf(&b, "Propietario: %s\n", e.Owner)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Precio base:          %s\n", ars(e.BasePrice))
	if !e.DiscountedPrice.Equal(e.BasePrice) {
		fmt.Fprintf(&b, "Descuento:            %s\n", e.Discount)
		fmt.Fprintf(&b, "Precio con descuento: %s\n", ars(e.DiscountedPrice))
	}
	if e.Surcharge.IsPositive() {
		fmt.Fprintf(&b, "Cuotas adicionales:   %s (%s)\n", ars(e.Surcharge), e.SurchargeDetail)
	}
	if e.FixedCharges.IsPositive() {
		fmt.Fprintf(&b, "Gastos fijos:         %s\n", ars(e.FixedCharges))
	}
	fmt.Fprintf(&b, "TOTAL A PAGAR:        %s\n", ars(e.FinalPrice))
	b.WriteString("\n")

	if e.Updated {
		fmt.Fprintf(&b, "Actualización aplicada este mes: %s\n", e.UpdatePct)
	}
	fmt.Fprintf(&b, "Próxima actualización en %d meses. Renovación en %d meses.\n",
		e.MonthsToNextUpdate, e.MonthsToRenewal)
	return b.String()
}

// RenderOwner produces the owner-facing settlement note: commission
// retained and net payout.
func RenderOwner(e ledger.Entry) string {
	ars := func(d decimal.Decimal) string { return Amount(d, DefaultCurrency) }

	var b strings.Builder
	fmt.Fprintf(&b, "LIQUIDACIÓN AL PROPIETARIO - %s\n", e.Month)
	fmt.Fprintf(&b, "Inmueble:     %s\n", e.Property)
	fmt.Fprintf(&b, "Propietario:  %s\n", e.Owner)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Alquiler del mes:     %s\n", ars(e.DiscountedPrice))
	fmt.Fprintf(&b, "Comisión de gestión:  %s\n", ars(e.Commission))
	fmt.Fprintf(&b, "NETO A TRANSFERIR:    %s\n", ars(e.OwnerPayout))
	return b.String()
}
