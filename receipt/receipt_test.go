package receipt_test

import (
	"testing"
	"time"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/ledger"
	"github.com/darioabadie/inmo/receipt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleEntry() ledger.Entry {
	return ledger.Entry{
		Property:           "Depto Lima 1435",
		Address:            "Lima 1435 3B",
		Tenant:             "Ana Gomez",
		Owner:              "Luis Diaz",
		Month:              contract.NewMonth(2024, time.July),
		BasePrice:          dec("121000"),
		DiscountedPrice:    dec("108900"),
		Discount:           "10.0%",
		Surcharge:          dec("54450"),
		SurchargeDetail:    "comisión cuota 1/2",
		FixedCharges:       dec("18000"),
		FinalPrice:         dec("181350"),
		Commission:         dec("5445"),
		OwnerPayout:        dec("103455"),
		Updated:            true,
		UpdatePct:          "10.00%",
		MonthsToNextUpdate: 3,
		MonthsToRenewal:    18,
	}
}

func TestAmount_ARSLocaleFormat(t *testing.T) {
	assert.Equal(t, "$121.000,00", receipt.Amount(dec("121000"), "ARS"))
	assert.Equal(t, "$5.445,50", receipt.Amount(dec("5445.5"), "ARS"))
	// unknown currency falls back to a plain fixed-point rendering
	assert.Equal(t, "121000.00", receipt.Amount(dec("121000"), "XXX"))
}

func TestRender_TenantReceipt(t *testing.T) {
	out := receipt.Render(sampleEntry())

	assert.Contains(t, out, "RECIBO DE ALQUILER - 2024-07")
	assert.Contains(t, out, "Depto Lima 1435 (Lima 1435 3B)")
	assert.Contains(t, out, "Ana Gomez")
	assert.Contains(t, out, "$121.000,00")
	assert.Contains(t, out, "comisión cuota 1/2")
	assert.Contains(t, out, "TOTAL A PAGAR:        $181.350,00")
	assert.Contains(t, out, "Actualización aplicada este mes: 10.00%")
	assert.Contains(t, out, "Próxima actualización en 3 meses")
}

func TestRender_OmitsEmptySections(t *testing.T) {
	e := sampleEntry()
	e.DiscountedPrice = e.BasePrice
	e.Surcharge = decimal.Zero
	e.FixedCharges = decimal.Zero
	e.Updated = false

	out := receipt.Render(e)
	assert.NotContains(t, out, "Descuento")
	assert.NotContains(t, out, "Cuotas adicionales")
	assert.NotContains(t, out, "Gastos fijos")
	assert.NotContains(t, out, "Actualización aplicada")
}

func TestRenderOwner_Settlement(t *testing.T) {
	out := receipt.RenderOwner(sampleEntry())

	assert.Contains(t, out, "LIQUIDACIÓN AL PROPIETARIO - 2024-07")
	assert.Contains(t, out, "Comisión de gestión:  $5.445,00")
	assert.Contains(t, out, "NETO A TRANSFERIR:    $103.455,00")
}
