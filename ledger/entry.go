/*
Package ledger maintains the append-only monthly history of computed
rent obligations per administered property.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: the engine only adds months. It never rewrites an
     existing entry, whatever it finds in it.
  2. ANCHORED RESUMPTION: compounding resumes from the latest recorded
     base price. A human may have corrected that cell; the correction
     is authoritative and becomes the new anchor.
  3. IDEMPOTENT: re-running with no new target months appends nothing.

The one mutation a store may expose (AmendBasePrice) models the manual
correction itself and is restricted to the base-price column.
*/
package ledger

import (
	"context"

	"github.com/darioabadie/inmo/contract"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER ENTRY - one property, one month
// =============================================================================

type Entry struct {
	Property string `json:"nombre_inmueble"`
	Address  string `json:"dir_inmueble"`
	Tenant   string `json:"inquilino"`
	Owner    string `json:"propietario"`

	Month contract.Month `json:"-"`

	// BasePrice is the compounded base after this month's update, the
	// anchor for every later month. The only externally editable field.
	BasePrice decimal.Decimal `json:"precio_base"`

	DiscountedPrice decimal.Decimal `json:"precio_descuento"`
	Discount        string          `json:"descuento"`

	FeeSurcharge     decimal.Decimal `json:"cuotas_comision"`
	DepositSurcharge decimal.Decimal `json:"cuotas_deposito"`
	Surcharge        decimal.Decimal `json:"cuotas_adicionales"`
	SurchargeDetail  string          `json:"detalle_cuotas"`

	Charges      contract.Charges `json:"-"`
	FixedCharges decimal.Decimal  `json:"gastos_fijos"`
	FinalPrice   decimal.Decimal  `json:"precio_final"`

	Commission  decimal.Decimal `json:"comision_inmo"`
	OwnerPayout decimal.Decimal `json:"pago_prop"`

	Updated   bool   `json:"actualizacion"`
	UpdatePct string `json:"porc_actual"` // empty when no update occurred

	MonthsToNextUpdate int `json:"meses_prox_actualizacion"`
	MonthsToRenewal    int `json:"meses_prox_renovacion"`
}

// =============================================================================
// STORE - persistence boundary
// =============================================================================

// Store persists ledger entries. Append is the only write the engine
// performs; AmendBasePrice exists for the manual-correction workflow
// and touches nothing but the base-price column.
type Store interface {
	// Entries returns all entries for a property in chronological order.
	Entries(ctx context.Context, property string) ([]Entry, error)

	// Append adds new entries. Appending a (property, month) that
	// already exists is an error: prior rows are never rewritten.
	Append(ctx context.Context, entries []Entry) error

	// AmendBasePrice records a manual correction of one entry's base
	// price. Subsequent runs compound from the corrected value.
	AmendBasePrice(ctx context.Context, property string, month contract.Month, price decimal.Decimal) error
}

// =============================================================================
// RUN STATE AND OBSERVABILITY
// =============================================================================

// State is the per-property position in the extension lifecycle.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateInProgress State = "IN_PROGRESS"
	StateUpToDate   State = "UP_TO_DATE"
)

// Warning is one structured observability record: a property that was
// skipped or computed with degraded precision, with enough identity to
// chase it in the master data.
type Warning struct {
	Property      string          `json:"nombre_inmueble"`
	Tenant        string          `json:"inquilino"`
	ContractStart string          `json:"fecha_inicio_contrato"`
	OriginalPrice decimal.Decimal `json:"precio_original"`
	Reason        string          `json:"motivo"`
}

// Summary reports one batch run.
type Summary struct {
	Until     contract.Month   `json:"hasta"`
	Processed int              `json:"propiedades_procesadas"`
	Skipped   int              `json:"propiedades_omitidas"`
	Appended  int              `json:"registros_nuevos"`
	States    map[string]State `json:"estados"`
	Warnings  []Warning        `json:"avisos"`
}
