/*
Package contract holds the administered-property contract model and the
pure calendar arithmetic derived from it.

KEY CONCEPTS:
  - Record: one administered property/tenant/owner with its lease terms.
    Immutable once read for a run; corrections happen downstream (override
    mapping or a manual edit of a later ledger entry), never by mutating
    the record.
  - Frequency: how often the rent updates (quarterly .. annual).
  - Index: the escalation mechanism (fixed percent, inflation, labor cost).
  - Schedule: elapsed months, completed cycles and proximity counters for
    a (Record, reference month) pair. See schedule.go.

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary value.
  2. Pure functions: nothing here touches the network or a store.
  3. Explicit errors: malformed input maps to the sentinel taxonomy in
     errors.go so the batch can skip a property with a tagged reason.
*/
package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// UPDATE FREQUENCY
// =============================================================================

// Frequency is the rent update cadence as it appears in the master data
// (Spanish labels, matching the administered spreadsheets).
type Frequency string

const (
	FreqQuarterly   Frequency = "trimestral"
	FreqFourMonthly Frequency = "cuatrimestral"
	FreqSemiannual  Frequency = "semestral"
	FreqAnnual      Frequency = "anual"
)

// Months returns the cycle length. Unrecognized values fall back to
// quarterly, the historical default of the master sheet.
func (f Frequency) Months() int {
	switch f {
	case FreqQuarterly:
		return 3
	case FreqFourMonthly:
		return 4
	case FreqSemiannual:
		return 6
	case FreqAnnual:
		return 12
	default:
		return 3
	}
}

// =============================================================================
// ESCALATION INDEX
// =============================================================================

// IndexKind classifies the escalation mechanism of a contract.
type IndexKind string

const (
	IndexFixed     IndexKind = "fixed"      // "10%", "7,5 %"
	IndexInflation IndexKind = "inflation"  // "IPC": monthly inflation series
	IndexLaborCost IndexKind = "labor_cost" // "ICL": labor-cost index ratio
)

// KindOfIndex classifies a raw index cell. Anything that is not a known
// series name is treated as a fixed percentage and validated when parsed.
func KindOfIndex(raw string) IndexKind {
	switch normalizeUpper(raw) {
	case "IPC":
		return IndexInflation
	case "ICL":
		return IndexLaborCost
	default:
		return IndexFixed
	}
}

// =============================================================================
// INSTALLMENT PLANS
// =============================================================================

// Plan is a fractioned payment plan for a one-time tenant fee (agency
// commission or deposit) spread over the first contract months.
type Plan string

const (
	PlanPaidUpfront       Plan = "Pagado"
	PlanTwoInstallments   Plan = "2 cuotas"
	PlanThreeInstallments Plan = "3 cuotas"
)

// Installments returns how many monthly installments the plan spans.
// Zero means paid upfront (no monthly surcharge).
func (p Plan) Installments() int {
	switch p {
	case PlanTwoInstallments:
		return 2
	case PlanThreeInstallments:
		return 3
	default:
		return 0
	}
}

// InTerm reports whether the 1-based contract month still falls inside
// the plan's installment window.
func (p Plan) InTerm(contractMonth int) bool {
	n := p.Installments()
	return n > 0 && contractMonth >= 1 && contractMonth <= n
}

// =============================================================================
// FIXED PASS-THROUGH CHARGES
// =============================================================================

// Charges are fixed monthly amounts passed through to the tenant without
// commission: municipal taxes, utilities and condo fees.
type Charges struct {
	Municipal decimal.Decimal
	Power     decimal.Decimal
	Gas       decimal.Decimal
	Condo     decimal.Decimal
}

func (c Charges) Total() decimal.Decimal {
	return c.Municipal.Add(c.Power).Add(c.Gas).Add(c.Condo)
}

// =============================================================================
// CONTRACT RECORD
// =============================================================================

// Record is one row of the master data: a property/tenant/owner pair and
// its lease terms. Read-only for the duration of a run.
type Record struct {
	Property string // unique property name, the ledger key
	Address  string
	Tenant   string
	Owner    string

	StartDate      time.Time // first day of the first contract month
	DurationMonths int

	OriginalPrice decimal.Decimal
	Frequency     Frequency
	Index         string // "IPC", "ICL" or a fixed percent like "10%"

	CommissionPct string // management commission, e.g. "5%"
	TenantFee     Plan   // tenant-paid agency commission plan
	Deposit       Plan   // deposit plan

	Charges     Charges
	DiscountPct decimal.Decimal
}

// StartMonth returns the contract's first month.
func (r Record) StartMonth() Month { return MonthOf(r.StartDate) }

// EndMonth returns the first month after the contract expires.
func (r Record) EndMonth() Month { return r.StartMonth().Add(r.DurationMonths) }

// IndexKind classifies the record's escalation index.
func (r Record) IndexKind() IndexKind { return KindOfIndex(r.Index) }
