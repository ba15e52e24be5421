package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/darioabadie/inmo/contract"
	"github.com/shopspring/decimal"
)

// ErrNegativePrice is returned when a composed amount goes below zero.
// That is a data-integrity problem to flag for manual review, never a
// value to clamp.
var ErrNegativePrice = errors.New("negative composed price")

// Installment interest: fractioning the agency commission costs the
// tenant 10% over 2 installments or 20% over 3. Deposits fraction
// without interest.
var (
	feeInterestTwo   = decimal.RequireFromString("1.10")
	feeInterestThree = decimal.RequireFromString("1.20")
)

// =============================================================================
// COMPOSITION INPUTS
// =============================================================================

// Inputs is everything Compose needs for one property-month. The rules
// layer may have replaced discount, charges or installment amounts
// before composition; Compose does not know or care.
type Inputs struct {
	// BasePrice is the compounded base for the month: the anchor price
	// with this month's update factor already applied.
	BasePrice decimal.Decimal

	DiscountPct   decimal.Decimal
	TenantFee     contract.Plan
	Deposit       contract.Plan
	ContractMonth int // 1-based month within the contract
	Charges       contract.Charges

	// Overrides resolved by the rules layer; nil means "computed value".
	FeeSurchargeOverride     *decimal.Decimal
	DepositSurchargeOverride *decimal.Decimal
}

// Breakdown is the composed result for one property-month. Every field
// is rounded to centavos at emission; nothing here feeds back into
// compounding.
type Breakdown struct {
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.Decimal

	FeeSurcharge     decimal.Decimal
	DepositSurcharge decimal.Decimal
	Surcharge        decimal.Decimal
	SurchargeDetail  string

	FixedCharges decimal.Decimal
	FinalPrice   decimal.Decimal
}

// =============================================================================
// COMPOSE
// =============================================================================

// Compose applies discount, installment surcharges and fixed
// pass-through charges to the month's base price.
//
// Installment surcharges are gated by the contract month alone: they run
// from contract start for the plan's length, independent of price
// updates, and always use the CURRENT discounted price, so an update
// mid-plan raises the remaining installments.
func Compose(in Inputs) (Breakdown, error) {
	if in.BasePrice.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: base %s", ErrNegativePrice, in.BasePrice)
	}

	discounted := in.BasePrice.Mul(one.Sub(in.DiscountPct.Div(hundred))).Round(2)
	if discounted.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: discount %s%% on base %s", ErrNegativePrice, in.DiscountPct, in.BasePrice)
	}

	var detail []string

	fee := decimal.Zero
	if in.TenantFee.InTerm(in.ContractMonth) {
		n := decimal.NewFromInt(int64(in.TenantFee.Installments()))
		interest := feeInterestTwo
		if in.TenantFee.Installments() == 3 {
			interest = feeInterestThree
		}
		fee = discounted.Mul(interest).Div(n).Round(2)
		detail = append(detail, fmt.Sprintf("comisión cuota %d/%d", in.ContractMonth, in.TenantFee.Installments()))
	}
	if in.FeeSurchargeOverride != nil {
		fee = in.FeeSurchargeOverride.Round(2)
	}

	deposit := decimal.Zero
	if in.Deposit.InTerm(in.ContractMonth) {
		n := decimal.NewFromInt(int64(in.Deposit.Installments()))
		deposit = discounted.Div(n).Round(2)
		detail = append(detail, fmt.Sprintf("depósito cuota %d/%d", in.ContractMonth, in.Deposit.Installments()))
	}
	if in.DepositSurchargeOverride != nil {
		deposit = in.DepositSurchargeOverride.Round(2)
	}

	charges := in.Charges.Total().Round(2)
	final := discounted.Add(fee).Add(deposit).Add(charges).Round(2)
	if final.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: final %s", ErrNegativePrice, final)
	}

	return Breakdown{
		BasePrice:        in.BasePrice.Round(2),
		DiscountedPrice:  discounted,
		FeeSurcharge:     fee,
		DepositSurcharge: deposit,
		Surcharge:        fee.Add(deposit),
		SurchargeDetail:  strings.Join(detail, " + "),
		FixedCharges:     charges,
		FinalPrice:       final,
	}, nil
}
