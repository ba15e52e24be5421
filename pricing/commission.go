package pricing

import "github.com/shopspring/decimal"

// Settlement splits the discounted base price between the agency and
// the owner. Installment surcharges are tenant-only money and fixed
// charges are pass-throughs, so neither appears here.
type Settlement struct {
	Commission  decimal.Decimal
	OwnerPayout decimal.Decimal
}

// Settle computes the management commission on the discounted price and
// derives the owner payout as the exact remainder, so
// commission + payout == discounted for every entry.
func Settle(discounted, commissionPct decimal.Decimal) Settlement {
	commission := discounted.Mul(commissionPct).Div(hundred).Round(2)
	return Settlement{
		Commission:  commission,
		OwnerPayout: discounted.Sub(commission),
	}
}
