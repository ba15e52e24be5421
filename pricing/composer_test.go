package pricing_test

import (
	"testing"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_SurchargeScenario(t *testing.T) {
	// GIVEN: discounted price 300000, commission in 3 cuotas, deposit in 2
	// WHEN: composing month 1
	// THEN: surcharge = 300000*1.20/3 + 300000/2 = 120000 + 150000
	b, err := pricing.Compose(pricing.Inputs{
		BasePrice:     dec("300000"),
		TenantFee:     contract.PlanThreeInstallments,
		Deposit:       contract.PlanTwoInstallments,
		ContractMonth: 1,
	})
	require.NoError(t, err)

	assert.True(t, b.FeeSurcharge.Equal(dec("120000")), "fee: %s", b.FeeSurcharge)
	assert.True(t, b.DepositSurcharge.Equal(dec("150000")), "deposit: %s", b.DepositSurcharge)
	assert.True(t, b.Surcharge.Equal(dec("270000")), "surcharge: %s", b.Surcharge)
	assert.True(t, b.FinalPrice.Equal(dec("570000")), "final: %s", b.FinalPrice)
	assert.Equal(t, "comisión cuota 1/3 + depósito cuota 1/2", b.SurchargeDetail)
}

func TestCompose_SurchargeGating(t *testing.T) {
	// Surcharge is strictly zero from the month after the plan runs out.
	base := dec("100000")

	tests := []struct {
		name  string
		fee   contract.Plan
		dep   contract.Plan
		month int
		want  string
	}{
		{"paid upfront adds nothing", contract.PlanPaidUpfront, contract.PlanPaidUpfront, 1, "0"},
		{"2 cuotas month 2 still in term", contract.PlanTwoInstallments, contract.PlanPaidUpfront, 2, "55000"},
		{"2 cuotas month 3 exhausted", contract.PlanTwoInstallments, contract.PlanPaidUpfront, 3, "0"},
		{"3 cuotas month 3 still in term", contract.PlanThreeInstallments, contract.PlanPaidUpfront, 3, "40000"},
		{"3 cuotas month 4 exhausted", contract.PlanThreeInstallments, contract.PlanPaidUpfront, 4, "0"},
		{"deposit only, no interest", contract.PlanPaidUpfront, contract.PlanThreeInstallments, 2, "33333.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := pricing.Compose(pricing.Inputs{
				BasePrice:     base,
				TenantFee:     tt.fee,
				Deposit:       tt.dep,
				ContractMonth: tt.month,
			})
			require.NoError(t, err)
			assert.True(t, b.Surcharge.Equal(dec(tt.want)), "surcharge %s, want %s", b.Surcharge, tt.want)
		})
	}
}

func TestCompose_SurchargeUsesCurrentDiscountedPrice(t *testing.T) {
	// An update during the installment window raises later installments:
	// the surcharge always divides the month's own discounted price.
	updated, err := pricing.Compose(pricing.Inputs{
		BasePrice:     dec("110000"), // base after a 10% update
		TenantFee:     contract.PlanThreeInstallments,
		ContractMonth: 3,
	})
	require.NoError(t, err)
	assert.True(t, updated.FeeSurcharge.Equal(dec("44000")), "got %s", updated.FeeSurcharge)
}

func TestCompose_DiscountAndCharges(t *testing.T) {
	b, err := pricing.Compose(pricing.Inputs{
		BasePrice:     dec("200000"),
		DiscountPct:   dec("15"),
		ContractMonth: 5,
		Charges: contract.Charges{
			Municipal: dec("3500.50"),
			Power:     dec("1200"),
			Gas:       dec("800"),
			Condo:     dec("25000"),
		},
	})
	require.NoError(t, err)

	assert.True(t, b.DiscountedPrice.Equal(dec("170000")), "discounted: %s", b.DiscountedPrice)
	assert.True(t, b.FixedCharges.Equal(dec("30500.50")), "charges: %s", b.FixedCharges)
	assert.True(t, b.FinalPrice.Equal(dec("200500.50")), "final: %s", b.FinalPrice)
	assert.Empty(t, b.SurchargeDetail)
}

func TestCompose_OverridesReplaceComputedInstallments(t *testing.T) {
	fee := dec("50000")
	b, err := pricing.Compose(pricing.Inputs{
		BasePrice:            dec("100000"),
		TenantFee:            contract.PlanTwoInstallments,
		ContractMonth:        1,
		FeeSurchargeOverride: &fee,
	})
	require.NoError(t, err)
	assert.True(t, b.FeeSurcharge.Equal(dec("50000")), "got %s", b.FeeSurcharge)
	assert.True(t, b.FinalPrice.Equal(dec("150000")), "got %s", b.FinalPrice)
}

func TestCompose_NegativeBaseIsDataError(t *testing.T) {
	_, err := pricing.Compose(pricing.Inputs{BasePrice: dec("-1"), ContractMonth: 1})
	assert.ErrorIs(t, err, pricing.ErrNegativePrice)
}

func TestCompose_DiscountOverHundredIsDataError(t *testing.T) {
	// A discount past 100% drives the discounted price negative. Fixed
	// charges could offset it back above zero in the final sum, so the
	// discounted price is checked on its own.
	_, err := pricing.Compose(pricing.Inputs{
		BasePrice:     dec("100000"),
		DiscountPct:   dec("150"),
		ContractMonth: 1,
		Charges:       contract.Charges{Condo: dec("60000")},
	})
	assert.ErrorIs(t, err, pricing.ErrNegativePrice)
}

func TestSettle_PayoutPlusCommissionIsExact(t *testing.T) {
	// owner_payout + commission == discounted_price, bit for bit
	for _, tc := range []struct{ discounted, pct string }{
		{"170000", "5"},
		{"123456.78", "7.5"},
		{"99.99", "3"},
		{"0.01", "33.3"},
	} {
		s := pricing.Settle(dec(tc.discounted), dec(tc.pct))
		sum := s.Commission.Add(s.OwnerPayout)
		assert.True(t, sum.Equal(dec(tc.discounted)),
			"%s at %s%%: commission %s + payout %s = %s", tc.discounted, tc.pct, s.Commission, s.OwnerPayout, sum)
		assert.Equal(t, int32(-2), s.Commission.Exponent(), "commission rounded to centavos")
	}
}

func TestSettle_CommissionExcludesSurchargesAndCharges(t *testing.T) {
	// Commission is computed on the discounted price only; compose a
	// month with surcharges and charges and settle on the breakdown.
	b, err := pricing.Compose(pricing.Inputs{
		BasePrice:     dec("100000"),
		TenantFee:     contract.PlanTwoInstallments,
		ContractMonth: 1,
		Charges:       contract.Charges{Municipal: dec("5000")},
	})
	require.NoError(t, err)

	s := pricing.Settle(b.DiscountedPrice, dec("5"))
	assert.True(t, s.Commission.Equal(dec("5000")), "got %s", s.Commission)
	assert.True(t, s.OwnerPayout.Equal(dec("95000")), "got %s", s.OwnerPayout)
}
