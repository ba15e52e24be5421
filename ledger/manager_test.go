package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/ledger"
	"github.com/darioabadie/inmo/pricing"
	"github.com/darioabadie/inmo/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quarterlyRecord() contract.Record {
	return contract.Record{
		Property:       "Depto Lima 1435",
		Address:        "Lima 1435 3B",
		Tenant:         "Ana Gomez",
		Owner:          "Luis Diaz",
		StartDate:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		DurationMonths: 24,
		OriginalPrice:  decimal.NewFromInt(100000),
		Frequency:      contract.FreqQuarterly,
		Index:          "10%",
		CommissionPct:  "5%",
	}
}

func newManager(s ledger.Store) *ledger.Manager {
	return ledger.NewManager(s, pricing.NewResolver(nil, nil, quietLog()), nil, quietLog())
}

func entriesOf(t *testing.T, s ledger.Store, property string) []ledger.Entry {
	t.Helper()
	es, err := s.Entries(context.Background(), property)
	require.NoError(t, err)
	return es
}

// =============================================================================
// SETUP AND COMPOUNDING
// =============================================================================

func TestRun_SetupBackfillsFromContractStart(t *testing.T) {
	// GIVEN: an empty ledger, 10% quarterly since 2024-01
	// WHEN: extending through 2024-07
	// THEN: seven months, base stepping 100000 -> 110000 -> 121000
	mem := store.NewMemory()
	m := newManager(mem)
	rec := quarterlyRecord()

	sum := m.Run(context.Background(), []contract.Record{rec}, contract.NewMonth(2024, time.July))

	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 0, sum.Skipped)
	assert.Equal(t, 7, sum.Appended)
	assert.Equal(t, ledger.StateUpToDate, sum.States[rec.Property])

	es := entriesOf(t, mem, rec.Property)
	require.Len(t, es, 7)

	wantBase := []string{"100000", "100000", "100000", "110000", "110000", "110000", "121000"}
	for i, want := range wantBase {
		assert.True(t, es[i].BasePrice.Equal(dec(want)),
			"month %s: base %s, want %s", es[i].Month, es[i].BasePrice, want)
	}

	april := es[3]
	assert.True(t, april.Updated)
	assert.Equal(t, "10.00%", april.UpdatePct)
	may := es[4]
	assert.False(t, may.Updated)
	assert.Equal(t, "", may.UpdatePct)

	// commission and payout split the discounted price exactly
	july := es[6]
	assert.True(t, july.Commission.Equal(dec("6050")), "commission %s", july.Commission)
	assert.True(t, july.OwnerPayout.Equal(dec("114950")), "payout %s", july.OwnerPayout)
	assert.True(t, july.FinalPrice.Equal(dec("121000")), "final %s", july.FinalPrice)
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	mem := store.NewMemory()
	m := newManager(mem)
	rec := quarterlyRecord()
	until := contract.NewMonth(2024, time.July)

	first := m.Run(context.Background(), []contract.Record{rec}, until)
	require.Equal(t, 7, first.Appended)

	second := m.Run(context.Background(), []contract.Record{rec}, until)
	assert.Equal(t, 0, second.Appended, "rerun with no new months must append nothing")
	assert.Equal(t, 1, second.Processed)
	assert.Len(t, entriesOf(t, mem, rec.Property), 7)
}

func TestRun_ResumesFromLatestRecordedMonth(t *testing.T) {
	mem := store.NewMemory()
	m := newManager(mem)
	rec := quarterlyRecord()

	m.Run(context.Background(), []contract.Record{rec}, contract.NewMonth(2024, time.May))
	sum := m.Run(context.Background(), []contract.Record{rec}, contract.NewMonth(2024, time.August))

	assert.Equal(t, 3, sum.Appended, "only June..August are new")
	es := entriesOf(t, mem, rec.Property)
	require.Len(t, es, 8)
	assert.True(t, es[6].BasePrice.Equal(dec("121000")), "July base %s", es[6].BasePrice)
}

// =============================================================================
// MANUAL CORRECTIONS
// =============================================================================

func TestRun_AmendedBasePriceAnchorsLaterMonths(t *testing.T) {
	// GIVEN: a ledger through 2024-07 whose last base was hand-corrected
	// WHEN: extending three more months
	// THEN: the correction is the new anchor; recorded months keep their values
	mem := store.NewMemory()
	m := newManager(mem)
	rec := quarterlyRecord()
	ctx := context.Background()

	m.Run(ctx, []contract.Record{rec}, contract.NewMonth(2024, time.July))
	require.NoError(t, mem.AmendBasePrice(ctx, rec.Property, contract.NewMonth(2024, time.July), dec("130000")))

	sum := m.Run(ctx, []contract.Record{rec}, contract.NewMonth(2024, time.October))
	require.Equal(t, 3, sum.Appended)

	es := entriesOf(t, mem, rec.Property)
	require.Len(t, es, 10)
	assert.True(t, es[7].BasePrice.Equal(dec("130000")), "August base %s", es[7].BasePrice)
	assert.True(t, es[8].BasePrice.Equal(dec("130000")), "September base %s", es[8].BasePrice)
	assert.True(t, es[9].BasePrice.Equal(dec("143000")), "October base %s (10%% on the corrected anchor)", es[9].BasePrice)
	assert.True(t, es[3].BasePrice.Equal(dec("110000")), "earlier months stay as recorded")
}

// =============================================================================
// LIFECYCLE BOUNDARIES
// =============================================================================

func TestRun_StopsAtContractEnd(t *testing.T) {
	mem := store.NewMemory()
	m := newManager(mem)
	rec := quarterlyRecord()
	rec.DurationMonths = 6

	sum := m.Run(context.Background(), []contract.Record{rec}, contract.NewMonth(2024, time.December))

	assert.Equal(t, 6, sum.Appended, "nothing past the contract's last month")
	es := entriesOf(t, mem, rec.Property)
	require.Len(t, es, 6)
	assert.Equal(t, contract.NewMonth(2024, time.June), es[5].Month)
}

func TestRun_SkipTaxonomy(t *testing.T) {
	mem := store.NewMemory()
	m := newManager(mem)

	missing := quarterlyRecord()
	missing.Property = "Sin Inquilino"
	missing.Tenant = ""

	future := quarterlyRecord()
	future.Property = "Futuro"
	future.StartDate = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	ok := quarterlyRecord()

	sum := m.Run(context.Background(), []contract.Record{missing, future, ok},
		contract.NewMonth(2024, time.July))

	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 2, sum.Skipped)
	assert.Equal(t, ledger.StateNotStarted, sum.States["Sin Inquilino"])
	assert.Equal(t, ledger.StateNotStarted, sum.States["Futuro"])
	assert.Equal(t, ledger.StateUpToDate, sum.States[ok.Property])

	require.Len(t, sum.Warnings, 2)
	assert.Contains(t, sum.Warnings[0].Reason, "inquilino")
	assert.Contains(t, sum.Warnings[1].Reason, "not yet in force")
	assert.Empty(t, entriesOf(t, mem, "Sin Inquilino"), "skipped properties get no entries")
}

// =============================================================================
// SINGLE-MONTH COMPUTATION
// =============================================================================

func TestComputeMonth_FromOriginalPriceAndTotalFactor(t *testing.T) {
	m := newManager(store.NewMemory())
	rec := quarterlyRecord()

	entries, warnings := m.ComputeMonth(context.Background(), []contract.Record{rec},
		contract.NewMonth(2024, time.July))

	require.Len(t, entries, 1)
	assert.Empty(t, warnings)
	assert.True(t, entries[0].BasePrice.Equal(dec("121000")), "base %s", entries[0].BasePrice)
	assert.True(t, entries[0].Updated)
	assert.Equal(t, "10.00%", entries[0].UpdatePct)
	assert.Equal(t, 3, entries[0].MonthsToNextUpdate)
	assert.Equal(t, 18, entries[0].MonthsToRenewal)
}

func TestComputeMonth_ExcludesExpiredWithWarning(t *testing.T) {
	m := newManager(store.NewMemory())
	rec := quarterlyRecord()
	rec.DurationMonths = 6

	entries, warnings := m.ComputeMonth(context.Background(), []contract.Record{rec},
		contract.NewMonth(2024, time.July))

	assert.Empty(t, entries)
	require.Len(t, warnings, 1)
	assert.Equal(t, rec.Property, warnings[0].Property)
	assert.Contains(t, warnings[0].Reason, "contract expired")
	assert.True(t, warnings[0].OriginalPrice.Equal(rec.OriginalPrice))
}
