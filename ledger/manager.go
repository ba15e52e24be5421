package ledger

import (
	"context"
	"fmt"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/pricing"
	"github.com/darioabadie/inmo/rules"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// MANAGER - incremental per-property ledger extension
// =============================================================================

// Manager extends each property's ledger from its last recorded month
// up to a target month. Properties are independent of each other; the
// months of one property are strictly sequential, because each month's
// anchor is the previous month's base price.
type Manager struct {
	Store     Store
	Resolver  *pricing.Resolver
	Overrides rules.Source
	Log       *logrus.Logger
}

func NewManager(store Store, resolver *pricing.Resolver, overrides rules.Source, log *logrus.Logger) *Manager {
	if overrides == nil {
		overrides = rules.NoOverrides{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &Manager{Store: store, Resolver: resolver, Overrides: overrides, Log: log}
}

var one = decimal.NewFromInt(1)

// Run extends the ledger of every record through `until`. A failing
// property is skipped with a tagged warning; the batch always finishes.
func (m *Manager) Run(ctx context.Context, records []contract.Record, until contract.Month) *Summary {
	summary := &Summary{
		Until:  until,
		States: make(map[string]State, len(records)),
	}

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			m.skip(summary, rec, err)
			continue
		}

		summary.States[rec.Property] = StateInProgress
		appended, warns, err := m.extend(ctx, rec, until)
		for _, w := range warns {
			summary.Warnings = append(summary.Warnings, m.warning(rec, w))
		}
		if err != nil {
			m.skip(summary, rec, err)
			continue
		}

		summary.Processed++
		summary.Appended += appended
		summary.States[rec.Property] = StateUpToDate
		m.Log.WithFields(logrus.Fields{
			"property": rec.Property,
			"appended": appended,
		}).Info("ledger extended")
	}
	return summary
}

func (m *Manager) skip(s *Summary, rec contract.Record, err error) {
	s.Skipped++
	s.Warnings = append(s.Warnings, m.warning(rec, err.Error()))
	s.States[rec.Property] = StateNotStarted
	m.Log.WithError(err).WithField("property", rec.Property).Warn("property skipped")
}

func (m *Manager) warning(rec contract.Record, reason string) Warning {
	start := ""
	if !rec.StartDate.IsZero() {
		start = rec.StartDate.Format("2006-01-02")
	}
	return Warning{
		Property:      rec.Property,
		Tenant:        rec.Tenant,
		ContractStart: start,
		OriginalPrice: rec.OriginalPrice,
		Reason:        reason,
	}
}

// extend appends the missing months for one property and returns how
// many were added. It never touches existing entries.
func (m *Manager) extend(ctx context.Context, rec contract.Record, until contract.Month) (int, []string, error) {
	existing, err := m.Store.Entries(ctx, rec.Property)
	if err != nil {
		return 0, nil, fmt.Errorf("reading ledger: %w", err)
	}

	// Setup case: no history, resume from the contract's first month
	// anchored at the original price. Otherwise resume right after the
	// latest recorded month, anchored at its base price. That cell may
	// carry a manual correction, and the correction wins.
	resume := rec.StartMonth()
	anchor := rec.OriginalPrice
	if len(existing) > 0 {
		last := existing[0]
		for _, e := range existing[1:] {
			if e.Month.After(last.Month) {
				last = e
			}
		}
		resume = last.Month.Next()
		anchor = last.BasePrice
	}

	if len(existing) == 0 && rec.StartMonth().After(until) {
		return 0, nil, fmt.Errorf("%w: starts %s, target %s", contract.ErrNotInForce, rec.StartMonth(), until)
	}
	if resume.After(until) {
		// Already up to date: re-running is a no-op.
		return 0, nil, nil
	}

	var batch []Entry
	var warns []string
	for month := resume; !month.After(until); month = month.Next() {
		sched, err := contract.NewSchedule(rec, month)
		if err != nil {
			return 0, warns, err
		}
		if sched.Expired(rec.DurationMonths) {
			break
		}

		base := anchor
		updated := false
		updatePct := ""
		if sched.UpdateApplies {
			factor, cycleWarns, err := m.Resolver.CycleFactor(ctx, rec, sched, sched.CyclesCompleted)
			if err != nil {
				return 0, warns, err
			}
			warns = append(warns, cycleWarns...)

			// A cycle fully degraded to the neutral factor is reported
			// as "no update", matching how a failed fetch has always
			// shown up in the sheet.
			if !factor.Equal(one) || len(cycleWarns) == 0 {
				base = anchor.Mul(factor).Round(2)
				updated = true
				updatePct = factor.Sub(one).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
			}
		}

		entry, err := m.entryFor(rec, sched, base, updated, updatePct)
		if err != nil {
			return 0, warns, err
		}
		batch = append(batch, entry)
		anchor = entry.BasePrice
	}

	if len(batch) == 0 {
		return 0, warns, nil
	}
	if err := m.Store.Append(ctx, batch); err != nil {
		return 0, warns, fmt.Errorf("appending ledger: %w", err)
	}
	return len(batch), warns, nil
}

// entryFor runs the downstream pipeline for one month: overrides,
// composition, settlement.
func (m *Manager) entryFor(rec contract.Record, sched contract.Schedule, base decimal.Decimal, updated bool, updatePct string) (Entry, error) {
	in := pricing.Inputs{
		BasePrice:     base,
		DiscountPct:   rec.DiscountPct,
		TenantFee:     rec.TenantFee,
		Deposit:       rec.Deposit,
		ContractMonth: sched.ContractMonth(),
		Charges:       rec.Charges,
	}
	tenantMap, globalMap := m.Overrides.Overrides(rec.Property, rec.Tenant, sched.Reference)
	in = rules.Apply(in, tenantMap, globalMap)

	breakdown, err := pricing.Compose(in)
	if err != nil {
		return Entry{}, err
	}
	commissionPct, err := contract.ParsePercent(rec.CommissionPct)
	if err != nil {
		return Entry{}, err
	}
	settlement := pricing.Settle(breakdown.DiscountedPrice, commissionPct)

	return Entry{
		Property: rec.Property,
		Address:  rec.Address,
		Tenant:   rec.Tenant,
		Owner:    rec.Owner,
		Month:    sched.Reference,

		BasePrice:       breakdown.BasePrice,
		DiscountedPrice: breakdown.DiscountedPrice,
		Discount:        in.DiscountPct.StringFixed(1) + "%",

		FeeSurcharge:     breakdown.FeeSurcharge,
		DepositSurcharge: breakdown.DepositSurcharge,
		Surcharge:        breakdown.Surcharge,
		SurchargeDetail:  breakdown.SurchargeDetail,

		Charges:      in.Charges,
		FixedCharges: breakdown.FixedCharges,
		FinalPrice:   breakdown.FinalPrice,

		Commission:  settlement.Commission,
		OwnerPayout: settlement.OwnerPayout,

		Updated:   updated,
		UpdatePct: updatePct,

		MonthsToNextUpdate: sched.MonthsToNextUpdate,
		MonthsToRenewal:    sched.MonthsToRenewal,
	}, nil
}

// =============================================================================
// SINGLE-MONTH COMPUTATION - the monthly payment file
// =============================================================================

// ComputeMonth computes every record's obligation for one reference
// month directly from the original price and the full compounded
// factor, without touching the ledger. Expired and not-yet-vigent
// contracts are excluded with a tagged warning.
func (m *Manager) ComputeMonth(ctx context.Context, records []contract.Record, month contract.Month) ([]Entry, []Warning) {
	var entries []Entry
	var warnings []Warning

	for _, rec := range records {
		entry, warns, err := m.computeOne(ctx, rec, month)
		for _, w := range warns {
			warnings = append(warnings, m.warning(rec, w))
		}
		if err != nil {
			warnings = append(warnings, m.warning(rec, err.Error()))
			m.Log.WithError(err).WithField("property", rec.Property).Warn("property excluded from monthly run")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, warnings
}

func (m *Manager) computeOne(ctx context.Context, rec contract.Record, month contract.Month) (Entry, []string, error) {
	if err := rec.Validate(); err != nil {
		return Entry{}, nil, err
	}
	sched, err := contract.NewSchedule(rec, month)
	if err != nil {
		return Entry{}, nil, err
	}
	if sched.Expired(rec.DurationMonths) {
		return Entry{}, nil, fmt.Errorf("%w: %d months elapsed of %d", contract.ErrExpiredContract, sched.MonthsElapsed, rec.DurationMonths)
	}

	res, err := m.Resolver.Resolve(ctx, rec, sched)
	if err != nil {
		return Entry{}, nil, err
	}

	updatePct := ""
	if sched.UpdateApplies {
		updatePct = res.UpdatePct().StringFixed(2) + "%"
	}

	entry, err := m.entryFor(rec, sched, rec.OriginalPrice.Mul(res.TotalFactor), sched.UpdateApplies, updatePct)
	if err != nil {
		return Entry{}, res.Warnings, err
	}
	return entry, res.Warnings, nil
}
