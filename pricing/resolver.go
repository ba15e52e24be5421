/*
Package pricing turns a contract's calendar position into money: it
resolves index factors for completed update cycles, composes the monthly
payable amount, and splits the management commission from the owner
payout.

PIPELINE:
  contract.Schedule -> Resolver (index factors)
                    -> Compose  (discount, installments, fixed charges)
                    -> Settle   (commission / owner payout)

Each stage is a pure function over immutable inputs; only the Resolver
talks to the outside world, through two narrow provider interfaces.

FACTOR COMPOSITION INVARIANT:
  Index factors cover exactly one completed cycle each and compose by
  multiplication, never by addition. No intermediate rounding: monetary
  rounding happens once, when a derived field is emitted.

FAILURE POLICY:
  A provider failure for a cycle degrades that cycle to the neutral
  factor 1.0 and surfaces a warning. It never aborts the batch.
*/
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/darioabadie/inmo/contract"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrProviderFailure tags errors from external index providers. Callers
// recover with the neutral factor; the tag survives into warnings.
var ErrProviderFailure = errors.New("external provider failure")

// =============================================================================
// PROVIDER INTERFACES
// =============================================================================

// InflationProvider returns monthly inflation percentages for a month
// window. The series may omit months; the resolver must not assume it
// is complete.
type InflationProvider interface {
	MonthlyRates(ctx context.Context, from, to contract.Month) (map[contract.Month]decimal.Decimal, error)
}

// IndexPoint is one observation of a dated index series.
type IndexPoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// LaborCostProvider returns the labor-cost index observations inside a
// date range. The series may arrive in any order, including reverse
// chronological; consumers must match by date, never by position.
type LaborCostProvider interface {
	Series(ctx context.Context, from, to time.Time) ([]IndexPoint, error)
}

// =============================================================================
// FACTOR CACHE - per-run, write-once per (index kind, window)
// =============================================================================

type factorKey struct {
	kind contract.IndexKind
	from contract.Month
	to   contract.Month
}

// FactorCache memoizes cycle factors within one batch run so properties
// sharing a cycle window hit the provider once. Entries are write-once;
// failed lookups are not cached, so a transient provider error does not
// pin the neutral factor for the rest of the run.
type FactorCache struct {
	mu      sync.Mutex
	factors map[factorKey]decimal.Decimal
}

func NewFactorCache() *FactorCache {
	return &FactorCache{factors: make(map[factorKey]decimal.Decimal)}
}

func (c *FactorCache) lookup(k factorKey) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.factors[k]
	return f, ok
}

func (c *FactorCache) store(k factorKey, f decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.factors[k]; !ok {
		c.factors[k] = f
	}
}

// Len returns the number of cached windows, for observability.
func (c *FactorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.factors)
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver produces the multiplicative update factors for a contract's
// completed cycles.
type Resolver struct {
	Inflation InflationProvider
	LaborCost LaborCostProvider
	Cache     *FactorCache
	Log       *logrus.Logger
}

func NewResolver(inflation InflationProvider, laborCost LaborCostProvider, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.New()
	}
	return &Resolver{
		Inflation: inflation,
		LaborCost: laborCost,
		Cache:     NewFactorCache(),
		Log:       log,
	}
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// Resolution is the outcome of resolving all completed cycles.
type Resolution struct {
	Kind contract.IndexKind

	// TotalFactor compounds every completed cycle: the factor to apply
	// to the original price.
	TotalFactor decimal.Decimal

	// LastFactor covers only the most recent completed cycle; it backs
	// the reported update percentage. 1 when no cycle has completed.
	LastFactor decimal.Decimal

	// Warnings lists cycles degraded to the neutral factor.
	Warnings []string
}

// UpdatePct returns the last cycle's increase as a percentage.
func (r Resolution) UpdatePct() decimal.Decimal {
	return r.LastFactor.Sub(one).Mul(hundred)
}

// Resolve compounds the factors of cycles 1..CyclesCompleted.
// Fixed-percent parse failures are data errors and abort the property;
// provider failures degrade single cycles to the neutral factor.
func (r *Resolver) Resolve(ctx context.Context, rec contract.Record, sched contract.Schedule) (Resolution, error) {
	res := Resolution{
		Kind:        rec.IndexKind(),
		TotalFactor: one,
		LastFactor:  one,
	}

	for cycle := 1; cycle <= sched.CyclesCompleted; cycle++ {
		factor, warns, err := r.CycleFactor(ctx, rec, sched, cycle)
		if err != nil {
			return Resolution{}, err
		}
		res.TotalFactor = res.TotalFactor.Mul(factor)
		res.LastFactor = factor
		res.Warnings = append(res.Warnings, warns...)
	}
	return res, nil
}

// CycleFactor resolves the factor for one completed cycle (1-based).
// Cycle i covers the freq-month window ending at start + i*freq.
func (r *Resolver) CycleFactor(ctx context.Context, rec contract.Record, sched contract.Schedule, cycle int) (decimal.Decimal, []string, error) {
	switch rec.IndexKind() {
	case contract.IndexInflation:
		f, warns := r.inflationFactor(ctx, rec, sched, cycle)
		return f, warns, nil
	case contract.IndexLaborCost:
		f, warns := r.laborCostFactor(ctx, rec, sched, cycle)
		return f, warns, nil
	default:
		f, err := fixedFactor(rec.Index)
		return f, nil, err
	}
}

func fixedFactor(raw string) (decimal.Decimal, error) {
	pct, err := contract.ParsePercent(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return one.Add(pct.Div(hundred)), nil
}

// inflationFactor compounds the monthly inflation of the freq-wide
// window ending at start + cycle*freq. Missing months degrade to the
// neutral per-month factor and are flagged.
func (r *Resolver) inflationFactor(ctx context.Context, rec contract.Record, sched contract.Schedule, cycle int) (decimal.Decimal, []string) {
	end := rec.StartMonth().Add(cycle * sched.FreqMonths)
	from := end.Add(-(sched.FreqMonths - 1))
	key := factorKey{kind: contract.IndexInflation, from: from, to: end}

	if f, ok := r.Cache.lookup(key); ok {
		return f, nil
	}

	rates, err := r.Inflation.MonthlyRates(ctx, from, end)
	if err != nil {
		warn := fmt.Sprintf("inflation window %s..%s: %v; neutral factor applied", from, end, err)
		r.Log.WithError(err).WithField("window", from.String()+".."+end.String()).
			Warn("inflation provider failed, using neutral factor")
		return one, []string{warn}
	}

	factor := one
	var warns []string
	complete := true
	for m := from; !m.After(end); m = m.Next() {
		rate, ok := rates[m]
		if !ok {
			complete = false
			warns = append(warns, fmt.Sprintf("inflation value missing for %s; neutral month assumed", m))
			continue
		}
		factor = factor.Mul(one.Add(rate.Div(hundred)))
	}

	// Only fully observed windows are worth sharing across properties.
	if complete {
		r.Cache.store(key, factor)
	}
	return factor, warns
}

// laborCostFactor is the ratio between the index values at the window
// boundaries, matched by date. Cycle i spans start+(i-1)*freq to
// start+i*freq.
func (r *Resolver) laborCostFactor(ctx context.Context, rec contract.Record, sched contract.Schedule, cycle int) (decimal.Decimal, []string) {
	fromMonth := rec.StartMonth().Add((cycle - 1) * sched.FreqMonths)
	toMonth := rec.StartMonth().Add(cycle * sched.FreqMonths)
	key := factorKey{kind: contract.IndexLaborCost, from: fromMonth, to: toMonth}

	if f, ok := r.Cache.lookup(key); ok {
		return f, nil
	}

	neutral := func(reason string) (decimal.Decimal, []string) {
		r.Log.WithField("window", fromMonth.String()+".."+toMonth.String()).
			Warn("labor-cost window degraded: " + reason)
		return one, []string{fmt.Sprintf("labor-cost window %s..%s: %s; neutral factor applied", fromMonth, toMonth, reason)}
	}

	points, err := r.LaborCost.Series(ctx, fromMonth.Time(), toMonth.Time())
	if err != nil {
		return neutral(err.Error())
	}
	if len(points) < 2 {
		return neutral("fewer than two observations in window")
	}

	// The raw series may arrive newest-first: pick boundaries by date
	// comparison, never by array position.
	earliest, latest := points[0], points[0]
	for _, p := range points[1:] {
		if p.Date.Before(earliest.Date) {
			earliest = p
		}
		if p.Date.After(latest.Date) {
			latest = p
		}
	}
	if !earliest.Value.IsPositive() {
		return neutral("non-positive index value at window start")
	}

	factor := latest.Value.Div(earliest.Value)
	r.Cache.store(key, factor)
	return factor, nil
}
