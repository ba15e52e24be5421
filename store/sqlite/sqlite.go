/*
Package sqlite provides the SQLite-backed persistence layer.

INTERFACES IMPLEMENTED:
  ledger.Store: the append-only monthly ledger

It also persists the contract master data so the API and the CLI can
serve without re-reading the source sheet.

APPEND-ONLY ENFORCEMENT:
  - UNIQUE(property, month) rejects any rewrite of a recorded month
  - The only UPDATE statement touches the base_price column, backing
    the manual-correction workflow (AmendBasePrice)
  - No DELETE statements on ledger_entries

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not
  block the monthly batch writer.

USAGE:
  st, err := sqlite.New("./data/inmo.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/entry.go: interface definition and entry shape
  - store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/ledger"
	"github.com/darioabadie/inmo/store"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store persists contracts and ledger entries in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Contract master data (one row per administered property)
	CREATE TABLE IF NOT EXISTS contracts (
		property TEXT PRIMARY KEY,
		address TEXT,
		tenant TEXT NOT NULL,
		owner TEXT NOT NULL,
		start_date TEXT NOT NULL,
		duration_months INTEGER NOT NULL,
		original_price TEXT NOT NULL,
		frequency TEXT NOT NULL,
		escalation_index TEXT NOT NULL,
		commission_pct TEXT NOT NULL,
		tenant_fee TEXT,
		deposit TEXT,
		municipal TEXT,
		power TEXT,
		gas TEXT,
		condo TEXT,
		discount_pct TEXT,
		updated_at TEXT NOT NULL
	);

	-- Monthly ledger (append-only)
	CREATE TABLE IF NOT EXISTS ledger_entries (
		property TEXT NOT NULL,
		month TEXT NOT NULL,
		address TEXT,
		tenant TEXT,
		owner TEXT,
		base_price TEXT NOT NULL,
		discounted_price TEXT NOT NULL,
		discount TEXT,
		fee_surcharge TEXT NOT NULL,
		deposit_surcharge TEXT NOT NULL,
		surcharge TEXT NOT NULL,
		surcharge_detail TEXT,
		fixed_charges TEXT NOT NULL,
		final_price TEXT NOT NULL,
		commission TEXT NOT NULL,
		owner_payout TEXT NOT NULL,
		updated BOOLEAN NOT NULL,
		update_pct TEXT,
		months_to_next_update INTEGER NOT NULL,
		months_to_renewal INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(property, month)
	);

	-- Chronological reads per property (hot path)
	CREATE INDEX IF NOT EXISTS idx_ledger_property_month
		ON ledger_entries(property, month);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER STORE (ledger.Store interface)
// =============================================================================

// Entries returns the property's history in chronological order. The
// "YYYY-MM" month format sorts lexicographically, so ORDER BY is enough.
func (s *Store) Entries(ctx context.Context, property string) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT property, month, address, tenant, owner,
		       base_price, discounted_price, discount,
		       fee_surcharge, deposit_surcharge, surcharge, surcharge_detail,
		       fixed_charges, final_price, commission, owner_payout,
		       updated, update_pct, months_to_next_update, months_to_renewal
		FROM ledger_entries
		WHERE property = ?
		ORDER BY month ASC`, property)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Append adds entries atomically. A (property, month) collision rolls
// back the whole batch.
func (s *Store) Append(ctx context.Context, entries []ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries
			(property, month, address, tenant, owner,
			 base_price, discounted_price, discount,
			 fee_surcharge, deposit_surcharge, surcharge, surcharge_detail,
			 fixed_charges, final_price, commission, owner_payout,
			 updated, update_pct, months_to_next_update, months_to_renewal, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Property, e.Month.String(), e.Address, e.Tenant, e.Owner,
			e.BasePrice.String(), e.DiscountedPrice.String(), e.Discount,
			e.FeeSurcharge.String(), e.DepositSurcharge.String(), e.Surcharge.String(), e.SurchargeDetail,
			e.FixedCharges.String(), e.FinalPrice.String(), e.Commission.String(), e.OwnerPayout.String(),
			e.Updated, e.UpdatePct, e.MonthsToNextUpdate, e.MonthsToRenewal, now)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: %s %s", store.ErrDuplicateMonth, e.Property, e.Month)
			}
			return fmt.Errorf("failed to append entry: %w", err)
		}
	}
	return tx.Commit()
}

// AmendBasePrice rewrites one entry's base price only.
func (s *Store) AmendBasePrice(ctx context.Context, property string, month contract.Month, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries SET base_price = ?
		WHERE property = ? AND month = ?`,
		price.String(), property, month.String())
	if err != nil {
		return fmt.Errorf("failed to amend base price: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", store.ErrEntryNotFound, property, month)
	}
	return nil
}

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var e ledger.Entry
	var month string
	var basePrice, discounted, feeSur, depSur, sur, fixed, final, commission, payout string

	err := rows.Scan(&e.Property, &month, &e.Address, &e.Tenant, &e.Owner,
		&basePrice, &discounted, &e.Discount,
		&feeSur, &depSur, &sur, &e.SurchargeDetail,
		&fixed, &final, &commission, &payout,
		&e.Updated, &e.UpdatePct, &e.MonthsToNextUpdate, &e.MonthsToRenewal)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to scan entry: %w", err)
	}

	if e.Month, err = contract.ParseMonth(month); err != nil {
		return ledger.Entry{}, err
	}
	for _, f := range []struct {
		dst *decimal.Decimal
		raw string
	}{
		{&e.BasePrice, basePrice},
		{&e.DiscountedPrice, discounted},
		{&e.FeeSurcharge, feeSur},
		{&e.DepositSurcharge, depSur},
		{&e.Surcharge, sur},
		{&e.FixedCharges, fixed},
		{&e.FinalPrice, final},
		{&e.Commission, commission},
		{&e.OwnerPayout, payout},
	} {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return ledger.Entry{}, fmt.Errorf("corrupt decimal %q: %w", f.raw, err)
		}
	}
	return e, nil
}

// =============================================================================
// CONTRACT MASTER DATA
// =============================================================================

// SaveContract upserts one master-data row, keyed by property.
func (s *Store) SaveContract(ctx context.Context, rec contract.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts
		(property, address, tenant, owner, start_date, duration_months,
		 original_price, frequency, escalation_index, commission_pct,
		 tenant_fee, deposit, municipal, power, gas, condo, discount_pct, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(property) DO UPDATE SET
		 address=excluded.address, tenant=excluded.tenant, owner=excluded.owner,
		 start_date=excluded.start_date, duration_months=excluded.duration_months,
		 original_price=excluded.original_price, frequency=excluded.frequency,
		 escalation_index=excluded.escalation_index, commission_pct=excluded.commission_pct,
		 tenant_fee=excluded.tenant_fee, deposit=excluded.deposit,
		 municipal=excluded.municipal, power=excluded.power, gas=excluded.gas,
		 condo=excluded.condo, discount_pct=excluded.discount_pct,
		 updated_at=excluded.updated_at`,
		rec.Property, rec.Address, rec.Tenant, rec.Owner,
		rec.StartDate.UTC().Format("2006-01-02"), rec.DurationMonths,
		rec.OriginalPrice.String(), string(rec.Frequency), rec.Index, rec.CommissionPct,
		string(rec.TenantFee), string(rec.Deposit),
		rec.Charges.Municipal.String(), rec.Charges.Power.String(),
		rec.Charges.Gas.String(), rec.Charges.Condo.String(),
		rec.DiscountPct.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

// Contracts returns every master-data row, ordered by property name.
func (s *Store) Contracts(ctx context.Context) ([]contract.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT property, address, tenant, owner, start_date, duration_months,
		       original_price, frequency, escalation_index, commission_pct,
		       tenant_fee, deposit, municipal, power, gas, condo, discount_pct
		FROM contracts
		ORDER BY property ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var records []contract.Record
	for rows.Next() {
		var rec contract.Record
		var start, price, freq, fee, deposit, municipal, power, gas, condo, discount string
		err := rows.Scan(&rec.Property, &rec.Address, &rec.Tenant, &rec.Owner,
			&start, &rec.DurationMonths, &price, &freq, &rec.Index, &rec.CommissionPct,
			&fee, &deposit, &municipal, &power, &gas, &condo, &discount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}

		if rec.StartDate, err = time.Parse("2006-01-02", start); err != nil {
			return nil, fmt.Errorf("corrupt start date %q: %w", start, err)
		}
		if rec.OriginalPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("corrupt price %q: %w", price, err)
		}
		rec.Frequency = contract.Frequency(freq)
		rec.TenantFee = contract.Plan(fee)
		rec.Deposit = contract.Plan(deposit)
		rec.Charges.Municipal = contract.ParseAmount(municipal)
		rec.Charges.Power = contract.ParseAmount(power)
		rec.Charges.Gas = contract.ParseAmount(gas)
		rec.Charges.Condo = contract.ParseAmount(condo)
		if discount != "" {
			if rec.DiscountPct, err = contract.ParsePercent(discount); err != nil {
				return nil, fmt.Errorf("corrupt discount %q: %w", discount, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
