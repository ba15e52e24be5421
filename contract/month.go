package contract

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - Calendar month, the engine's unit of time
// =============================================================================

// Month identifies one calendar month. All ledger arithmetic is
// month-granular: contracts start on a month, entries cover a month,
// update cycles are counted in months.
type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// CurrentMonth returns the month containing the current wall-clock time.
func CurrentMonth() Month {
	return MonthOf(time.Now())
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q is not a YYYY-MM month", ErrInvalidDate, s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Time returns the first day of the month at midnight UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Add returns the month n months later (or earlier for negative n).
func (m Month) Add(n int) Month {
	return MonthOf(m.Time().AddDate(0, n, 0))
}

// Next returns the immediately following month.
func (m Month) Next() Month { return m.Add(1) }

func (m Month) Before(o Month) bool { return m.Time().Before(o.Time()) }
func (m Month) After(o Month) bool  { return m.Time().After(o.Time()) }
func (m Month) Equal(o Month) bool  { return m.Year == o.Year && m.Month == o.Month }

// Sub returns the number of whole months from o to m. Negative when
// m is earlier than o.
func (m Month) Sub(o Month) int {
	return (m.Year-o.Year)*12 + int(m.Month) - int(o.Month)
}

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }
