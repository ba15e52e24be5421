package contract_test

import (
	"errors"
	"testing"
	"time"

	"github.com/darioabadie/inmo/contract"
	"github.com/shopspring/decimal"
)

func TestParsePercent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10%", "10"},
		{"10 %", "10"},
		{"7.5%", "7.5"},
		{"7,5%", "7.5"},
		{" 12,25 % ", "12.25"},
		{"5", "5"},
	}
	for _, tt := range tests {
		got, err := contract.ParsePercent(tt.in)
		if err != nil {
			t.Errorf("ParsePercent(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParsePercent(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "  ", "IPC", "diez%"} {
		if _, err := contract.ParsePercent(in); !errors.Is(err, contract.ErrInvalidNumber) {
			t.Errorf("ParsePercent(%q) err = %v, want ErrInvalidNumber", in, err)
		}
	}
}

func TestParsePlan(t *testing.T) {
	if got := contract.ParsePlan("2 cuotas"); got != contract.PlanTwoInstallments {
		t.Errorf("got %q", got)
	}
	if got := contract.ParsePlan("3 CUOTAS"); got != contract.PlanThreeInstallments {
		t.Errorf("got %q", got)
	}
	for _, in := range []string{"", "Pagado", "contado"} {
		if got := contract.ParsePlan(in); got != contract.PlanPaidUpfront {
			t.Errorf("ParsePlan(%q) = %q, want paid upfront", in, got)
		}
	}
}

func TestPlanInTerm(t *testing.T) {
	tests := []struct {
		plan  contract.Plan
		month int
		want  bool
	}{
		{contract.PlanPaidUpfront, 1, false},
		{contract.PlanTwoInstallments, 1, true},
		{contract.PlanTwoInstallments, 2, true},
		{contract.PlanTwoInstallments, 3, false},
		{contract.PlanThreeInstallments, 3, true},
		{contract.PlanThreeInstallments, 4, false},
	}
	for _, tt := range tests {
		if got := tt.plan.InTerm(tt.month); got != tt.want {
			t.Errorf("%q month %d: InTerm = %v, want %v", tt.plan, tt.month, got, tt.want)
		}
	}
}

func TestKindOfIndex(t *testing.T) {
	tests := []struct {
		in   string
		want contract.IndexKind
	}{
		{"IPC", contract.IndexInflation},
		{"ipc ", contract.IndexInflation},
		{"ICL", contract.IndexLaborCost},
		{"10%", contract.IndexFixed},
		{"7,5%", contract.IndexFixed},
	}
	for _, tt := range tests {
		if got := contract.KindOfIndex(tt.in); got != tt.want {
			t.Errorf("KindOfIndex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	valid := record(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 24, contract.FreqQuarterly)
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*contract.Record)
		want   error
	}{
		{"blank tenant", func(r *contract.Record) { r.Tenant = "" }, contract.ErrMissingField},
		{"blank index", func(r *contract.Record) { r.Index = "" }, contract.ErrMissingField},
		{"zero start date", func(r *contract.Record) { r.StartDate = time.Time{} }, contract.ErrInvalidDate},
		{"zero duration", func(r *contract.Record) { r.DurationMonths = 0 }, contract.ErrInvalidNumber},
		{"zero price", func(r *contract.Record) { r.OriginalPrice = decimal.Zero }, contract.ErrInvalidNumber},
		{"garbage fixed index", func(r *contract.Record) { r.Index = "diez por ciento" }, contract.ErrInvalidNumber},
		{"garbage commission", func(r *contract.Record) { r.CommissionPct = "cinco" }, contract.ErrInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			err := rec.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			var fe *contract.FieldError
			if !errors.As(err, &fe) {
				t.Errorf("err should carry the field name, got %T", err)
			}
		})
	}
}
