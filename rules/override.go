/*
Package rules applies externally derived monetary overrides to a
property-month before its price is composed.

The override source (a markdown-to-JSON derivation pipeline) lives
outside this engine; by the time a Mapping reaches this package every
formula has been resolved to a concrete number. The engine never
evaluates user-supplied code: the only computation this package can
perform is the closed formula node set in formula.go.

PRIORITY:
  tenant-specific mapping > global mapping > computed value,
  decided field by field, never wholesale.
*/
package rules

import (
	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/pricing"
	"github.com/shopspring/decimal"
)

// Field names one overridable monetary input. The set is closed:
// overrides can touch the discount, the fixed charges and the
// installment surcharges, nothing else.
type Field string

const (
	FieldDiscountPct      Field = "descuento"
	FieldMunicipal        Field = "municipalidad"
	FieldPower            Field = "luz"
	FieldGas              Field = "gas"
	FieldCondo            Field = "expensas"
	FieldFeeSurcharge     Field = "cuotas_comision"
	FieldDepositSurcharge Field = "cuotas_deposito"
)

// KnownField reports whether f belongs to the closed override set.
func KnownField(f Field) bool {
	switch f {
	case FieldDiscountPct, FieldMunicipal, FieldPower, FieldGas, FieldCondo,
		FieldFeeSurcharge, FieldDepositSurcharge:
		return true
	}
	return false
}

// Mapping is a resolved field -> value override set. Absent fields fall
// through to the computed value.
type Mapping map[Field]decimal.Decimal

// Merge combines a tenant mapping with the global one. Tenant entries
// dominate per field; unknown fields are dropped so a typo in the rules
// source cannot leak into composition.
func Merge(tenant, global Mapping) Mapping {
	out := make(Mapping, len(tenant)+len(global))
	for f, v := range global {
		if KnownField(f) {
			out[f] = v
		}
	}
	for f, v := range tenant {
		if KnownField(f) {
			out[f] = v
		}
	}
	return out
}

// Apply rewrites the composition inputs with the merged overrides.
// in is copied; the caller's value is untouched.
func Apply(in pricing.Inputs, tenant, global Mapping) pricing.Inputs {
	m := Merge(tenant, global)
	if len(m) == 0 {
		return in
	}

	if v, ok := m[FieldDiscountPct]; ok {
		in.DiscountPct = v
	}
	if v, ok := m[FieldMunicipal]; ok {
		in.Charges.Municipal = v
	}
	if v, ok := m[FieldPower]; ok {
		in.Charges.Power = v
	}
	if v, ok := m[FieldGas]; ok {
		in.Charges.Gas = v
	}
	if v, ok := m[FieldCondo]; ok {
		in.Charges.Condo = v
	}
	if v, ok := m[FieldFeeSurcharge]; ok {
		v := v
		in.FeeSurchargeOverride = &v
	}
	if v, ok := m[FieldDepositSurcharge]; ok {
		v := v
		in.DepositSurchargeOverride = &v
	}
	return in
}

// Source supplies the override mappings for a property-month. The zero
// implementation (NoOverrides) returns nothing.
type Source interface {
	Overrides(property, tenant string, month contract.Month) (tenantMap, globalMap Mapping)
}

// NoOverrides is a Source with no rules derived.
type NoOverrides struct{}

func (NoOverrides) Overrides(string, string, contract.Month) (Mapping, Mapping) {
	return nil, nil
}

// StaticSource serves fixed mappings, keyed by tenant. Used by tests
// and by callers that load a pre-resolved rules file.
type StaticSource struct {
	Global   Mapping
	ByTenant map[string]Mapping
}

func (s *StaticSource) Overrides(_, tenant string, _ contract.Month) (Mapping, Mapping) {
	return s.ByTenant[tenant], s.Global
}
