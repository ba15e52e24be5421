/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

Field names are the Spanish master-data column names, so the JSON wire
format matches the spreadsheets the agency already works with.

VALIDATION:
  Validation is done in handlers and in contract.Record.Validate().
  DTOs are pure data carriers.
*/
package api

import (
	"strings"
	"time"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/ledger"
	"github.com/shopspring/decimal"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ContractDTO represents one master-data row.
type ContractDTO struct {
	Property       string `json:"nombre_inmueble"`
	Address        string `json:"dir_inmueble,omitempty"`
	Tenant         string `json:"inquilino"`
	Owner          string `json:"propietario"`
	StartDate      string `json:"fecha_inicio_contrato"` // YYYY-MM-DD
	DurationMonths int    `json:"duracion_meses"`
	OriginalPrice  string `json:"precio_original"`
	Frequency      string `json:"actualizacion"`
	Index          string `json:"indice"`
	CommissionPct  string `json:"comision_inmo"`
	TenantFee      string `json:"comision,omitempty"`
	Deposit        string `json:"deposito,omitempty"`
	Municipal      string `json:"municipalidad,omitempty"`
	Power          string `json:"luz,omitempty"`
	Gas            string `json:"gas,omitempty"`
	Condo          string `json:"expensas,omitempty"`
	DiscountPct    string `json:"descuento,omitempty"`
}

// Record converts the DTO into the domain record, applying the cell
// parsers used for spreadsheet input.
func (d ContractDTO) Record() (contract.Record, error) {
	start, err := time.Parse("2006-01-02", d.StartDate)
	if err != nil {
		return contract.Record{}, err
	}

	// The sheet's discount cell is a percent string ("10%", "7,5 %").
	// A malformed value is rejected, never silently zeroed.
	discount := decimal.Zero
	if strings.TrimSpace(d.DiscountPct) != "" {
		if discount, err = contract.ParsePercent(d.DiscountPct); err != nil {
			return contract.Record{}, err
		}
	}
	return contract.Record{
		Property:       d.Property,
		Address:        d.Address,
		Tenant:         d.Tenant,
		Owner:          d.Owner,
		StartDate:      start,
		DurationMonths: d.DurationMonths,
		OriginalPrice:  contract.ParseAmount(d.OriginalPrice),
		Frequency:      contract.Frequency(d.Frequency),
		Index:          d.Index,
		CommissionPct:  d.CommissionPct,
		TenantFee:      contract.ParsePlan(d.TenantFee),
		Deposit:        contract.ParsePlan(d.Deposit),
		Charges: contract.Charges{
			Municipal: contract.ParseAmount(d.Municipal),
			Power:     contract.ParseAmount(d.Power),
			Gas:       contract.ParseAmount(d.Gas),
			Condo:     contract.ParseAmount(d.Condo),
		},
		DiscountPct: discount,
	}, nil
}

func toContractDTO(r contract.Record) ContractDTO {
	return ContractDTO{
		Property:       r.Property,
		Address:        r.Address,
		Tenant:         r.Tenant,
		Owner:          r.Owner,
		StartDate:      r.StartDate.Format("2006-01-02"),
		DurationMonths: r.DurationMonths,
		OriginalPrice:  r.OriginalPrice.String(),
		Frequency:      string(r.Frequency),
		Index:          r.Index,
		CommissionPct:  r.CommissionPct,
		TenantFee:      string(r.TenantFee),
		Deposit:        string(r.Deposit),
		Municipal:      r.Charges.Municipal.String(),
		Power:          r.Charges.Power.String(),
		Gas:            r.Charges.Gas.String(),
		Condo:          r.Charges.Condo.String(),
		DiscountPct:    r.DiscountPct.String(),
	}
}

// EntryDTO is one ledger row plus the month it covers.
type EntryDTO struct {
	Month string `json:"mes"`
	ledger.Entry
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{Month: e.Month.String(), Entry: e}
}

func toEntryDTOs(entries []ledger.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

// RunRequest triggers a ledger extension up to a target month.
type RunRequest struct {
	Until string `json:"hasta"` // YYYY-MM, defaults to the current month
}

// AmendRequest records a manual base-price correction.
type AmendRequest struct {
	BasePrice string `json:"precio_base"`
}

// MonthResponse is the monthly payment computation for one reference
// month across all contracts.
type MonthResponse struct {
	Month    string           `json:"mes"`
	Entries  []EntryDTO       `json:"registros"`
	Warnings []ledger.Warning `json:"avisos"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
