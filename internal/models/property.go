package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Property is a snapshot of a subject property as supplied by an import
// source. It is immutable for the duration of an evaluation; fields the
// source did not provide stay nil and evaluate as "absent".
type Property struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	Address           string      `json:"address" db:"address"`
	City              string      `json:"city" db:"city"`
	State             string      `json:"state" db:"state"`
	Zip               string      `json:"zip" db:"zip"`
	PropertyType      string      `json:"property_type" db:"property_type"`
	EstimatedValue    *float64    `json:"estimated_value" db:"estimated_value"`
	LastSalePrice     *float64    `json:"last_sale_price" db:"last_sale_price"`
	TaxAssessedValue  *float64    `json:"tax_assessed_value" db:"tax_assessed_value"`
	AnnualPropertyTax *float64    `json:"annual_property_tax" db:"annual_property_tax"`
	EquityPercent     *float64    `json:"equity_percent" db:"equity_percent"`
	DebtOwed          *float64    `json:"debt_owed" db:"debt_owed"`
	InterestRate      *float64    `json:"interest_rate" db:"interest_rate"`
	DaysOnMarket      *int        `json:"days_on_market" db:"days_on_market"`
	YearBuilt         *int        `json:"year_built" db:"year_built"`
	SquareFootage     *int        `json:"square_footage" db:"square_footage"`
	UnitCount         *int        `json:"unit_count" db:"unit_count"`
	DistressSignals   DistressMap `json:"distress_signals" db:"distress_signals"`
	RawData           RawData     `json:"raw_data" db:"raw_data"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// DistressMap holds seller-distress flags as JSON, e.g. {"foreclosure": true}.
type DistressMap map[string]bool

// RawData holds import-source-specific fields as JSON. Rules can address
// into it with dot paths like "rawData.mortgageRate".
type RawData map[string]interface{}

// Value implements driver.Valuer for DistressMap
func (d DistressMap) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(DistressMap{})
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for DistressMap
func (d *DistressMap) Scan(value interface{}) error {
	if value == nil {
		*d = DistressMap{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into DistressMap", value)
	}

	return json.Unmarshal(bytes, d)
}

// Value implements driver.Valuer for RawData
func (r RawData) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal(RawData{})
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner for RawData
func (r *RawData) Scan(value interface{}) error {
	if value == nil {
		*r = RawData{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into RawData", value)
	}

	return json.Unmarshal(bytes, r)
}

// Snapshot flattens the property into the map shape the rule engine
// evaluates against. Nil fields are omitted so that rules addressing them
// see an absent value rather than a zero.
func (p *Property) Snapshot() map[string]interface{} {
	snap := make(map[string]interface{})

	if p.PropertyType != "" {
		snap["propertyType"] = p.PropertyType
	}
	putFloat(snap, "estimatedValue", p.EstimatedValue)
	putFloat(snap, "lastSalePrice", p.LastSalePrice)
	putFloat(snap, "taxAssessedValue", p.TaxAssessedValue)
	putFloat(snap, "annualPropertyTax", p.AnnualPropertyTax)
	putFloat(snap, "equityPercent", p.EquityPercent)
	putFloat(snap, "debtOwed", p.DebtOwed)
	putFloat(snap, "interestRate", p.InterestRate)
	putInt(snap, "daysOnMarket", p.DaysOnMarket)
	putInt(snap, "yearBuilt", p.YearBuilt)
	putInt(snap, "squareFootage", p.SquareFootage)
	putInt(snap, "unitCount", p.UnitCount)

	if len(p.DistressSignals) > 0 {
		signals := make(map[string]interface{}, len(p.DistressSignals))
		for name, set := range p.DistressSignals {
			signals[name] = set
		}
		snap["distressSignals"] = signals
	}

	if len(p.RawData) > 0 {
		snap["rawData"] = map[string]interface{}(p.RawData)
	}

	return snap
}

func putFloat(snap map[string]interface{}, key string, v *float64) {
	if v != nil {
		snap[key] = *v
	}
}

func putInt(snap map[string]interface{}, key string, v *int) {
	if v != nil {
		snap[key] = *v
	}
}
