package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EV is one electric-vehicle model in the catalog.
type EV struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Manufacturer string    `json:"manufacturer"`
	Year         int       `json:"year"`
	BatterySize  float64   `json:"battery_size"` // kWh
	RangeWLTP    float64   `json:"range_wltp"`   // km
	Cost         float64   `json:"cost"`
	Power        float64   `json:"power"` // kW
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EVInput carries every editable attribute of an EV. It is used for both
// create and the full-replace update, so every field is required.
type EVInput struct {
	Name         string  `form:"Name" validate:"required,max=200"`
	Manufacturer string  `form:"Manufacturer" validate:"required,max=200"`
	Year         int     `form:"Year" validate:"gte=1886,lte=2100"`
	BatterySize  float64 `form:"Battery_size" validate:"gt=0"`
	RangeWLTP    float64 `form:"Range_WLTP" validate:"gt=0"`
	Cost         float64 `form:"Cost" validate:"gte=0"`
	Power        float64 `form:"Power" validate:"gt=0"`
}

// Normalize trims surrounding whitespace from the text fields.
func (in *EVInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Manufacturer = strings.TrimSpace(in.Manufacturer)
}

// Apply copies the input onto ev, replacing every attribute.
func (in EVInput) Apply(ev *EV) {
	ev.Name = in.Name
	ev.Manufacturer = in.Manufacturer
	ev.Year = in.Year
	ev.BatterySize = in.BatterySize
	ev.RangeWLTP = in.RangeWLTP
	ev.Cost = in.Cost
	ev.Power = in.Power
}

// InputFrom returns the editable attributes of ev, used to prefill the edit form.
func InputFrom(ev EV) EVInput {
	return EVInput{
		Name:         ev.Name,
		Manufacturer: ev.Manufacturer,
		Year:         ev.Year,
		BatterySize:  ev.BatterySize,
		RangeWLTP:    ev.RangeWLTP,
		Cost:         ev.Cost,
		Power:        ev.Power,
	}
}

// AttributeKind says how an attribute's values are parsed and compared.
type AttributeKind int

const (
	KindText AttributeKind = iota
	KindInteger
	KindDecimal
)

// Attribute is a queryable EV attribute. Name is the form/query name, Column
// the backing column.
type Attribute struct {
	Name   string
	Column string
	Kind   AttributeKind
}

// Numeric reports whether the attribute supports range queries.
func (a Attribute) Numeric() bool {
	return a.Kind != KindText
}

// ParseValue converts raw into a value of the attribute's kind.
func (a Attribute) ParseValue(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch a.Kind {
	case KindInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number", a.Name)
		}
		return n, nil
	case KindDecimal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", a.Name)
		}
		return f, nil
	default:
		return raw, nil
	}
}

// Bound converts an integer range bound to the attribute's column type.
func (a Attribute) Bound(n int) any {
	if a.Kind == KindDecimal {
		return float64(n)
	}
	return n
}

// Queryable attributes in display order.
var attributes = []Attribute{
	{Name: "Name", Column: "name", Kind: KindText},
	{Name: "Manufacturer", Column: "manufacturer", Kind: KindText},
	{Name: "Year", Column: "year", Kind: KindInteger},
	{Name: "Battery_size", Column: "battery_size", Kind: KindDecimal},
	{Name: "Range_WLTP", Column: "range_wltp", Kind: KindDecimal},
	{Name: "Cost", Column: "cost", Kind: KindDecimal},
	{Name: "Power", Column: "power", Kind: KindDecimal},
}

// LookupAttribute finds a queryable attribute by its exact name.
func LookupAttribute(name string) (Attribute, bool) {
	for _, a := range attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Attributes returns the queryable attributes in display order.
func Attributes() []Attribute {
	out := make([]Attribute, len(attributes))
	copy(out, attributes)
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
