package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementKind string

const (
	MovementCredit MovementKind = "ingreso" // money in
	MovementDebit  MovementKind = "egreso"  // money out
)

func (k MovementKind) Valid() bool {
	return k == MovementCredit || k == MovementDebit
}

// Location is the optional point a movement was recorded at.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Movement is append-only: rows are never updated or deleted.
type Movement struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      string          `gorm:"index;not null;size:36"`
	Kind        MovementKind    `gorm:"column:type;size:10;not null"` // ingreso / egreso
	Amount      decimal.Decimal `gorm:"type:numeric;not null"`        // always positive
	Description string          `gorm:"size:255"`
	Timestamp   time.Time       `gorm:"index;not null"`
	LocationLat *float64
	LocationLon *float64
}

// Signed returns the amount with the sign it contributes to the balance.
func (m Movement) Signed() decimal.Decimal {
	if m.Kind == MovementDebit {
		return m.Amount.Neg()
	}
	return m.Amount
}

func (m Movement) Location() *Location {
	if m.LocationLat == nil || m.LocationLon == nil {
		return nil
	}
	return &Location{Lat: *m.LocationLat, Lon: *m.LocationLon}
}

func (m *Movement) SetLocation(loc *Location) {
	if loc == nil {
		m.LocationLat, m.LocationLon = nil, nil
		return
	}
	lat, lon := loc.Lat, loc.Lon
	m.LocationLat, m.LocationLon = &lat, &lon
}
