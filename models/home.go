package models

import "time"

// Home is the root entity a user tracks maintenance for.
type Home struct {
	ID        string    `json:"id" validate:"required,uuid4"`
	UserID    string    `json:"userId" validate:"required,uuid4"`
	Name      string    `json:"name" validate:"required,min=1,max=255"`
	YearBuilt int       `json:"yearBuilt,omitempty" validate:"omitempty,min=1700,max=2100"`
	HomeType  string    `json:"homeType,omitempty"` // e.g. "house", "apartment", "condo"
	HasYard   bool      `json:"hasYard,omitempty"`
	ClimZone  string    `json:"climateZone,omitempty"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

// Room belongs to a home. Type is free text as entered by the user
// ("Primary Bedroom", "Guest Room"); rules match against its canonical
// category, not the literal string.
type Room struct {
	ID        string    `json:"id" validate:"required,uuid4"`
	HomeID    string    `json:"homeId" validate:"required,uuid4"`
	Name      string    `json:"name" validate:"required,min=1,max=255"`
	Type      string    `json:"type,omitempty"`
	Floor     int       `json:"floor,omitempty"`
	HasWindow bool      `json:"hasWindow,omitempty"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}

// Trackable is a maintainable item (appliance, system) inside a home,
// optionally assigned to a room.
type Trackable struct {
	ID           string     `json:"id" validate:"required,uuid4"`
	HomeID       string     `json:"homeId" validate:"required,uuid4"`
	RoomID       *string    `json:"roomId,omitempty" validate:"omitempty,uuid4"`
	Name         string     `json:"name" validate:"required,min=1,max=255"`
	Type         string     `json:"type,omitempty"` // e.g. "hvac", "water_heater", "dishwasher"
	Category     string     `json:"category,omitempty"`
	Brand        string     `json:"brand,omitempty"`
	Model        string     `json:"model,omitempty"`
	SerialNumber string     `json:"serialNumber,omitempty"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" validate:"required"`
	UpdatedAt    time.Time  `json:"updatedAt" validate:"required"`
}

// CatalogEntry describes a known trackable type (brand/model/type) that
// templates can be linked to. Enrichment runs against catalog entries,
// and once an entry has at least one linked template it is never
// enriched again.
type CatalogEntry struct {
	ID        string    `json:"id" validate:"required,uuid4"`
	Brand     string    `json:"brand,omitempty"`
	Model     string    `json:"model,omitempty"`
	Type      string    `json:"type" validate:"required,min=1"`
	Category  string    `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
}
