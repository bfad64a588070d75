// Package models holds the entities mirrored from the source-of-truth
// store. Primary keys are the remote ids — the cache never originates
// rows, so nothing here auto-increments.
package models

import "time"

// Product is the catalog root. Code is unique across the chain.
type Product struct {
	ID         uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name       string `gorm:"size:255;not null;index" json:"name"`
	Code       string `gorm:"size:100;not null;uniqueIndex" json:"code"`
	CategoryID uint   `gorm:"index" json:"category_id"`
	BrandID    uint   `json:"brand_id"`
	UnitID     uint   `json:"unit_id"`
	TypeID     uint   `json:"type_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductVariation belongs to exactly one Product. Barcode is what the
// scanner reads at the till, so it carries the cache's hottest index.
type ProductVariation struct {
	ID        uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Barcode   string `gorm:"size:100;uniqueIndex" json:"barcode"`
	Color     string `gorm:"size:50" json:"color"`
	Size      string `gorm:"size:50" json:"size"`
	Capacity  string `gorm:"size:50" json:"capacity"`
	StatusID  uint   `json:"status_id"`

	UpdatedAt time.Time `json:"updated_at"`
}

// StockLot is one priced batch of a variation. Quantity is non-negative in
// steady state but the cache tolerates transient negatives arriving
// mid-sync; reference integrity is advisory here, not enforced live.
type StockLot struct {
	ID          uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	VariationID uint   `gorm:"not null;index" json:"variation_id"`
	Barcode     string `gorm:"size:100;index" json:"barcode"`
	BatchID     uint   `json:"batch_id"`

	ManufactureDate *time.Time `json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`

	// No decimal(p,s) type tags: the sqlite migrator cannot re-parse
	// comma-carrying column types when AutoMigrate runs over an existing
	// cache file.
	CostPrice      float64 `json:"cost_price"`
	RetailPrice    float64 `json:"retail_price"`
	WholesalePrice float64 `json:"wholesale_price"`
	MinSalePrice   float64 `json:"min_sale_price"`
	Quantity       int     `json:"quantity"`

	UpdatedAt time.Time `json:"updated_at"`
}

// SyncState persists the incremental watermark per entity so a restart
// resumes where the last successful sync left off. Cache-local only.
type SyncState struct {
	Entity    string    `gorm:"primaryKey;size:64" json:"entity"`
	Watermark time.Time `json:"watermark"`
}
