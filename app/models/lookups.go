package models

import "time"

// Flat id→attributes lookup tables mirrored for offline search. These are
// tiny and change rarely, so the sync engine always replaces them whole.

type Batch struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:100" json:"name"`
}

type Brand struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:100" json:"name"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:100" json:"name"`
}

type Unit struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:50" json:"name"`
}

type Status struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:50" json:"name"`
}

type PaymentType struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:50" json:"name"`
}

type Company struct {
	ID      uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name    string `gorm:"size:255" json:"name"`
	Address string `gorm:"size:255" json:"address"`
	Contact string `gorm:"size:50" json:"contact"`
}

// Customer and Supplier carry contact indices so the till can look a party
// up by phone number while offline.

type Customer struct {
	ID      uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name    string `gorm:"size:255;index" json:"name"`
	Contact string `gorm:"size:50;index" json:"contact"`
	Address string `gorm:"size:255" json:"address"`

	UpdatedAt time.Time `json:"updated_at"`
}

type Supplier struct {
	ID      uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name    string `gorm:"size:255;index" json:"name"`
	Contact string `gorm:"size:50;index" json:"contact"`
	Address string `gorm:"size:255" json:"address"`

	UpdatedAt time.Time `json:"updated_at"`
}

// User is the cashier record, mirrored for display and audit only —
// authentication stays with the remote store.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name     string `gorm:"size:255" json:"name"`
	Username string `gorm:"size:100" json:"username"`
}

// Counter is a physical till position in the store.
type Counter struct {
	ID   uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:100" json:"name"`
}
