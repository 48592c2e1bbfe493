package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending  = "Pending"
	OrderStatusApproved = "Approved"

	// UnitBox is the coarse pricing unit; UnitPiece is converted through
	// the item's conversion factor (pieces per box).
	UnitBox   = "BOX"
	UnitPiece = "PCS"

	PaymentModeCash = "Cash"
	PaymentModeUPI  = "UPI"
	PaymentModeBank = "Bank"
)

type Retailer struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Shop        string    `gorm:"type:varchar(128);not null" json:"shop"`
	Owner       string    `gorm:"type:varchar(128)" json:"owner"`
	Phone       string    `gorm:"type:varchar(32)" json:"phone"`
	CreditLimit string    `gorm:"type:varchar(32);not null;default:'0.00'" json:"credit_limit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Item struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(128);not null" json:"name"`
	// HSN tax classification code printed on tax invoices.
	HSNCode string `gorm:"type:varchar(16)" json:"hsn_code"`
	// ConversionFactor is the number of fine units (PCS) per coarse unit (BOX).
	ConversionFactor string `gorm:"type:varchar(32);not null" json:"conversion_factor"`
	Price            string `gorm:"type:varchar(32);not null" json:"price"`
	GSTRatePercent   string `gorm:"type:varchar(32);not null" json:"gst_rate_percent"`
	// Stock is held in coarse-unit terms and may go negative depending on
	// the billing stock policy.
	Stock     string    `gorm:"type:varchar(32);not null;default:'0'" json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RetailerID int64      `gorm:"index;not null" json:"retailer_id"`
	OrderDate  *time.Time `gorm:"not null" json:"order_date"`
	Status     string     `gorm:"type:varchar(16);not null;default:'Pending'" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Retailer   *Retailer   `gorm:"foreignKey:RetailerID" json:"retailer,omitempty"`
	OrderLines []OrderLine `gorm:"foreignKey:OrderID" json:"order_lines,omitempty"`
}

type OrderLine struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID  int64  `gorm:"index;not null" json:"order_id"`
	ItemID   int64  `gorm:"not null" json:"item_id"`
	Quantity string `gorm:"type:varchar(32);not null" json:"quantity"`
	Unit     string `gorm:"type:varchar(8);not null" json:"unit"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

type Invoice struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	InvoiceNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"invoice_number"`
	// One invoice per approved order.
	OrderID     int64      `gorm:"uniqueIndex;not null" json:"order_id"`
	Taxable     string     `gorm:"type:varchar(32);not null" json:"taxable"`
	GST         string     `gorm:"type:varchar(32);not null" json:"gst"`
	Total       string     `gorm:"type:varchar(32);not null" json:"total"`
	InvoiceDate *time.Time `gorm:"not null" json:"invoice_date"`
	CreatedAt   time.Time  `json:"created_at"`

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

type Payment struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RetailerID int64 `gorm:"index;not null" json:"retailer_id"`
	// Optional allocation against a specific invoice. Outstanding stays a
	// retailer-level net figure either way.
	InvoiceID *int64     `json:"invoice_id,omitempty"`
	Amount    string     `gorm:"type:varchar(32);not null" json:"amount"`
	Mode      string     `gorm:"type:varchar(16);not null" json:"mode"`
	PayDate   *time.Time `gorm:"not null" json:"pay_date"`
	CreatedAt time.Time  `json:"created_at"`

	Retailer *Retailer `gorm:"foreignKey:RetailerID" json:"retailer,omitempty"`
	Invoice  *Invoice  `gorm:"foreignKey:InvoiceID" json:"invoice,omitempty"`
}

func MigrateBillingDB(db *gorm.DB) error {
	db.AutoMigrate(&Retailer{})
	db.AutoMigrate(&Item{})
	db.AutoMigrate(&Order{})
	db.AutoMigrate(&OrderLine{})
	db.AutoMigrate(&Invoice{})
	db.AutoMigrate(&Payment{})
	return nil
}
