package domain

import "time"

// Product is a sellable stock item. Image holds the blob path of its picture.
type Product struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Barcode     string           `gorm:"size:64;index" json:"barcode"`
	Title       string           `gorm:"size:200;index" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	BuyPrice    int64            `json:"buy_price"`
	SellPrice   int64            `json:"sell_price"`
	Stock       int64            `json:"stock"`
	Image       string           `gorm:"size:1024" json:"image"`
	CategoryID  int64            `gorm:"index" json:"category_id"`
	Category    *CategorySummary `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// CategorySummary is the category projection joined into product responses.
type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TableName Specify table name
func (CategorySummary) TableName() string {
	return "categories"
}
