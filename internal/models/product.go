package models

type Product struct {
	Base
	Name        string `gorm:"size:150;not null" json:"name"`
	SKU         string `gorm:"column:sku;size:50;not null" json:"sku"`
	Category    string `gorm:"size:100;not null" json:"category"`
	Price       string `gorm:"size:30;not null" json:"price"` // display string, "$249.99"
	Stock       int    `gorm:"not null;default:0" json:"stock"`
	Description string `gorm:"size:500;not null" json:"description"`
}

func (Product) TableName() string { return TableProducts }
