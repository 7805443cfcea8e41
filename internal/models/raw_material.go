package models

type RawMaterial struct {
	Base
	Name          string `gorm:"size:150;not null" json:"name"`
	Code          string `gorm:"size:50;not null" json:"code"`
	Category      string `gorm:"size:100;not null" json:"category"`
	Supplier      string `gorm:"size:150;not null" json:"supplier"` // supplier name
	StockQuantity int    `gorm:"not null;default:0" json:"stock_quantity"`
	UnitCost      string `gorm:"size:30;not null" json:"unit_cost"`
	Description   string `gorm:"size:500;not null" json:"description"`
}

func (RawMaterial) TableName() string { return TableRawMaterials }
