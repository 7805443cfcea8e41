package models

// MaterialMapping links a product to a raw material it consumes. Cost is
// computed from the static price table at submit time and stored as-is.
type MaterialMapping struct {
	Base
	Product  string  `gorm:"size:150;not null;index" json:"product"`
	Material string  `gorm:"size:150;not null" json:"material"`
	Quantity float64 `gorm:"not null;default:0" json:"quantity"`
	Unit     string  `gorm:"size:20;not null" json:"unit"`
	Cost     string  `gorm:"size:30;not null" json:"cost"`
}

func (MaterialMapping) TableName() string { return TableMaterialMappings }
