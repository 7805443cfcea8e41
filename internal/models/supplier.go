package models

type Supplier struct {
	Base
	Name      string `gorm:"size:150;not null" json:"name"`
	Contact   string `gorm:"size:100;not null" json:"contact"`
	Email     string `gorm:"size:150;not null" json:"email"`
	Phone     string `gorm:"size:50;not null" json:"phone"`
	Address   string `gorm:"size:300;not null" json:"address"`
	Materials string `gorm:"size:500;not null" json:"materials"` // free text
	Status    string `gorm:"size:20;not null" json:"status"`     // Active | Inactive
}

func (Supplier) TableName() string { return TableSuppliers }
