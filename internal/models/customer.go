package models

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

type Customer struct {
	Base
	Name       string `gorm:"size:150;not null" json:"name"`
	Contact    string `gorm:"size:100;not null" json:"contact"`
	Email      string `gorm:"size:150;not null" json:"email"`
	Phone      string `gorm:"size:50;not null" json:"phone"`
	Address    string `gorm:"size:300;not null" json:"address"`
	OrderCount int    `gorm:"not null;default:0" json:"order_count"`
	Status     string `gorm:"size:20;not null" json:"status"` // Active | Inactive
}

func (Customer) TableName() string { return TableCustomers }
