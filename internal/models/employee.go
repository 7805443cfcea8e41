package models

type Employee struct {
	Base
	Name       string `gorm:"size:100;not null" json:"name"`
	Position   string `gorm:"size:100;not null" json:"position"`
	Department string `gorm:"size:100;not null;index" json:"department"` // department name, not an id
	Email      string `gorm:"size:150;not null" json:"email"`
	Phone      string `gorm:"size:50;not null" json:"phone"`
	JoinDate   string `gorm:"size:10;not null" json:"join_date"` // YYYY-MM-DD
}

func (Employee) TableName() string { return TableEmployees }
