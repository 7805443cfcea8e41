package models

type Department struct {
	Base
	Name          string `gorm:"size:100;not null" json:"name"`
	Location      string `gorm:"size:200;not null" json:"location"`
	Manager       string `gorm:"size:100;not null" json:"manager"`
	EmployeeCount int    `gorm:"not null;default:0" json:"employee_count"` // informational, not derived
}

func (Department) TableName() string { return TableDepartments }
