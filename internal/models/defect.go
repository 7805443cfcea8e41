package models

const (
	DefectOpen       = "Open"
	DefectInProgress = "In Progress"
	DefectResolved   = "Resolved"
	DefectClosed     = "Closed"
)

// DefectCategories are the categories offered when reporting a defect.
var DefectCategories = []string{
	"Manufacturing Defect",
	"Design Defect",
	"Material Defect",
	"Electrical Fault",
	"Performance Issue",
	"Other",
}

const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

type Defect struct {
	Base
	Product     string `gorm:"size:150;not null" json:"product"` // product name
	Category    string `gorm:"size:50;not null" json:"category"`
	Description string `gorm:"size:500;not null" json:"description"`
	ReportedBy  string `gorm:"size:100;not null" json:"reported_by"`
	ReportDate  string `gorm:"size:10;not null" json:"report_date"`
	Status      string `gorm:"size:20;not null" json:"status"`
	Severity    string `gorm:"size:20;not null" json:"severity"`
}

func (Defect) TableName() string { return TableDefects }
