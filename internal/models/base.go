package models

import "time"

// Base carries the store-assigned identity shared by every entity.
// ID and CreatedAt are written once on insert and never updated.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (b Base) Key() uint { return b.ID }

// Backing table names.
const (
	TableDepartments      = "departments"
	TableEmployees        = "employees"
	TableProducts         = "products"
	TableRawMaterials     = "raw_materials"
	TableCustomers        = "customers"
	TableSuppliers        = "suppliers"
	TableDefects          = "defects"
	TableMaterialMappings = "material_mappings"
)

// All lists every entity model, in migration order.
func All() []any {
	return []any{
		&Department{},
		&Employee{},
		&Product{},
		&RawMaterial{},
		&Customer{},
		&Supplier{},
		&Defect{},
		&MaterialMapping{},
	}
}
