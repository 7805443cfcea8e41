// Package catalog defines the manufacturing entities and wires each one to
// its table, REST routes and screen.
package catalog

import (
	"time"

	"factory-admin/internal/costing"
	"factory-admin/internal/entity"
	"factory-admin/internal/models"
)

var statusOptions = []string{models.StatusActive, models.StatusInactive}

func fixed(v string) func() string { return func() string { return v } }

func today() string { return time.Now().Format("2006-01-02") }

func Departments() *entity.Definition[models.Department] {
	return &entity.Definition[models.Department]{
		Meta: entity.Meta{
			Name:     "Department",
			Plural:   "Departments",
			Slug:     "departments",
			Table:    models.TableDepartments,
			Subtitle: "Manage your company departments",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "name", Label: "Department Name"},
				{Key: "location", Label: "Location"},
				{Key: "manager", Label: "Manager"},
				{Key: "employeeCount", Label: "Employees"},
			},
			Fields: []entity.Field{
				{Key: "name", Label: "Name", Kind: entity.KindText, Required: true},
				{Key: "location", Label: "Location", Kind: entity.KindText, Required: true},
				{Key: "manager", Label: "Manager", Kind: entity.KindText, Required: true},
				{Key: "employeeCount", Label: "Employees", Kind: entity.KindInt, Default: fixed("0")},
			},
		},
		Subject: func(d models.Department) string { return d.Name },
	}
}

func Employees() *entity.Definition[models.Employee] {
	return &entity.Definition[models.Employee]{
		Meta: entity.Meta{
			Name:     "Employee",
			Plural:   "Employees",
			Slug:     "employees",
			Table:    models.TableEmployees,
			Subtitle: "Manage your company employees",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "name", Label: "Name"},
				{Key: "position", Label: "Position"},
				{Key: "department", Label: "Department"},
				{Key: "email", Label: "Email"},
				{Key: "phone", Label: "Phone"},
				{Key: "joinDate", Label: "Join Date"},
			},
			Fields: []entity.Field{
				{Key: "name", Label: "Name", Kind: entity.KindText, Required: true},
				{Key: "position", Label: "Position", Kind: entity.KindText, Required: true},
				{Key: "department", Label: "Department", Kind: entity.KindText, Required: true},
				{Key: "email", Label: "Email", Kind: entity.KindEmail, Required: true},
				{Key: "phone", Label: "Phone", Kind: entity.KindText},
				{Key: "joinDate", Label: "Join Date", Kind: entity.KindDate, Default: today},
			},
		},
		Subject: func(e models.Employee) string { return e.Name },
	}
}

func Products() *entity.Definition[models.Product] {
	return &entity.Definition[models.Product]{
		Meta: entity.Meta{
			Name:     "Product",
			Plural:   "Products",
			Slug:     "products",
			Table:    models.TableProducts,
			Subtitle: "Manage your company products",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "name", Label: "Product Name"},
				{Key: "sku", Label: "SKU"},
				{Key: "category", Label: "Category"},
				{Key: "price", Label: "Price"},
				{Key: "stock", Label: "Stock"},
			},
			Fields: []entity.Field{
				{Key: "name", Label: "Name", Kind: entity.KindText, Required: true},
				{Key: "sku", Label: "SKU", Kind: entity.KindText, Required: true},
				{Key: "category", Label: "Category", Kind: entity.KindText, Required: true},
				{Key: "price", Label: "Price", Kind: entity.KindText, Required: true},
				{Key: "stock", Label: "Stock", Kind: entity.KindInt, Default: fixed("0")},
				{Key: "description", Label: "Description", Kind: entity.KindTextarea},
			},
		},
		Subject: func(p models.Product) string { return p.Name },
		Prepare: func(p *models.Product) { p.Price = entity.Currency(p.Price) },
	}
}

func RawMaterials() *entity.Definition[models.RawMaterial] {
	return &entity.Definition[models.RawMaterial]{
		Meta: entity.Meta{
			Name:     "Raw Material",
			Plural:   "Raw Materials",
			Slug:     "raw-materials",
			Table:    models.TableRawMaterials,
			Subtitle: "Manage your raw materials inventory",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "name", Label: "Material Name"},
				{Key: "code", Label: "Code"},
				{Key: "category", Label: "Category"},
				{Key: "supplier", Label: "Supplier"},
				{Key: "stockQuantity", Label: "Stock Qty"},
				{Key: "unitCost", Label: "Unit Cost"},
			},
			Fields: []entity.Field{
				{Key: "name", Label: "Name", Kind: entity.KindText, Required: true},
				{Key: "code", Label: "Code", Kind: entity.KindText, Required: true},
				{Key: "category", Label: "Category", Kind: entity.KindText, Required: true},
				{Key: "supplier", Label: "Supplier", Kind: entity.KindText, Required: true},
				{Key: "stockQuantity", Label: "Stock Quantity", Kind: entity.KindInt, Default: fixed("0")},
				{Key: "unitCost", Label: "Unit Cost", Kind: entity.KindText, Required: true},
				{Key: "description", Label: "Description", Kind: entity.KindTextarea},
			},
		},
		Subject: func(m models.RawMaterial) string { return m.Name },
		Prepare: func(m *models.RawMaterial) { m.UnitCost = entity.Currency(m.UnitCost) },
	}
}

func Customers() *entity.Definition[models.Customer] {
	return &entity.Definition[models.Customer]{
		Meta: entity.Meta{
			Name:     "Customer",
			Plural:   "Customers",
			Slug:     "customers",
			Table:    models.TableCustomers,
			Subtitle: "Manage your customer relationships",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "name", Label: "Company Name"},
				{Key: "contact", Label: "Contact Person"},
				{Key: "email", Label: "Email"},
				{Key: "phone", Label: "Phone"},
				{Key: "status", Label: "Status"},
			},
			Fields: []entity.Field{
				{Key: "name", Label: "Company Name", Kind: entity.KindText, Required: true},
				{Key: "contact", Label: "Contact Person", Kind: entity.KindText, Required: true},
				{Key: "email", Label: "Email", Kind: entity.KindEmail, Required: true},
				{Key: "phone", Label: "Phone", Kind: entity.KindText},
				{Key: "address", Label: "Address", Kind: entity.KindTextarea},
				{Key: "orderCount", Label: "Orders", Kind: entity.KindInt, Default: fixed("0")},
				{Key: "status", Label: "Status", Kind: entity.KindSelect, Options: statusOptions, Default: fixed(models.StatusActive)},
			},
		},
		Subject: func(c models.Customer) string { return c.Name },
	}
}

func Suppliers() *entity.Definition[models.Supplier] {
	return &entity.Definition[models.Supplier]{
		Meta: entity.Meta{
			Name:     "Supplier",
			Plural:   "Suppliers",
			Slug:     "suppliers",
			Table:    models.TableSuppliers,
			Subtitle: "Manage your supplier relationships",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "name", Label: "Company Name"},
				{Key: "contact", Label: "Contact Person"},
				{Key: "email", Label: "Email"},
				{Key: "phone", Label: "Phone"},
				{Key: "materials", Label: "Materials Supplied"},
				{Key: "status", Label: "Status"},
			},
			Fields: []entity.Field{
				{Key: "name", Label: "Company Name", Kind: entity.KindText, Required: true},
				{Key: "contact", Label: "Contact Person", Kind: entity.KindText, Required: true},
				{Key: "email", Label: "Email", Kind: entity.KindEmail, Required: true},
				{Key: "phone", Label: "Phone", Kind: entity.KindText},
				{Key: "address", Label: "Address", Kind: entity.KindTextarea},
				{Key: "materials", Label: "Materials Supplied", Kind: entity.KindText},
				{Key: "status", Label: "Status", Kind: entity.KindSelect, Options: statusOptions, Default: fixed(models.StatusActive)},
			},
		},
		Subject: func(s models.Supplier) string { return s.Name },
	}
}

func Defects() *entity.Definition[models.Defect] {
	return &entity.Definition[models.Defect]{
		Meta: entity.Meta{
			Name:     "Defect",
			Plural:   "Defects",
			Slug:     "defects",
			Table:    models.TableDefects,
			Subtitle: "Track and manage product defects",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "product", Label: "Product"},
				{Key: "category", Label: "Category"},
				{Key: "reportedBy", Label: "Reported By"},
				{Key: "reportDate", Label: "Report Date"},
				{Key: "status", Label: "Status"},
				{Key: "severity", Label: "Severity"},
			},
			Fields: []entity.Field{
				{Key: "product", Label: "Product", Kind: entity.KindText, Required: true},
				{Key: "category", Label: "Category", Kind: entity.KindSelect, Options: models.DefectCategories, Required: true},
				{Key: "description", Label: "Description", Kind: entity.KindTextarea, Required: true},
				{Key: "reportedBy", Label: "Reported By", Kind: entity.KindText, Required: true},
				{Key: "reportDate", Label: "Report Date", Kind: entity.KindDate, Default: today},
				{Key: "status", Label: "Status", Kind: entity.KindSelect, Default: fixed(models.DefectOpen),
					Options: []string{models.DefectOpen, models.DefectInProgress, models.DefectResolved, models.DefectClosed}},
				{Key: "severity", Label: "Severity", Kind: entity.KindSelect, Default: fixed(models.SeverityMedium),
					Options: []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical}},
			},
		},
		Subject: func(d models.Defect) string { return "Defect for " + d.Product },
	}
}

func MaterialMappings() *entity.Definition[models.MaterialMapping] {
	return &entity.Definition[models.MaterialMapping]{
		Meta: entity.Meta{
			Name:     "Material Mapping",
			Plural:   "Material Mappings",
			Slug:     "material-mappings",
			Table:    models.TableMaterialMappings,
			Path:     "/material-mapping",
			Subtitle: "Map raw materials to products and calculate costs",
			Order:    "id asc",
			Columns: []entity.Column{
				{Key: "product", Label: "Product"},
				{Key: "material", Label: "Material"},
				{Key: "quantity", Label: "Quantity"},
				{Key: "unit", Label: "Unit"},
				{Key: "cost", Label: "Cost"},
			},
			Fields: []entity.Field{
				{Key: "product", Label: "Product", Kind: entity.KindText, Required: true},
				{Key: "material", Label: "Material", Kind: entity.KindSelect, Options: costing.Materials(), Required: true},
				{Key: "quantity", Label: "Quantity", Kind: entity.KindNumber, Required: true},
				{Key: "unit", Label: "Unit", Kind: entity.KindText, Required: true},
			},
		},
		Subject: func(m models.MaterialMapping) string {
			return "Mapping between " + m.Product + " and " + m.Material
		},
		Prepare: func(m *models.MaterialMapping) { m.Cost = costing.Cost(m.Material, m.Quantity) },
	}
}
