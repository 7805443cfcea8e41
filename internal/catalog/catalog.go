package catalog

import (
	"factory-admin/internal/cache"
	"factory-admin/internal/entity"
	"factory-admin/internal/feed"
	"factory-admin/internal/screen"
	"factory-admin/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Catalog is every entity bound to the database, the change feed and the
// query cache.
type Catalog struct {
	APIs    []entity.API
	Screens []screen.Factory
}

// New wires all entities. Writes publish on pub; screens subscribe through
// c so the cached list is dropped before a screen reloads.
func New(db *gorm.DB, pub feed.Publisher, c *cache.Cache, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	cat := &Catalog{}
	add(cat, Departments(), db, pub, c, logger)
	add(cat, Employees(), db, pub, c, logger)
	add(cat, Products(), db, pub, c, logger)
	add(cat, RawMaterials(), db, pub, c, logger)
	add(cat, Customers(), db, pub, c, logger)
	add(cat, Suppliers(), db, pub, c, logger)
	add(cat, Defects(), db, pub, c, logger)
	add(cat, MaterialMappings(), db, pub, c, logger)
	return cat
}

func add[T store.Record](cat *Catalog, def *entity.Definition[T], db *gorm.DB, pub feed.Publisher, c *cache.Cache, logger *zap.Logger) {
	table := store.NewTable[T](db, def.Table, def.Order, pub)
	res := entity.NewResource(def, table, c, logger)

	var sub feed.Subscriber
	if c != nil {
		sub = c
	}

	cat.APIs = append(cat.APIs, res)
	cat.Screens = append(cat.Screens, screen.Factory{
		Meta: def.Meta,
		New: func() screen.Model {
			return screen.New[T](def, res, sub, logger)
		},
	})
}

// Screen returns the factory whose page route or slug is key.
func (c *Catalog) Screen(key string) (screen.Factory, bool) {
	for _, f := range c.Screens {
		if f.Meta.Slug == key || f.Meta.Route() == key {
			return f, true
		}
	}
	return screen.Factory{}, false
}
