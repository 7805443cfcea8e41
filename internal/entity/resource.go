package entity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"factory-admin/internal/cache"
	"factory-admin/internal/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// API is the type-independent view of a Resource used for routing and
// dashboard counts.
type API interface {
	Meta() Meta
	Count(ctx context.Context) (int64, error)
	Register(router fiber.Router)
}

// Resource is a Definition bound to its backing table. Lists go through the
// query cache when one is configured.
type Resource[T store.Record] struct {
	def    *Definition[T]
	table  *store.Table[T]
	cache  *cache.Cache
	logger *zap.Logger
}

func NewResource[T store.Record](def *Definition[T], table *store.Table[T], c *cache.Cache, logger *zap.Logger) *Resource[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resource[T]{def: def, table: table, cache: c, logger: logger.With(zap.String("table", def.Table))}
}

func (r *Resource[T]) Definition() *Definition[T] { return r.def }

func (r *Resource[T]) Meta() Meta { return r.def.Meta }

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	if r.cache == nil {
		return r.table.List(ctx)
	}
	return cache.Load(ctx, r.cache, r.def.Table, r.table.List)
}

func (r *Resource[T]) Get(ctx context.Context, id uint) (T, error) {
	return r.table.Get(ctx, id)
}

func (r *Resource[T]) Insert(ctx context.Context, row T) (T, error) {
	return r.table.Insert(ctx, row)
}

func (r *Resource[T]) Update(ctx context.Context, id uint, row T) (T, error) {
	return r.table.Update(ctx, id, row)
}

func (r *Resource[T]) Delete(ctx context.Context, id uint) error {
	return r.table.Delete(ctx, id)
}

func (r *Resource[T]) Count(ctx context.Context) (int64, error) {
	return r.table.Count(ctx)
}

// Register mounts the REST routes of the resource on router under /<slug>.
func (r *Resource[T]) Register(router fiber.Router) {
	g := router.Group("/" + r.def.Slug)
	g.Get("/", r.ListHandler())
	g.Get("/count", r.CountHandler())
	g.Get("/export.xlsx", r.ExportHandler())
	g.Post("/import.xlsx", r.ImportHandler())
	g.Get("/:id", r.GetHandler())
	g.Post("/", r.CreateHandler())
	g.Put("/:id", r.UpdateHandler())
	g.Delete("/:id", r.DeleteHandler())
}

// -------------------------
// Handlers
// -------------------------

// GET /api/<slug>?q=
func (r *Resource[T]) ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := r.List(c.UserContext())
		if err != nil {
			r.logger.Error("list failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Failed to fetch %s: %v", r.def.Table, err))
		}
		rows = r.def.Search(rows, c.Query("q"))
		if rows == nil {
			rows = []T{}
		}
		return c.JSON(rows)
	}
}

// GET /api/<slug>/count
func (r *Resource[T]) CountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := r.Count(c.UserContext())
		if err != nil {
			r.logger.Error("count failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Failed to count %s: %v", r.def.Table, err))
		}
		return c.JSON(fiber.Map{"table": r.def.Table, "count": n})
	}
}

// GET /api/<slug>/:id
func (r *Resource[T]) GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := ParseID(c.Params("id"))
		if err != nil {
			return err
		}
		row, err := r.Get(c.UserContext(), id)
		if err != nil {
			return r.storeError("fetch", err)
		}
		return c.JSON(row)
	}
}

// POST /api/<slug>
func (r *Resource[T]) CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		row, err := r.decodeBody(c, Draft{})
		if err != nil {
			return err
		}
		created, err := r.Insert(c.UserContext(), row)
		if err != nil {
			return r.storeError("add", err)
		}
		r.logger.Info("row added", zap.Uint("id", created.Key()))
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// PUT /api/<slug>/:id
func (r *Resource[T]) UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := ParseID(c.Params("id"))
		if err != nil {
			return err
		}
		// fields missing from the body keep their stored values
		current, err := r.Get(c.UserContext(), id)
		if err != nil {
			return r.storeError("update", err)
		}
		row, err := r.decodeBody(c, r.def.DraftOf(current))
		if err != nil {
			return err
		}
		updated, err := r.Update(c.UserContext(), id, row)
		if err != nil {
			return r.storeError("update", err)
		}
		r.logger.Info("row updated", zap.Uint("id", id))
		return c.JSON(updated)
	}
}

// DELETE /api/<slug>/:id
func (r *Resource[T]) DeleteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := ParseID(c.Params("id"))
		if err != nil {
			return err
		}
		if err := r.Delete(c.UserContext(), id); err != nil {
			return r.storeError("delete", err)
		}
		r.logger.Info("row deleted", zap.Uint("id", id))
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// decodeBody lays the request body over base and decodes the result.
func (r *Resource[T]) decodeBody(c *fiber.Ctx, base Draft) (T, error) {
	var zero T
	body := map[string]any{}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm) {
		// BodyParser only binds forms into structs
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			body[string(k)] = string(v)
		})
	} else if err := c.BodyParser(&body); err != nil {
		return zero, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	draft := base.Clone()
	for k, v := range r.def.DraftFromMap(body) {
		draft[k] = v
	}
	if err := r.def.Validate(draft); err != nil {
		return zero, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	row, err := r.def.Decode(draft)
	if err != nil {
		return zero, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return row, nil
}

func (r *Resource[T]) storeError(action string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("%s not found", r.def.Name))
	}
	r.logger.Error(action+" failed", zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("Failed to %s %s: %v", action, r.def.Noun(), err))
}

// ParseID reads a positive record id from a route parameter.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}
