package store

import (
	"context"
	"testing"
	"time"

	"factory-admin/internal/feed"
	"factory-admin/internal/models"
	"factory-admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDepartments(t *testing.T) (*Table[models.Department], *[]feed.Change) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	hub := feed.NewHub(nil)

	var changes []feed.Change
	hub.Subscribe(models.TableDepartments, func(ch feed.Change) { changes = append(changes, ch) })

	return NewTable[models.Department](db, models.TableDepartments, "id asc", hub), &changes
}

func TestInsertAssignsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	tbl, changes := newDepartments(t)

	row, err := tbl.Insert(ctx, models.Department{Name: "Packaging", Location: "Building D", Manager: "Amy Lee"})
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
	assert.False(t, row.CreatedAt.IsZero())
	assert.Equal(t, 0, row.EmployeeCount)

	require.Len(t, *changes, 1)
	assert.Equal(t, feed.ActionInsert, (*changes)[0].Action)
	assert.Equal(t, row.ID, (*changes)[0].ID)
}

func TestInsertRejectsClientID(t *testing.T) {
	tbl, changes := newDepartments(t)

	d := models.Department{Name: "QA"}
	d.ID = 42
	_, err := tbl.Insert(context.Background(), d)
	assert.Error(t, err)
	assert.Empty(t, *changes)
}

func TestListOrderedByID(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newDepartments(t)

	for _, name := range []string{"Production", "Assembly", "Logistics"} {
		_, err := tbl.Insert(ctx, models.Department{Name: name, Location: "Plant 1", Manager: "M"})
		require.NoError(t, err)
	}

	rows, err := tbl.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Production", rows[0].Name)
	assert.Equal(t, "Logistics", rows[2].Name)
	assert.Less(t, rows[0].ID, rows[1].ID)
	assert.Less(t, rows[1].ID, rows[2].ID)

	n, err := tbl.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestUpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	tbl, changes := newDepartments(t)

	orig, err := tbl.Insert(ctx, models.Department{Name: "R&D", Location: "Building A", Manager: "Sam", EmployeeCount: 12})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	updated, err := tbl.Update(ctx, orig.ID, models.Department{Name: "Research", Location: "Building B", Manager: "Sam", EmployeeCount: 12})
	require.NoError(t, err)

	assert.Equal(t, orig.ID, updated.ID)
	assert.True(t, orig.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, "Research", updated.Name)
	assert.Equal(t, "Building B", updated.Location)
	assert.Equal(t, 12, updated.EmployeeCount)

	require.Len(t, *changes, 2)
	assert.Equal(t, feed.ActionUpdate, (*changes)[1].Action)
}

func TestUpdateWritesZeroValues(t *testing.T) {
	ctx := context.Background()
	tbl, _ := newDepartments(t)

	orig, err := tbl.Insert(ctx, models.Department{Name: "QA", Location: "B", Manager: "M", EmployeeCount: 9})
	require.NoError(t, err)

	updated, err := tbl.Update(ctx, orig.ID, models.Department{Name: "QA", Location: "B", Manager: "M"})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.EmployeeCount)
}

func TestUpdateAndDeleteMissingRow(t *testing.T) {
	ctx := context.Background()
	tbl, changes := newDepartments(t)

	_, err := tbl.Update(ctx, 999, models.Department{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = tbl.Delete(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tbl.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Empty(t, *changes)
}

func TestDeleteRemovesRow(t *testing.T) {
	ctx := context.Background()
	tbl, changes := newDepartments(t)

	row, err := tbl.Insert(ctx, models.Department{Name: "Admin", Location: "HQ", Manager: "Kim"})
	require.NoError(t, err)

	require.NoError(t, tbl.Delete(ctx, row.ID))

	rows, err := tbl.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, feed.ActionDelete, (*changes)[len(*changes)-1].Action)
}

func TestListFailureIsWrapped(t *testing.T) {
	db := testutil.Broken(t)
	tbl := NewTable[models.Customer](db, models.TableCustomers, "", nil)

	_, err := tbl.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list customers")
}
