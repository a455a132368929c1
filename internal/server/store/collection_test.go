package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
)

func brands(t *testing.T, n int) *Collection[models.Brand] {
	t.Helper()
	c := NewCollection(Accessor[models.Brand]{
		ID:     func(b *models.Brand) *int64 { return &b.ID },
		Audit:  func(b *models.Brand) *models.Audit { return &b.Audit },
		Search: func(b *models.Brand) []string { return []string{b.Name} },
	})
	for i := 1; i <= n; i++ {
		c.Insert(models.Brand{Name: fmt.Sprintf("Brand %02d", i), Status: models.StatusActive})
	}
	return c
}

func TestInsert_AssignsIDAndTimestamps(t *testing.T) {
	c := brands(t, 0)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	a := c.Insert(models.Brand{Name: "A"})
	b := c.Insert(models.Brand{Name: "B"})

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, fixed, a.CreatedAt)
	assert.Equal(t, fixed, a.UpdatedAt)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	c := brands(t, 25)

	p := c.List(2, 10, "")

	assert.Len(t, p.Data, 10)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.LastPage)
	assert.Equal(t, 25, p.Total)
	assert.Equal(t, "Brand 15", p.Data[0].Name)

	last := c.List(3, 10, "")
	assert.Len(t, last.Data, 5)

	past := c.List(9, 10, "")
	assert.Empty(t, past.Data)
	assert.Equal(t, 3, past.LastPage)
}

func TestList_Search(t *testing.T) {
	c := brands(t, 25)

	p := c.List(1, 10, "brand 2")

	assert.Equal(t, 6, p.Total) // 20..25
	assert.Equal(t, 1, p.LastPage)

	none := c.List(1, 10, "zzz")
	assert.Empty(t, none.Data)
	assert.Equal(t, 1, none.LastPage)
}

func TestList_ClampsPerPage(t *testing.T) {
	c := brands(t, 3)
	assert.Equal(t, DefaultPerPage, c.List(0, 0, "").PerPage)
	assert.Equal(t, MaxPerPage, c.List(1, 1000, "").PerPage)
}

func TestUpdateDelete(t *testing.T) {
	c := brands(t, 2)

	got, err := c.Update(1, func(b *models.Brand) error {
		b.Name = "Renamed"
		b.ID = 99
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID, "id cannot be changed")

	stored, err := c.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)

	boom := errors.New("boom")
	_, err = c.Update(1, func(*models.Brand) error { return boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, c.Delete(1))
	_, err = c.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Delete(1), ErrNotFound)
	_, err = c.Update(1, func(*models.Brand) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, c.Len())
}
