package cart

import (
	"context"
	"testing"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/shared"
	"github.com/Dradcheenko/weblarek/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ten    = catalog.Product{ID: "p10", Title: "Ten", Price: catalog.NewPrice(10)}
	twenty = catalog.Product{ID: "p20", Title: "Twenty", Price: catalog.NewPrice(20)}
	free   = catalog.Product{ID: "free", Title: "Priceless"}
)

func TestCart_AddItem(t *testing.T) {
	events := testutil.NewEventRecorder()
	c := NewCart(events)
	ctx := context.Background()

	c.AddItem(ctx, ten)

	assert.True(t, c.IsInCart(ten.ID))
	assert.Equal(t, 1, c.TotalCount())
	assert.Equal(t, 1, events.Count(shared.EventCartChanged))
}

func TestCart_AddItemIdempotent(t *testing.T) {
	events := testutil.NewEventRecorder()
	c := NewCart(events)
	ctx := context.Background()

	c.AddItem(ctx, ten)
	c.AddItem(ctx, ten)
	c.AddItem(ctx, catalog.Product{ID: ten.ID, Title: "same id"})

	assert.Equal(t, 1, c.TotalCount())
	assert.Equal(t, "Ten", c.Items()[0].Title)
	assert.Equal(t, 1, events.Count(shared.EventCartChanged))
}

func TestCart_RemoveItem(t *testing.T) {
	tests := []struct {
		name  string
		setup []catalog.Product
	}{
		{name: "present", setup: []catalog.Product{ten, twenty}},
		{name: "absent", setup: []catalog.Product{twenty}},
		{name: "empty cart", setup: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart(testutil.NewEventRecorder())
			for _, p := range tt.setup {
				c.AddItem(context.Background(), p)
			}

			c.RemoveItem(context.Background(), ten)

			assert.False(t, c.IsInCart(ten.ID))
		})
	}
}

func TestCart_RemoveAbsentDoesNotEmit(t *testing.T) {
	events := testutil.NewEventRecorder()
	c := NewCart(events)

	c.RemoveItem(context.Background(), ten)

	assert.Equal(t, 0, events.Count(shared.EventCartChanged))
}

func TestCart_Totals(t *testing.T) {
	c := NewCart(testutil.NewEventRecorder())
	ctx := context.Background()

	c.AddItem(ctx, ten)
	c.AddItem(ctx, twenty)

	assert.True(t, decimal.NewFromInt(30).Equal(c.TotalPrice()))
	assert.Equal(t, 2, c.TotalCount())

	c.RemoveItem(ctx, twenty)

	assert.Equal(t, 1, c.TotalCount())
	assert.True(t, c.IsInCart(ten.ID))
	assert.True(t, decimal.NewFromInt(10).Equal(c.TotalPrice()))
}

func TestCart_TotalPriceSkipsUnpriced(t *testing.T) {
	c := NewCart(testutil.NewEventRecorder())
	c.AddItem(context.Background(), free)
	c.AddItem(context.Background(), twenty)

	assert.True(t, decimal.NewFromInt(20).Equal(c.TotalPrice()))
	assert.Equal(t, 2, c.TotalCount())
}

func TestCart_ItemsKeepAddOrder(t *testing.T) {
	c := NewCart(testutil.NewEventRecorder())
	ctx := context.Background()
	c.AddItem(ctx, twenty)
	c.AddItem(ctx, ten)

	assert.Equal(t, []string{"p20", "p10"}, c.ItemIDs())

	items := c.Items()
	items[0].Title = "mutated"
	assert.Equal(t, "Twenty", c.Items()[0].Title)
}

func TestCart_Clear(t *testing.T) {
	events := testutil.NewEventRecorder()
	c := NewCart(events)
	ctx := context.Background()

	c.Clear(ctx)
	assert.Equal(t, 1, events.Count(shared.EventCartChanged), "clear emits even when empty")

	c.AddItem(ctx, ten)
	c.Clear(ctx)

	assert.Equal(t, 0, c.TotalCount())
	assert.True(t, c.TotalPrice().IsZero())
	assert.Equal(t, 3, events.Count(shared.EventCartChanged))

	evt, ok := events.Last(shared.EventCartChanged)
	require.True(t, ok)
	assert.Empty(t, evt.Payload)
}
