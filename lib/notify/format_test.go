package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wakewatch/wakewatch/lib/models"
)

type stubCities []string

func (s stubCities) Cities(ctx context.Context) []string { return s }

func newTestFormatter() *Formatter {
	return &Formatter{cities: stubCities{"Raleigh", "Cary", "Apex"}}
}

func changedItem(name string, reasons ...string) models.ItemChange {
	return models.ItemChange{
		Record: models.InventoryRecord{
			Name:         name,
			Code:         "12345",
			Size:         "750ml",
			Price:        "$74.99",
			Availability: "In Stock",
			Locations:    []string{"123 Main St.Raleigh, NC 27601 - 5 in stock"},
		},
		Reasons: reasons,
	}
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `Blanton's \(750ml\)`, EscapeMarkdown("Blanton's (750ml)"))
	assert.Equal(t, `$74\.99`, EscapeMarkdown("$74.99"))
	assert.Equal(t, `a\_b\*c`, EscapeMarkdown("a_b*c"))
}

func TestChangeMessage_SingleItem(t *testing.T) {
	f := newTestFormatter()
	msg := f.ChangeMessage(context.Background(), "blanton's", []models.ItemChange{
		changedItem("Blanton's Single Barrel", "Item is now available"),
	})

	assert.Contains(t, msg, "🔔 *Item Update\\!*")
	assert.Contains(t, msg, "has changes:")
	assert.Contains(t, msg, "🍾 *Blanton's Single Barrel*")
	assert.Contains(t, msg, "📏 750ml • 💰 $74\\.99")
	assert.Contains(t, msg, "📌 *Changes:* Item is now available")
	assert.Contains(t, msg, "📍 123 Main St \\(5 in stock\\)")
	// Footer names the triggering keyword.
	assert.Contains(t, msg, "'blanton's' is on your watchlist")
}

func TestChangeMessage_MultipleItemsHeader(t *testing.T) {
	f := newTestFormatter()
	msg := f.ChangeMessage(context.Background(), "weller", []models.ItemChange{
		changedItem("Weller Special Reserve", "Price dropped from $29.99 to $24.99"),
		changedItem("Weller Antique 107", "Item is now available"),
	})

	assert.Contains(t, msg, "🔔 *Item Updates\\!*")
	assert.Contains(t, msg, "has 2 items with changes:")
	assert.Contains(t, msg, "*1\\.*")
	assert.Contains(t, msg, "*2\\.*")
}

func TestChangeMessage_CapsAtFiveItems(t *testing.T) {
	f := newTestFormatter()
	var items []models.ItemChange
	for i := 0; i < 7; i++ {
		items = append(items, changedItem(fmt.Sprintf("Bottle %d", i), "Item is now available"))
	}

	msg := f.ChangeMessage(context.Background(), "bottle", items)
	assert.Contains(t, msg, "*5\\.*")
	assert.NotContains(t, msg, "*6\\.*")
	assert.Contains(t, msg, "and 2 more items")
}

func TestChangeMessage_SingleMoreItem(t *testing.T) {
	f := newTestFormatter()
	var items []models.ItemChange
	for i := 0; i < 6; i++ {
		items = append(items, changedItem(fmt.Sprintf("Bottle %d", i), "Item is now available"))
	}

	msg := f.ChangeMessage(context.Background(), "bottle", items)
	assert.Contains(t, msg, "and 1 more item_")
}

func TestFormatLocations_SingleCityCollapses(t *testing.T) {
	f := newTestFormatter()
	lines := f.formatLocations(context.Background(), []string{
		"1 A St.Raleigh, NC 27601 - 5 in stock",
		"2 B St.Raleigh, NC 27601 - 1 in stock",
	})

	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "1 A St \\(5 in stock\\)")
	assert.Contains(t, lines[0], "\\(\\+1 more\\)")
}

func TestFormatLocations_MultipleCitiesGrouped(t *testing.T) {
	f := newTestFormatter()
	lines := f.formatLocations(context.Background(), []string{
		"3 C St.Cary, NC 27511 - 2 in stock",
		"1 A St.Raleigh, NC 27601 - 5 in stock",
		"2 B St.Raleigh, NC 27601 - 1 in stock",
		"4 D St.Apex, NC 27502 - 1 in stock",
	})

	text := strings.Join(lines, "\n")
	assert.Contains(t, text, "📍 Available in:")
	// Best-stocked cities first, capped at two.
	assert.Contains(t, text, "*• Raleigh*: 1 A St \\(5 in stock\\)")
	assert.Contains(t, text, "*• Cary*: 3 C St \\(2 in stock\\)")
	assert.NotContains(t, text, "*• Apex*")
	assert.Contains(t, text, "and 1 more city \\(1 stores\\)")
}

func TestFormatLocations_UnclassifiableFallsBackToRaw(t *testing.T) {
	f := newTestFormatter()
	lines := f.formatLocations(context.Background(), []string{"weird location string"})

	assert.Equal(t, []string{"📍 weird location string"}, lines)
}

func TestTestMessage(t *testing.T) {
	f := newTestFormatter()
	msg := f.TestMessage(context.Background())

	assert.Contains(t, msg, "🧪 *Test Notification*")
	assert.Contains(t, msg, "Test Notification Item")
	assert.Contains(t, msg, "📍 Test Store")
}
