package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wakewatch/wakewatch/lib/location"
	"github.com/wakewatch/wakewatch/lib/messages"
	"github.com/wakewatch/wakewatch/lib/models"
	"go.uber.org/fx"
)

// One message covers at most this many items; the rest collapse into a
// "... and N more" line so we stay under delivery size limits.
const maxItemsPerMessage = 5

const maxCitiesShown = 2

// Formatter renders subscriber-facing MarkdownV2 messages.
type Formatter struct {
	cities location.CityProvider
}

func NewFormatter(lc fx.Lifecycle, cache *location.CityCache) *Formatter {
	return &Formatter{cities: cache}
}

// ChangeMessage builds one outbound message covering all changed items
// for a keyword, with each item's change reasons attached.
func (f *Formatter) ChangeMessage(ctx context.Context, keyword string, items []models.ItemChange) string {
	kw := EscapeMarkdown(keyword)

	var b strings.Builder
	if len(items) == 1 {
		fmt.Fprintf(&b, "🔔 *Item Update\\!*\n\nYour watchlist keyword '*%s*' has changes:\n\n", kw)
	} else {
		fmt.Fprintf(&b, "🔔 *Item Updates\\!*\n\nYour watchlist keyword '*%s*' has %d items with changes:\n\n", kw, len(items))
	}

	shown := items
	if len(shown) > maxItemsPerMessage {
		shown = shown[:maxItemsPerMessage]
	}
	for i, item := range shown {
		reasonsText := ""
		if len(item.Reasons) > 0 {
			escaped := make([]string, len(item.Reasons))
			for j, reason := range item.Reasons {
				escaped[j] = EscapeMarkdown(reason)
			}
			reasonsText = fmt.Sprintf("\n📌 *Changes:* %s", strings.Join(escaped, ", "))
		}
		fmt.Fprintf(&b, "*%d\\.* %s%s\n\n", i+1, f.formatItem(ctx, item.Record), reasonsText)
	}

	if n := len(items) - maxItemsPerMessage; n > 0 {
		fmt.Fprintf(&b, "_\\.\\.\\. and %d more item%s_\n\n", n, pluralS(n))
	}

	b.WriteString(messages.NotificationFooter(kw))
	return b.String()
}

// TestMessage renders a canned notification used to verify delivery
// end to end.
func (f *Formatter) TestMessage(ctx context.Context) string {
	item := models.InventoryRecord{
		Name:         "Test Notification Item",
		Code:         "TEST001",
		Size:         "750ml",
		Price:        "$25.99",
		Availability: "Available",
		Locations:    []string{"Test Store"},
	}

	var b strings.Builder
	b.WriteString(messages.TestHeader())
	b.WriteString("\n\n")
	b.WriteString("🔔 *New Item Available\\!*\n\nYour watchlist keyword '*test*' has a match:\n\n")
	fmt.Fprintf(&b, "*1\\.* %s\n\n", f.formatItem(ctx, item))
	b.WriteString(messages.NotificationFooter("test"))
	return b.String()
}

func (f *Formatter) formatItem(ctx context.Context, rec models.InventoryRecord) string {
	lines := []string{fmt.Sprintf("🍾 *%s*", EscapeMarkdown(rec.Name))}

	var details []string
	if rec.Size != "" {
		details = append(details, "📏 "+EscapeMarkdown(rec.Size))
	}
	if rec.Price != "" {
		details = append(details, "💰 "+EscapeMarkdown(rec.Price))
	}
	if len(details) > 0 {
		lines = append(lines, strings.Join(details, " • "))
	}

	lines = append(lines, f.formatLocations(ctx, rec.Locations)...)
	return strings.Join(lines, "\n")
}

func (f *Formatter) formatLocations(ctx context.Context, locations []string) []string {
	switch len(locations) {
	case 0:
		return nil
	case 1:
		c := location.Classify(ctx, f.cities, locations[0])
		if c.City != "" {
			return []string{"📍 " + EscapeMarkdown(c.Display)}
		}
		return []string{"📍 " + EscapeMarkdown(locations[0])}
	}

	groups := f.groupByCity(ctx, locations)
	if len(groups) == 0 {
		return nil
	}
	if len(groups) == 1 {
		return formatSingleCity(groups[0], len(locations))
	}
	return formatMultipleCities(groups)
}

type cityGroup struct {
	city   string
	stores []location.Classification
	stock  int
}

// groupByCity buckets classified locations by city, best-stocked cities
// and stores first. Unclassifiable locations are left out of compact
// notifications.
func (f *Formatter) groupByCity(ctx context.Context, locations []string) []cityGroup {
	byCity := make(map[string]*cityGroup)
	var order []string
	for _, loc := range locations {
		c := location.Classify(ctx, f.cities, loc)
		if c.City == "" {
			continue
		}
		group, ok := byCity[c.City]
		if !ok {
			group = &cityGroup{city: c.City}
			byCity[c.City] = group
			order = append(order, c.City)
		}
		group.stores = append(group.stores, c)
		group.stock += c.Stock
	}

	groups := make([]cityGroup, 0, len(order))
	for _, city := range order {
		group := byCity[city]
		sort.SliceStable(group.stores, func(i, j int) bool {
			return group.stores[i].Stock > group.stores[j].Stock
		})
		groups = append(groups, *group)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].stock != groups[j].stock {
			return groups[i].stock > groups[j].stock
		}
		return groups[i].city < groups[j].city
	})
	return groups
}

func formatSingleCity(group cityGroup, totalLocations int) []string {
	topStore := EscapeMarkdown(group.stores[0].Display)
	if remaining := totalLocations - 1; remaining > 0 {
		return []string{fmt.Sprintf("📍 %s \\(\\+%d more\\)", topStore, remaining)}
	}
	return []string{"📍 " + topStore}
}

func formatMultipleCities(groups []cityGroup) []string {
	lines := []string{"📍 Available in:"}

	shown := groups
	if len(shown) > maxCitiesShown {
		shown = shown[:maxCitiesShown]
	}
	for _, group := range shown {
		lines = append(lines, fmt.Sprintf("  *• %s*: %s",
			EscapeMarkdown(group.city), EscapeMarkdown(group.stores[0].Display)))
	}

	if remaining := len(groups) - maxCitiesShown; remaining > 0 {
		stores := 0
		for _, group := range groups[maxCitiesShown:] {
			stores += len(group.stores)
		}
		lines = append(lines, fmt.Sprintf("  _\\.\\.\\. and %d more cit%s \\(%d stores\\)_",
			remaining, pluralCity(remaining), stores))
	}
	return lines
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", "`", "\\`",
	">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}",
	".", "\\.", "!", "\\!",
)

// EscapeMarkdown escapes the characters Telegram's MarkdownV2 treats as
// special.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

func pluralS(n int) string {
	if n != 1 {
		return "s"
	}
	return ""
}

func pluralCity(n int) string {
	if n != 1 {
		return "ies"
	}
	return "y"
}
