package diff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wakewatch/wakewatch/lib/location"
	"github.com/wakewatch/wakewatch/lib/models"
)

const lowStockThreshold = 10

// Decide compares the current record against the previous snapshot and
// produces the notify decision with its change reasons. The rules are
// independent and cumulative: every matching rule appends a reason.
// Pure given its inputs; the caller supplies the previous snapshot and
// writes the new one afterwards regardless of the decision.
func Decide(previous *models.ItemSnapshot, current models.InventoryRecord) models.ChangeDecision {
	// First sighting: notify only if the item is available right now.
	if previous == nil {
		if containsFold(current.Availability, "in stock") {
			return models.ChangeDecision{Notify: true, Reasons: []string{"Item is now available"}}
		}
		return models.ChangeDecision{}
	}

	var reasons []string

	currentLocations := toSet(current.Locations)
	previousLocations := toSet(previous.StoreLocations)
	currentStock := location.TotalStock(current.Locations)

	if n := countMissing(currentLocations, previousLocations); n > 0 {
		reasons = append(reasons, fmt.Sprintf("Now available at %d new store(s)", n))
	}

	wasUnavailable := len(previousLocations) == 0 || previous.Availability != "In Stock"
	nowAvailable := containsFold(current.Availability, "in stock")
	if wasUnavailable && nowAvailable {
		reasons = append(reasons, "Item is now available (was previously unavailable)")
	}

	if reason, ok := priceDrop(previous.Price, current.Price); ok {
		reasons = append(reasons, reason)
	}

	// One-way crossing below the threshold. It can't refire next cycle
	// because the snapshot is overwritten with the current stock.
	if currentStock > 0 && currentStock < lowStockThreshold && previous.TotalStock >= lowStockThreshold {
		reasons = append(reasons, fmt.Sprintf("Low stock alert: Only %d items left", currentStock))
	}

	wasAvailable := len(previousLocations) > 0 && previous.Availability == "In Stock"
	nowUnavailable := len(currentLocations) == 0 || containsFold(current.Availability, "out of stock")
	if wasAvailable && nowUnavailable {
		reasons = append(reasons, "Item is no longer available")
	}

	return models.ChangeDecision{Notify: len(reasons) > 0, Reasons: reasons}
}

// priceDrop fires only when both prices parse and the current one is
// lower. Sentinels like "Price N/A" silently skip the rule.
func priceDrop(previous, current string) (string, bool) {
	if previous == "" || current == "" || previous == current {
		return "", false
	}

	prev, err := decimal.NewFromString(normalizePrice(previous))
	if err != nil {
		return "", false
	}
	curr, err := decimal.NewFromString(normalizePrice(current))
	if err != nil {
		return "", false
	}

	if curr.LessThan(prev) {
		return fmt.Sprintf("Price dropped from %s to %s", previous, current), true
	}
	return "", false
}

var priceCleaner = strings.NewReplacer("$", "", ",", "")

func normalizePrice(price string) string {
	return strings.TrimSpace(priceCleaner.Replace(price))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func toSet(elems []string) map[string]bool {
	set := make(map[string]bool, len(elems))
	for _, elem := range elems {
		set[elem] = true
	}
	return set
}

func countMissing(current, previous map[string]bool) int {
	n := 0
	for elem := range current {
		if !previous[elem] {
			n++
		}
	}
	return n
}
