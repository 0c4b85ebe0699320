package location

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Classification is the result of parsing one raw location string of the
// shape "<address blob> - <quantity phrase>".
type Classification struct {
	City    string // empty when no heuristic produced a city
	Stock   int
	Display string
}

// CityProvider supplies the reference list of known store cities.
type CityProvider interface {
	Cities(ctx context.Context) []string
}

var (
	stateSuffixPattern = regexp.MustCompile(`([A-Za-z\s]+),\s*[A-Z]{2}`)
	digitRun           = regexp.MustCompile(`\d+`)
)

var streetSuffixes = map[string]bool{
	"St": true, "Street": true,
	"Ave": true, "Avenue": true,
	"Rd": true, "Road": true,
	"Dr": true, "Drive": true,
	"Blvd": true, "Boulevard": true,
	"Ln": true, "Lane": true,
	"Ct": true, "Court": true,
	"Pl": true, "Place": true,
	"Cir": true, "Circle": true,
	"Way": true,
	"Pkwy": true, "Parkway": true,
}

// Classify recovers a normalized city, a numeric stock count and a cleaned
// display string from a raw location string. It is total: unparsable input
// returns no city, zero stock and the original string untouched.
func Classify(ctx context.Context, cities CityProvider, location string) Classification {
	address, quantity, ok := splitLocation(location)
	if !ok {
		return Classification{Display: location}
	}

	city := extractCity(ctx, cities, address)
	display := fmt.Sprintf("%s (%s)", cleanAddressForDisplay(address, city), quantity)
	return Classification{
		City:    city,
		Stock:   stockQuantity(quantity),
		Display: display,
	}
}

// StockFromLocation parses just the stock count of one location string.
func StockFromLocation(location string) int {
	_, quantity, ok := splitLocation(location)
	if !ok {
		return 0
	}
	return stockQuantity(quantity)
}

// TotalStock sums the parsed stock count across raw location strings. It
// is the same computation the snapshot's total_stock is built from.
func TotalStock(locations []string) int {
	total := 0
	for _, location := range locations {
		total += StockFromLocation(location)
	}
	return total
}

func splitLocation(location string) (address, quantity string, ok bool) {
	parts := strings.Split(location, " - ")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// matcher is one heuristic in the extraction cascade. The cascade order
// is a deliberate contract; matchers are tried in fixed order and the
// first success wins.
type matcher func(ctx context.Context, cities CityProvider, address string) (string, bool)

var cascade = []matcher{
	matchPeriodDelimited,
	matchKnownCitySuffix,
	matchWordScan,
	matchBeforeComma,
}

func extractCity(ctx context.Context, cities CityProvider, address string) string {
	for _, match := range cascade {
		if city, ok := match(ctx, cities, address); ok {
			return cleanCityName(city)
		}
	}
	return cleanCityName(strings.TrimSpace(address))
}

// matchPeriodDelimited handles "Street.City, State": the city sits after
// the last period and before the next comma.
func matchPeriodDelimited(ctx context.Context, cities CityProvider, address string) (string, bool) {
	if !strings.Contains(address, ".") || !strings.Contains(address, ",") {
		return "", false
	}
	afterPeriod := address[strings.LastIndex(address, ".")+1:]
	if comma := strings.Index(afterPeriod, ","); comma >= 0 {
		return strings.TrimSpace(afterPeriod[:comma]), true
	}
	return "", false
}

// matchKnownCitySuffix handles "StreetCity, ST" with no separator between
// street and city: the regex capture ends with a known city name.
func matchKnownCitySuffix(ctx context.Context, cities CityProvider, address string) (string, bool) {
	candidate, ok := stateCandidate(address)
	if !ok {
		return "", false
	}
	for _, known := range cities.Cities(ctx) {
		if strings.HasSuffix(candidate, known) {
			return known, true
		}
	}
	return "", false
}

// matchWordScan falls back to scanning the regex capture word by word,
// skipping numbers and street suffixes; the first plausible word starts
// the city name, which extends to the end of the candidate.
func matchWordScan(ctx context.Context, cities CityProvider, address string) (string, bool) {
	candidate, ok := stateCandidate(address)
	if !ok {
		return "", false
	}

	words := strings.Fields(candidate)
	if len(words) <= 1 {
		return candidate, true
	}
	for i, word := range words {
		if !streetSuffixes[word] && !containsDigit(word) && len(word) > 2 {
			return strings.Join(words[i:], " "), true
		}
	}
	return candidate, true
}

// matchBeforeComma takes everything before the first comma when no
// state-code pattern matched.
func matchBeforeComma(ctx context.Context, cities CityProvider, address string) (string, bool) {
	if comma := strings.Index(address, ","); comma >= 0 {
		return strings.TrimSpace(address[:comma]), true
	}
	return "", false
}

func stateCandidate(address string) (string, bool) {
	if !strings.Contains(address, ",") {
		return "", false
	}
	m := stateSuffixPattern.FindStringSubmatch(address)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func cleanCityName(city string) string {
	city = strings.TrimSpace(city)
	return strings.TrimRight(city, ".,;:")
}

// cleanAddressForDisplay strips the city/state/zip tail from the address
// using the same suffix patterns extraction relies on, so display and
// parsing stay consistent.
func cleanAddressForDisplay(address, city string) string {
	if city == "" {
		return address
	}

	if i := strings.Index(address, "."+city+", NC"); i >= 0 {
		return address[:i]
	}
	if i := strings.Index(address, city+", NC"); i >= 0 {
		return address[:i]
	}
	if strings.Contains(address, "."+city) && strings.HasSuffix(address, city) {
		if i := strings.Index(address, "."+city); i >= 0 {
			return address[:i]
		}
	}
	if strings.HasSuffix(address, city) && len(address) > len(city) {
		rest := address[:len(address)-len(city)]
		if !isAlpha(rest[len(rest)-1]) {
			return strings.TrimRight(rest, ".")
		}
		for i := len(rest) - 1; i >= 0; i-- {
			if !isAlpha(rest[i]) {
				return strings.TrimRight(rest[:i+1], ".")
			}
		}
	}
	return address
}

// stockQuantity extracts the numeric stock from a quantity phrase like
// "224 in stock". Anything else counts as zero.
func stockQuantity(quantity string) int {
	if !strings.Contains(strings.ToLower(quantity), "in stock") {
		return 0
	}
	digits := digitRun.FindString(quantity)
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func containsDigit(word string) bool {
	for _, r := range word {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
