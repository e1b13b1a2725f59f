package docs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lakmalw/cense/internal/models"
)

// cseSymbolRe matches CSE board symbols like LIOC.N0000 or CFVF.X0000.
var cseSymbolRe = regexp.MustCompile(`(?i)^[A-Z0-9]{2,6}\.[NXW]\d{4}$`)

// priceCleanRe strips thousands separators and currency noise from a price cell.
var priceCleanRe = regexp.MustCompile(`[^0-9.\-]`)

// priceTokenRe recovers the numeric tail when a currency prefix such as
// "Rs." leaves a stray dot behind after cleaning.
var priceTokenRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?$`)

// ParsePriceTable extracts a symbol to price map from trading-summary CSV
// text. The symbol column is matched by exact then fuzzy header name, the
// price column by "last trade (rs.)" then any last/close price variant. Rows
// with malformed symbols or non-positive prices are skipped.
func (s *Service) ParsePriceTable(csvText string) (map[string]float64, error) {
	prices := make(map[string]float64)
	if csvText == "" {
		return prices, nil
	}

	var lines []string
	for _, line := range strings.Split(csvText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return prices, nil
	}

	headerLine := strings.TrimPrefix(lines[0], "\uFEFF")
	headers := splitCSVLine(headerLine)

	symbolIndex := findHeader(headers, func(h string) bool { return h == "symbol" })
	if symbolIndex == -1 {
		symbolIndex = findHeader(headers, func(h string) bool { return strings.Contains(h, "symbol") })
	}
	priceIndex := findHeader(headers, func(h string) bool {
		return strings.Contains(h, "last trade") && strings.Contains(h, "(rs.)")
	})
	if priceIndex == -1 {
		priceIndex = findHeader(headers, func(h string) bool {
			return (strings.Contains(h, "last") || strings.Contains(h, "close")) &&
				(strings.Contains(h, "price") || strings.Contains(h, "(rs.)"))
		})
	}

	if symbolIndex == -1 || priceIndex == -1 {
		return nil, fmt.Errorf("%w: need 'Symbol' and 'Last Trade (Rs.)' columns, got %v", models.ErrColumnNotFound, headers)
	}

	for _, line := range lines[1:] {
		values := splitCSVLine(line)
		if len(values) <= symbolIndex || len(values) <= priceIndex {
			continue
		}
		symbol := values[symbolIndex]
		priceStr := values[priceIndex]
		if symbol == "" || priceStr == "" {
			continue
		}
		if !cseSymbolRe.MatchString(symbol) {
			continue
		}
		price, ok := parsePrice(priceStr)
		if !ok || price <= 0 {
			continue
		}
		prices[strings.ToUpper(symbol)] = price
	}
	return prices, nil
}

// parsePrice cleans a price cell and parses it. Cells like "Rs. 1115.25"
// clean to ".1115.25", so when the full cleaned string does not parse the
// trailing numeric token is tried instead.
func parsePrice(raw string) (float64, bool) {
	cleaned := priceCleanRe.ReplaceAllString(raw, "")
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return v, true
	}
	if tok := priceTokenRe.FindString(cleaned); tok != "" {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// splitCSVLine splits a trading-summary line on commas and trims quoting.
// The CSE export never quotes embedded commas, so a plain split suffices.
func splitCSVLine(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"`)
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// findHeader returns the index of the first header matching the predicate
// after lowercasing, or -1.
func findHeader(headers []string, match func(string) bool) int {
	for i, h := range headers {
		if match(strings.ToLower(h)) {
			return i
		}
	}
	return -1
}
