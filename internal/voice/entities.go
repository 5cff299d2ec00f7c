package voice

import (
	"regexp"
	"strconv"
	"strings"
)

// Entities extracted from an utterance. Unmatched entities are simply
// absent, never an error.
type Entities struct {
	Quantity    *float64 `json:"quantity,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ProductName *string  `json:"productName,omitempty"`
	Identifier  *string  `json:"identifier,omitempty"`
}

var unitAliases = map[string]string{
	"kg":        "kg",
	"kilo":      "kg",
	"kilos":     "kg",
	"kilogram":  "kg",
	"kilograms": "kg",
	"किलो":      "kg",
	"g":         "g",
	"gram":      "g",
	"grams":     "g",
	"ग्राम":     "g",
	"l":         "l",
	"litre":     "l",
	"litres":    "l",
	"liter":     "l",
	"liters":    "l",
	"लीटर":      "l",
	"dozen":     "dozen",
	"दर्जन":     "dozen",
	"piece":     "piece",
	"pieces":    "piece",
	"pcs":       "piece",
}

var (
	quantityPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|kilos?|kilograms?|किलो|grams?|ग्राम|litres?|liters?|लीटर|dozen|दर्जन|pieces?|pcs|g|l)\b`)
	// "₹450", "rs 450", "rupees 450", "450 rupees", "450 रुपये"
	pricePattern      = regexp.MustCompile(`(?i)(?:₹|rs\.?\s*|rupees?\s+|रुपये\s*)(\d+(?:\.\d+)?)|(\d+(?:\.\d+)?)\s*(?:rupees?|रुपये|rs\.?)`)
	bareNumber        = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	productPattern    = regexp.MustCompile(`(?i)(?:sell|selling|add|adding|listing|बेचना|बेच)\s+(?:some\s+|my\s+|a\s+|an\s+)?([\p{L}]+(?:\s[\p{L}]+)?)`)
	identifierPattern = regexp.MustCompile(`\b([A-Z]{2,4}-\d{2,8})\b`)
)

// ExtractEntities runs every lexicon/pattern extractor over the utterance.
func ExtractEntities(text string) Entities {
	var e Entities

	if m := quantityPattern.FindStringSubmatch(text); m != nil {
		if qty, err := strconv.ParseFloat(m[1], 64); err == nil {
			unit := normalizeUnit(m[2])
			e.Quantity = &qty
			e.Unit = &unit
		}
	}

	if m := pricePattern.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if price, err := strconv.ParseFloat(raw, 64); err == nil {
			e.Price = &price
		}
	}

	if m := productPattern.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(m[1])
		if name != "" {
			e.ProductName = &name
		}
	}

	if m := identifierPattern.FindStringSubmatch(text); m != nil {
		e.Identifier = &m[1]
	}

	return e
}

// ExtractBareNumber serves confirmation states where a lone number answers a
// quantity or price prompt.
func ExtractBareNumber(text string) *float64 {
	m := bareNumber.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func normalizeUnit(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if unit, ok := unitAliases[key]; ok {
		return unit
	}
	return key
}
