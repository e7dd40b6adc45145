package receipts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// Extractor turns recognized receipt text into structured fields.
type Extractor interface {
	Extract(text string) model.ReceiptFields
}

// HeuristicExtractor reads totals, VAT, date and merchant from Dutch and
// English receipts with a handful of patterns. It never fails; fields it
// cannot find stay empty.
type HeuristicExtractor struct{}

var (
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bTOTAAL[:\s]*(€?\s*[\d.,]+)`),
		regexp.MustCompile(`(?i)\bTOTAL[:\s]*(€?\s*[\d.,]+)`),
		regexp.MustCompile(`(?i)\bAMOUNT[:\s]*(€?\s*[\d.,]+)`),
	}
	amountPattern = regexp.MustCompile(`€?\s*(\d+[.,]\d{2})`)
	vatPatterns   = []*regexp.Regexp{
		regexp.MustCompile(`BTW\s*(\d{1,2})\s*%`),
		regexp.MustCompile(`VAT\s*(\d{1,2})\s*%`),
		regexp.MustCompile(`TAX\s*(\d{1,2})\s*%`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}[-/.]\d{1,2}[-/.]\d{1,2}\b`),
		regexp.MustCompile(`\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`),
	}
	notMerchant = regexp.MustCompile(`(?i)(BON|RECEIPT|FACTUUR|TOTAAL|TOTAL|BTW|VAT|AMOUNT|SUBTOTAL|KASSA|PIN|DEBIT|CREDIT)`)
	hasLetter   = regexp.MustCompile(`[A-Za-z]`)
	dashes      = regexp.MustCompile(`[_\-]+`)
	spaces      = regexp.MustCompile(`\s+`)
)

// Extract implements Extractor.
func (HeuristicExtractor) Extract(text string) model.ReceiptFields {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	joined := strings.ToUpper(spaces.ReplaceAllString(strings.Join(lines, " "), " "))

	var f model.ReceiptFields
	for _, rx := range totalPatterns {
		if m := rx.FindStringSubmatch(text); m != nil {
			if v, ok := NormalizeAmount(m[1]); ok {
				f.Total = v
				break
			}
		}
	}
	if f.Total == "" {
		best := -1.0
		for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
			if v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64); err == nil && v > best {
				best = v
			}
		}
		if best >= 0 {
			f.Total = fmt.Sprintf("%.2f", best)
		}
	}

	for _, rx := range vatPatterns {
		if m := rx.FindStringSubmatch(joined); m != nil {
			f.VATPercent = m[1]
			break
		}
	}

	for _, rx := range datePatterns {
		if m := rx.FindString(text); m != "" {
			f.Date = m
			break
		}
	}

	for i := 0; i < len(lines) && i < 10; i++ {
		if !notMerchant.MatchString(lines[i]) && hasLetter.MatchString(lines[i]) {
			f.Merchant = strings.TrimSpace(dashes.ReplaceAllString(lines[i], " "))
			break
		}
	}
	return f
}

// NormalizeAmount turns "€ 1.234,50" or "12,10" into "1234.50" or
// "12.10". The last separator is taken as the decimal point.
func NormalizeAmount(s string) (string, bool) {
	s = strings.NewReplacer("€", "", " ", "").Replace(s)
	s = strings.TrimRight(s, ".,")
	if s == "" {
		return "", false
	}
	if i := strings.LastIndexAny(s, ".,"); i >= 0 {
		intPart := strings.NewReplacer(".", "", ",", "").Replace(s[:i])
		s = intPart + "." + s[i+1:]
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	return s, true
}

// ParseAmount parses a stored total, accepting a decimal comma.
func ParseAmount(s string) (float64, bool) {
	n, ok := NormalizeAmount(s)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(n, 64)
	return v, err == nil
}
