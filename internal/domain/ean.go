package domain

import "regexp"

var (
	nonDigitRegex    = regexp.MustCompile(`[^0-9]`)
	placeholderRegex = regexp.MustCompile(`^0+$`)
)

// NormalizeEAN canonicalizes a scraped barcode into a 13-digit EAN.
// Non-digit characters are stripped, UPC-A codes (12 digits) gain a leading
// zero, and the EAN-13 check digit is verified. Returns ErrInvalidEAN for
// placeholders (all zeros), wrong lengths, and check-digit failures; callers
// treat an invalid code as absent, so a bogus scrape can never drive an
// identifier merge.
func NormalizeEAN(raw string) (string, error) {
	ean := nonDigitRegex.ReplaceAllString(raw, "")
	if ean == "" {
		return "", ErrInvalidEAN
	}

	if placeholderRegex.MatchString(ean) {
		return "", ErrInvalidEAN
	}

	// UPC-A is EAN-13 with an implicit leading zero
	if len(ean) == 12 {
		ean = "0" + ean
	}

	if len(ean) != 13 {
		return "", ErrInvalidEAN
	}

	if !validEAN13CheckDigit(ean) {
		return "", ErrInvalidEAN
	}

	return ean, nil
}

// validEAN13CheckDigit verifies the last digit against the weighted sum of
// the first twelve (odd positions x1, even positions x3).
func validEAN13CheckDigit(ean string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(ean[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return int(ean[12]-'0') == (10-sum%10)%10
}
