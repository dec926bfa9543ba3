package paymentsvc

import (
	"fmt"
	"strings"

	"github.com/agronexus/marketplace/internal/apperrors"
)

// NormalizePhone canonicalizes a Kenyan mobile number into the 12-digit
// 254XXXXXXXXX form the gateway expects. Accepted inputs are the local
// 0XXXXXXXXX form, a bare 9-digit subscriber number, and numbers already
// carrying the 254 country code with or without a leading plus. The function
// is idempotent: feeding its output back in returns it unchanged.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+':
			// separators and the plus sign are stripped
		default:
			return "", fmt.Errorf("%w: invalid phone number format", apperrors.ErrValidation)
		}
	}

	digits := b.String()

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		digits = "254" + digits[1:]
	case len(digits) == 9:
		digits = "254" + digits
	}

	if len(digits) != 12 || !strings.HasPrefix(digits, "254") {
		return "", fmt.Errorf("%w: invalid phone number format", apperrors.ErrValidation)
	}

	return digits, nil
}
