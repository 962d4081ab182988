package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
)

var vpaPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9]+$`)

// ValidateVPA checks a UPI virtual payment address (handle@provider)
func ValidateVPA(vpa string) error {
	if !vpaPattern.MatchString(vpa) {
		return apperr.ValidationErr(apperr.CodeInvalidVPA, "Invalid VPA format")
	}
	return nil
}

// normalizeCardNumber strips the separators merchants commonly send
func normalizeCardNumber(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	return strings.ReplaceAll(number, "-", "")
}

// luhnValid runs the Luhn checksum over a digit string
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateCardNumber checks length and Luhn checksum, returning the
// normalized digit string.
func ValidateCardNumber(number string) (string, error) {
	n := normalizeCardNumber(number)
	if len(n) < 13 || len(n) > 19 || !luhnValid(n) {
		return "", apperr.ValidationErr(apperr.CodeInvalidCard, "Invalid card number")
	}
	return n, nil
}

// DetectCardNetwork maps a normalized card number to its network
func DetectCardNetwork(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "mastercard"
	case strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37"):
		return "amex"
	case strings.HasPrefix(number, "60") || strings.HasPrefix(number, "65"):
		return "rupay"
	case len(number) >= 2 && number[0] == '8' && number[1] >= '1' && number[1] <= '9':
		return "rupay"
	default:
		return "unknown"
	}
}

// ValidateExpiry checks the expiry month and year against the current
// month. Both two-digit ("30") and four-digit ("2030") years are accepted.
func ValidateExpiry(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return apperr.ValidationErr(apperr.CodeExpiredCard, "Invalid expiry month")
	}
	if year < 0 {
		return apperr.ValidationErr(apperr.CodeExpiredCard, "Invalid expiry year")
	}
	fullYear := year
	if fullYear < 100 {
		fullYear += 2000
	}
	if fullYear < now.Year() || (fullYear == now.Year() && month < int(now.Month())) {
		return apperr.ValidationErr(apperr.CodeExpiredCard, "Card has expired")
	}
	return nil
}

// ValidateMethodDetails checks the instrument details for the chosen payment
// method. For card payments strict enforces expiry and checksum rules; the
// hosted checkout page relaxes them so a shopper's typo fails at processing
// rather than at submit. It returns the card network and last four digits,
// empty for UPI.
func ValidateMethodDetails(method models.PaymentMethod, vpa string, card *models.CardDetails, strict bool) (network, last4 string, err error) {
	switch method {
	case models.MethodUPI:
		if err := ValidateVPA(vpa); err != nil {
			return "", "", err
		}
		return "", "", nil

	case models.MethodCard:
		if card == nil {
			return "", "", apperr.ValidationErr(apperr.CodeBadRequest, "card details are required")
		}
		number := normalizeCardNumber(card.Number)
		if strict {
			number, err = ValidateCardNumber(card.Number)
			if err != nil {
				return "", "", err
			}
			month, merr := strconv.Atoi(card.ExpiryMonth)
			year, yerr := strconv.Atoi(card.ExpiryYear)
			if merr != nil || yerr != nil {
				return "", "", apperr.ValidationErr(apperr.CodeExpiredCard, "Invalid expiry date")
			}
			if err := ValidateExpiry(month, year, time.Now()); err != nil {
				return "", "", err
			}
		} else if len(number) < 4 {
			return "", "", apperr.ValidationErr(apperr.CodeInvalidCard, "Invalid card number")
		}
		return DetectCardNetwork(number), number[len(number)-4:], nil

	default:
		return "", "", apperr.ValidationErr(apperr.CodeBadRequest, fmt.Sprintf("unsupported payment method: %s", method))
	}
}

// ValidateAmount checks that a money amount in minor units is positive
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return apperr.ValidationErr(apperr.CodeBadRequest, "amount must be a positive integer")
	}
	return nil
}
