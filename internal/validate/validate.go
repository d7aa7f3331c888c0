package validate

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// RFC 5322 subset: dot-atom local part, hostname domain.
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	phoneRe  = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	nameRe   = regexp.MustCompile(`^[\p{L}][\p{L}' -]{1,99}$`)
	promoRe  = regexp.MustCompile(`^[A-Z0-9]{4,12}$`)
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
)

// Validator carries the security-event logger. All predicates are
// deterministic; only rejected emails and passwords emit a log entry.
type Validator struct {
	log *logrus.Logger
}

func New(log *logrus.Logger) *Validator {
	return &Validator{log: log}
}

// Email reports whether s matches the accepted address pattern. A
// rejection emits exactly one security event.
func (v *Validator) Email(s string) bool {
	if emailRe.MatchString(s) {
		return true
	}
	v.securityEvent("invalid_email", logrus.Fields{"length": len(s)})
	return false
}

// Password requires at least 8 characters with an upper, a lower and a
// digit. Rejections emit a security event; the value itself is never
// logged.
func (v *Validator) Password(s string) bool {
	if passwordStrong(s) {
		return true
	}
	v.securityEvent("weak_password", logrus.Fields{"length": len(s)})
	return false
}

func (v *Validator) securityEvent(kind string, fields logrus.Fields) {
	if v.log == nil {
		return
	}
	v.log.WithField("event", kind).WithFields(fields).Warn("validation security event")
}

func passwordStrong(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

func Phone(s string) bool {
	return phoneRe.MatchString(strings.ReplaceAll(s, " ", ""))
}

func Name(s string) bool {
	return nameRe.MatchString(strings.TrimSpace(s))
}

// PostalCode checks the format for the given ISO country code. Unknown
// countries accept any short alphanumeric code.
func PostalCode(code, country string) bool {
	code = strings.TrimSpace(code)
	switch strings.ToUpper(country) {
	case "SN", "FR":
		return len(code) == 5 && digitsRe.MatchString(code)
	case "US":
		if len(code) == 10 && code[5] == '-' {
			return digitsRe.MatchString(code[:5]) && digitsRe.MatchString(code[6:])
		}
		return len(code) == 5 && digitsRe.MatchString(code)
	default:
		if len(code) < 3 || len(code) > 10 {
			return false
		}
		return regexp.MustCompile(`^[A-Za-z0-9 -]+$`).MatchString(code)
	}
}

// BirthDate reports whether the subject is at least minAge years old.
func BirthDate(birth time.Time, minAge int, now time.Time) bool {
	if birth.After(now) {
		return false
	}
	return !birth.AddDate(minAge, 0, 0).After(now)
}

// CardNumber applies the Luhn checksum to a 12-19 digit number. Spaces
// and dashes are tolerated.
func CardNumber(s string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
	if len(digits) < 12 || len(digits) > 19 || !digitsRe.MatchString(digits) {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
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

// CardBrand detects the brand from the number prefix; empty when
// unrecognized.
func CardBrand(s string) string {
	digits := strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "-", "")
	switch {
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "amex"
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return "mastercard"
	default:
		return ""
	}
}

// CardExpiry accepts a month/year pair that is this month or later.
func CardExpiry(month, year int, now time.Time) bool {
	if month < 1 || month > 12 {
		return false
	}
	if year < 100 {
		year += 2000
	}
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return endOfMonth.After(now)
}

// CVC length depends on the brand: amex uses 4 digits, everything else 3.
func CVC(cvc, brand string) bool {
	if !digitsRe.MatchString(cvc) {
		return false
	}
	if brand == "amex" {
		return len(cvc) == 4
	}
	return len(cvc) == 3
}

const (
	MinAmountCents int64 = 100
	MaxAmountCents int64 = 10_000_000
)

func Amount(cents int64) bool {
	return cents >= MinAmountCents && cents <= MaxAmountCents
}

// URL accepts absolute http/https URLs only.
func URL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func PromoCode(s string) bool {
	return promoRe.MatchString(s)
}

// SeatNumber checks the seat against the bus capacity.
func SeatNumber(n, total int) bool {
	if total <= 0 {
		return false
	}
	return n >= 1 && n <= total
}

// TripID and BusID are positive integer identifiers on the wire.
func TripID(id int64) bool { return id > 0 }

func BusID(id int64) bool { return id > 0 }
