package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	validationCodePrefix = "CERT"
	suffixLength         = 4
	base36Alphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ValidationCodePattern matches codes such as CERT-LXJ2K9A1-7F3Q.
var ValidationCodePattern = regexp.MustCompile(`^CERT-[0-9A-Z]+-[0-9A-Z]{4}$`)

// GenerateValidationCode returns CERT-<base36 millis>-<4 random base36 chars>, uppercased.
// The code carries no security property; uniqueness is enforced by the store.
func GenerateValidationCode(now time.Time) (string, error) {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	radix := big.NewInt(int64(len(base36Alphabet)))
	suffix := make([]byte, suffixLength)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", fmt.Errorf("generate validation code: %w", err)
		}
		suffix[i] = base36Alphabet[n.Int64()]
	}

	return fmt.Sprintf("%s-%s-%s", validationCodePrefix, stamp, suffix), nil
}

// ValidationURL builds {baseURL}/verify/cert/{code}.
func ValidationURL(baseURL, code string) string {
	return fmt.Sprintf("%s/verify/cert/%s", strings.TrimRight(baseURL, "/"), code)
}

// Ordinal renders n with its English ordinal suffix (1st, 2nd, 3rd, 4th, 11th, 21st).
func Ordinal(n int) string {
	return strconv.Itoa(n) + OrdinalSuffix(n)
}

func OrdinalSuffix(n int) string {
	if n < 0 {
		n = -n
	}
	if mod := n % 100; mod >= 11 && mod <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
