package resource

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const numberSuffixLen = 4

var numberSuffixSpace = big.NewInt(36 * 36 * 36 * 36)

// NewBusinessNumber genera PREFIX-YYYYMMDD-RRRR con RRRR aleatorio en base 36 (mayúsculas).
// La unicidad es probabilística; el Create reintenta ante colisión detectada por la base.
func NewBusinessNumber(prefix string, now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, numberSuffixSpace)
	if err != nil {
		return "", err
	}
	suffix := strings.ToUpper(strconv.FormatInt(n.Int64(), 36))
	if pad := numberSuffixLen - len(suffix); pad > 0 {
		suffix = strings.Repeat("0", pad) + suffix
	}
	return prefix + "-" + now.Format("20060102") + "-" + suffix, nil
}
