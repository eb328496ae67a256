package blkdiag

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Byte multiples used for human readable sizes.
const (
	Kibibyte uint64 = 1024
	Mebibyte        = Kibibyte * 1024
	Gibibyte        = Mebibyte * 1024
	Tebibyte        = Gibibyte * 1024
)

// ErrInvalidSize is returned when a human readable size cannot be parsed.
var ErrInvalidSize = errors.New("invalid size")

//nolint:gochecknoglobals
var sizeSuffixes = map[byte]uint64{
	'K': Kibibyte,
	'M': Mebibyte,
	'G': Gibibyte,
	'T': Tebibyte,
}

// BytesFromHuman converts a size like "1T", "500M" or "2gB" to bytes.
// A trailing B is ignored and the suffix is case insensitive.
func BytesFromHuman(human string) (uint64, error) {
	s := strings.TrimSpace(human)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "B"), "b")

	if len(s) < 2 { //nolint:gomnd
		return 0, errors.Wrapf(ErrInvalidSize, "'%s'", human)
	}

	suffix := strings.ToUpper(s[len(s)-1:])[0]

	mult, ok := sizeSuffixes[suffix]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidSize, "'%s': unknown suffix '%c'", human, s[len(s)-1])
	}

	num, err := strconv.ParseUint(s[:len(s)-1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSize, "'%s': %s", human, err)
	}

	if num > math.MaxUint64/mult {
		return 0, errors.Wrapf(ErrInvalidSize, "'%s': too large", human)
	}

	return num * mult, nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	items := []string{}

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		items = append(items, item)
	}

	return items
}
