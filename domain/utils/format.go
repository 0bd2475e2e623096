package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatEddies renders an eddies amount with thousands separators
func FormatEddies(value int64) string {
	abs := value
	sign := ""
	if value < 0 {
		abs = -value
		sign = "-"
	}

	digits := strconv.FormatInt(abs, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// FormatSigned renders a signed eddies delta with an explicit plus for credits
func FormatSigned(value int64) string {
	if value > 0 {
		return fmt.Sprintf("+%s", FormatEddies(value))
	}
	return FormatEddies(value)
}
