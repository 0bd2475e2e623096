package common

import (
	"fmt"
	"strings"
	"time"

	"eddies/domain/utils"
)

// FormatEddies renders an eddies amount with thousand separators
func FormatEddies(value int64) string {
	return utils.FormatEddies(value)
}

// FormatSigned renders a signed delta with an explicit plus for credits
func FormatSigned(value int64) string {
	return utils.FormatSigned(value)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp rendered in
// the viewer's local timezone. Format types: "t" short time, "T" long time,
// "d" short date, "D" long date, "f" short date/time, "F" long date/time,
// "R" relative.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDuration formats a duration in a human-readable form
// Examples: "2d 14h 30m", "3h 45m", "45m"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "< 1m"
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	return strings.Join(parts, " ")
}

// TruncateLabel safely truncates text to fit Discord's label limits
func TruncateLabel(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}

	truncateAt := maxLength - 3
	for i := truncateAt; i > truncateAt-10 && i > 0; i-- {
		if text[i] == ' ' {
			return text[:i] + "..."
		}
	}
	return text[:truncateAt] + "..."
}
