package report

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	onTimeToken  = "x"
	absentToken  = "-"
	lateMarker   = "min late"
	lateTypoMark = "min lte"
)

var (
	bareNumberRegex = regexp.MustCompile(`^\d+$`)
	digitsRegex     = regexp.MustCompile(`\d+`)
)

func isLateNote(token string) bool {
	return strings.Contains(token, lateMarker) || strings.Contains(token, lateTypoMark)
}

// IsAttendanceToken reports whether a cell looks like a per-day attendance value.
// A row needs at least one such cell to be taken as a student row.
func IsAttendanceToken(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	return trimmed == onTimeToken ||
		trimmed == absentToken ||
		isLateNote(cell) ||
		bareNumberRegex.MatchString(trimmed)
}

// DecodeStatus decodes one raw per-day token.
// A bare number is the number of minutes late; unknown tokens mean absent.
func DecodeStatus(token string) (Status, int) {
	token = strings.TrimSpace(token)
	switch {
	case token == onTimeToken:
		return StatusOnTime, 0
	case isLateNote(token):
		var minutes int
		if digits := digitsRegex.FindString(token); digits != "" {
			minutes = atoi(digits)
		}
		return StatusLate, minutes
	case bareNumberRegex.MatchString(token):
		return StatusLate, atoi(token)
	default:
		return StatusAbsent, 0
	}
}

func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil { // overflow
		return 0
	}
	return n
}
