package bot

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	PARSE_BAD_COLOR = iota
	PARSE_BAD_TIME
	PARSE_BAD_DAY
	PARSE_BAD_SERVER_ID
	PARSE_BAD_INDEX
)

var errorMessages map[int]string = map[int]string{
	PARSE_BAD_COLOR:     "Invalid HEX color format `%s`. Use 6 characters (0-9, A-F), e.g., `FF0000`.",
	PARSE_BAD_TIME:      "Invalid time format `%s`. Expected HH:MM, e.g., `14:00`.",
	PARSE_BAD_DAY:       "Invalid day of the week `%s`.",
	PARSE_BAD_SERVER_ID: "Invalid BattleMetrics server id `%s`. It must be a number.",
	PARSE_BAD_INDEX:     "Invalid embed number. Please specify a number between 1 and %d.",
}

var (
	hexColor  = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)
	clockTime = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	serverID  = regexp.MustCompile(`^\d{1,20}$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseColor turns "faa61a" or "#FAA61A" into "#FAA61A"
func ParseColor(input string) (string, error) {
	color := strings.TrimPrefix(strings.TrimSpace(input), "#")
	if !hexColor.MatchString(color) {
		return "", UserError(errorMessages[PARSE_BAD_COLOR], input)
	}
	return "#" + strings.ToUpper(color), nil
}

// ColorValue converts "#RRGGBB" to the integer Discord expects
func ColorValue(color string) (int, bool) {
	value, err := strconv.ParseInt(strings.TrimPrefix(color, "#"), 16, 32)
	if err != nil || len(color) != 7 {
		return 0, false
	}
	return int(value), true
}

// ParseClock parses a HH:MM time of day
func ParseClock(input string) (hour int, minute int, err error) {
	match := clockTime.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return 0, 0, UserError(errorMessages[PARSE_BAD_TIME], input)
	}
	hour, _ = strconv.Atoi(match[1])
	minute, _ = strconv.Atoi(match[2])
	return hour, minute, nil
}

func ParseWeekday(input string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(input))]
	if !ok {
		return 0, UserError(errorMessages[PARSE_BAD_DAY], input)
	}
	return day, nil
}

func ParseServerID(input string) (string, error) {
	id := strings.TrimSpace(input)
	if !serverID.MatchString(id) {
		return "", UserError(errorMessages[PARSE_BAD_SERVER_ID], input)
	}
	return id, nil
}

// ParseIndex converts a 1-based position into a slice index
func ParseIndex(position int64, total int) (int, error) {
	if total == 0 {
		return 0, UserError("There are no embeds to remove.")
	}
	if position < 1 || position > int64(total) {
		return 0, UserError(errorMessages[PARSE_BAD_INDEX], total)
	}
	return int(position - 1), nil
}
