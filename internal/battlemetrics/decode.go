package battlemetrics

import (
	"errors"
	"fmt"
	"regexp"
	"rustbot/internal/monitor"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var (
	errInvalidJSON       = errors.New("response is not valid JSON")
	errMissingAttributes = errors.New("response has no data.attributes")
)

// Path of the server description in the included resources
const descriptionPath = `included.#(type=="serverDescription").attributes.description`

// DecodeServer maps a server document to a status for serverID.
func DecodeServer(serverID string, data []byte, at time.Time) (monitor.EntityStatus, error) {
	if !gjson.ValidBytes(data) {
		return monitor.EntityStatus{}, errInvalidJSON
	}
	attributes := gjson.GetBytes(data, "data.attributes")
	if !attributes.IsObject() {
		return monitor.EntityStatus{}, errMissingAttributes
	}

	server := monitor.ServerStatus{
		Online:      attributes.Get("status").String() == "online",
		Players:     int(attributes.Get("players").Int()),
		MaxPlayers:  int(attributes.Get("maxPlayers").Int()),
		Description: FormatDescription(gjson.GetBytes(data, descriptionPath).String()),
	}
	ip := attributes.Get("ip").String()
	port := attributes.Get("port").Int()
	if ip != "" && port != 0 {
		server.Connect = fmt.Sprintf("connect %s:%d", ip, port)
	}

	return monitor.Succeeded(serverID, attributes.Get("name").String(), at, server), nil
}

const maxDescriptionLength = 1000

var (
	lineBreakTag = regexp.MustCompile(`(?i)<\s*br\s*/?>`)
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// FormatDescription turns the HTML server description into plain text that
// fits in a card field.
func FormatDescription(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := lineBreakTag.ReplaceAllString(raw, "\n")
	cleaned = htmlTag.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	cleaned = blankLines.ReplaceAllString(cleaned, "\n\n")
	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	cleaned = strings.TrimSpace(strings.Join(lines, "\n"))

	if utf8.RuneCountInString(cleaned) <= maxDescriptionLength {
		return cleaned
	}

	// Prefer cutting at a line break when one is far enough in
	runes := []rune(cleaned)
	head := string(runes[:maxDescriptionLength])
	if cut := strings.LastIndex(head, "\n"); cut >= 0 && utf8.RuneCountInString(head[:cut]) > maxDescriptionLength/2 {
		return strings.TrimRightFunc(head[:cut], unicode.IsSpace) + "\n..."
	}
	return strings.TrimRightFunc(string(runes[:maxDescriptionLength-3]), unicode.IsSpace) + "..."
}
