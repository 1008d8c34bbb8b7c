package models

import (
	"net/url"
	"regexp"
	"strings"
)

// The encoding embedded in the leave-identifier QR has changed several times over
// the system's life and old ID cards stay in circulation, so the resolver tries a
// fixed list of parser strategies in order and must keep accepting every format.

const (
	messNoMinLen = 4
	messNoMaxLen = 20
)

var alnumRun = regexp.MustCompile(`[A-Za-z0-9]{4,}`)

type identifierStrategy func(text string) (string, bool)

var identifierStrategies = []identifierStrategy{
	parsePipeDelimited,
	parseBraceStructured,
	parseCommaList,
	parseColonPair,
	parseVerbatim,
	parseFirstAlnumRun,
}

// ResolveIdentifier extracts a canonical mess number from the decoded text of a
// leave-identifier symbol. Strategies are attempted in order; the first one that
// yields a valid mess number wins. Returns ErrUnparsableIdentifier when nothing
// matches.
func ResolveIdentifier(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrUnparsableIdentifier
	}

	if strings.Contains(text, "%") {
		if decoded, err := url.QueryUnescape(text); err == nil {
			text = strings.TrimSpace(decoded)
		}
	}

	for _, strategy := range identifierStrategies {
		if candidate, ok := strategy(text); ok {
			if messNo, valid := NormalizeMessNo(candidate); valid {
				return messNo, nil
			}
		}
	}

	return "", ErrUnparsableIdentifier
}

// NormalizeMessNo trims the candidate and checks the canonical mess-number
// shape: purely alphanumeric, length between 4 and 20.
func NormalizeMessNo(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if len(candidate) < messNoMinLen || len(candidate) > messNoMaxLen {
		return "", false
	}
	for _, r := range candidate {
		if !isAlnum(r) {
			return "", false
		}
	}
	return candidate, true
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// parsePipeDelimited handles the "PREFIX|meshNo|..." card format; the mess number
// is always the second field.
func parsePipeDelimited(text string) (string, bool) {
	if !strings.Contains(text, "|") {
		return "", false
	}
	fields := strings.Split(text, "|")
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}

// parseBraceStructured handles brace-wrapped key/value payloads, both the JSON-ish
// quoted form and the bare "{mess: 1234, room: 12}" form. The first key containing
// mess, id or student wins.
func parseBraceStructured(text string) (string, bool) {
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(text, "{"), "}")
	for _, pair := range strings.Split(inner, ",") {
		key, value, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.Trim(key, " \t\"'"))
		if strings.Contains(key, "mess") || strings.Contains(key, "id") || strings.Contains(key, "student") {
			return strings.Trim(value, " \t\"'"), true
		}
	}
	return "", false
}

// parseCommaList handles flat comma-separated lists; the first alphanumeric token
// of plausible length is taken as the mess number.
func parseCommaList(text string) (string, bool) {
	if !strings.Contains(text, ",") {
		return "", false
	}
	for _, token := range strings.Split(text, ",") {
		if _, ok := NormalizeMessNo(token); ok {
			return strings.TrimSpace(token), true
		}
	}
	return "", false
}

// parseColonPair handles a single "key:value" pair whose key mentions mess, id or
// student.
func parseColonPair(text string) (string, bool) {
	if strings.Contains(text, ",") {
		return "", false
	}
	key, value, found := strings.Cut(text, ":")
	if !found {
		return "", false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if strings.Contains(key, "mess") || strings.Contains(key, "id") || strings.Contains(key, "student") {
		return value, true
	}
	return "", false
}

// parseVerbatim accepts the whole text when it already looks like a mess number.
func parseVerbatim(text string) (string, bool) {
	_, ok := NormalizeMessNo(text)
	return text, ok
}

// parseFirstAlnumRun is the last resort: pull the first alphanumeric run of length
// four or more out of whatever the scanner produced.
func parseFirstAlnumRun(text string) (string, bool) {
	run := alnumRun.FindString(text)
	if run == "" {
		return "", false
	}
	return run, true
}
