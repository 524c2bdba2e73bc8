package validate

import (
	"regexp"
	"strings"
)

var (
	// 3 to 10 letters, digits, spaces or dashes; covers most postal formats
	rePostal = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 -]{1,8}[A-Za-z0-9]$`)
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ      = regexp.MustCompile(`^[\p{L}0-9 _'\-]{1,50}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePrice  = regexp.MustCompile(`^[0-9]{1,6}(\.[0-9]{1,2})?$`)
	reURL    = regexp.MustCompile(`^https://[A-Za-z0-9.-]+(/[A-Za-z0-9._~%/-]*)?$`)
)

func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePostal.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (product ids, uuids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > 60 {
		return "", false
	}
	return s, true
}

// Text bounds free text such as addresses and descriptions. Empty is allowed.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len([]rune(s)) <= max
}

// Price accepts plain decimals with at most two fraction digits.
func Price(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePrice.MatchString(s)
}

// ImageURL accepts an empty value or an https URL.
func ImageURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, len(s) <= 300 && reURL.MatchString(s)
}

// Notes splits a comma separated list, dropping blanks. At most 12 notes of
// 30 characters each are accepted.
func Notes(s string) ([]string, bool) {
	var out []string
	for _, n := range strings.Split(s, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if len([]rune(n)) > 30 {
			return nil, false
		}
		out = append(out, n)
	}
	return out, len(out) <= 12
}

// Message bounds a chat message.
func Message(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len([]rune(s)) <= 500
}
