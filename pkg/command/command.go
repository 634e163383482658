// Package command parses spoken navigation commands.
package command

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoTarget is returned when a command does not name a target.
var ErrNoTarget = errors.New("command: no navigation target")

// NotUnderstood is the feedback phrase for an unparseable command.
const NotUnderstood = "Could not understand the navigation command."

var navigatePattern = regexp.MustCompile(`(?i)navigate to (\w+)`)

// ParseNavigate extracts the target of "navigate to <word>". The target is
// the first word after the phrase, lowercased.
func ParseNavigate(text string) (string, error) {
	m := navigatePattern.FindStringSubmatch(text)
	if m == nil {
		return "", ErrNoTarget
	}
	return strings.ToLower(m[1]), nil
}
