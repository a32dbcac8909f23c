package utils

import "regexp"

var emailNameRe = regexp.MustCompile(`^([^@]+)`)

// ExtractNameFromEmail extracts the username before '@'
func ExtractNameFromEmail(email string) string {
	match := emailNameRe.FindStringSubmatch(email)
	if len(match) < 2 {
		return email
	}
	return match[1]
}
