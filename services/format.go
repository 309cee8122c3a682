package services

import "strings"

var filenameReplacer = strings.NewReplacer(
	" ", "-",
	"/", "-",
	"\\", "-",
	":", "-",
	"(", "",
	")", "",
	"\"", "",
)

// SanitizeFilename removes characters that are unsafe for filenames.
func SanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return "checklist"
	}
	return s
}
