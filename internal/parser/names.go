package parser

import (
	"regexp"
	"strings"

	"github.com/user/attendance-service/internal/entity"
)

const maxSubjectNameLen = 50

var (
	arrowArtifact   = regexp.MustCompile(`---?>.*$`)
	innerWhitespace = regexp.MustCompile(`\s+`)
)

// NameIndex maps subject codes to display names.
type NameIndex map[string]string

// Lookup returns the name for code, or entity.SubjectNameUnknown.
func (n NameIndex) Lookup(code string) string {
	if name, ok := n[code]; ok && name != "" {
		return name
	}
	return entity.SubjectNameUnknown
}

// BuildNameIndex resolves each code by searching markup for "CODE-Name",
// falling back to a capitalised phrase right after the code. Codes without a
// match are left out of the index.
func BuildNameIndex(markup string, codes []string) NameIndex {
	index := make(NameIndex, len(codes))
	for _, code := range codes {
		if _, done := index[code]; done {
			continue
		}
		if name := resolveName(markup, code); name != "" {
			index[code] = name
		}
	}
	return index
}

func resolveName(markup, code string) string {
	quoted := regexp.QuoteMeta(code)

	dashed := regexp.MustCompile(`(?i)` + quoted + `\s*-\s*([^<\n]+?)(?:<br>|<|\n|$)`)
	if m := dashed.FindStringSubmatch(markup); m != nil {
		name := strings.TrimSpace(m[1])
		name = arrowArtifact.ReplaceAllString(name, "")
		if name = cleanName(name); name != "" {
			return name
		}
	}

	nearby := regexp.MustCompile(quoted + `[^A-Z0-9]{0,3}([A-Z][a-zA-Z\s&]+?)(?:<|$|[0-9])`)
	if m := nearby.FindStringSubmatch(markup); m != nil {
		return cleanName(m[1])
	}
	return ""
}

func cleanName(name string) string {
	name = strings.TrimSpace(innerWhitespace.ReplaceAllString(name, " "))
	if runes := []rune(name); len(runes) > maxSubjectNameLen {
		name = strings.TrimSpace(string(runes[:maxSubjectNameLen]))
	}
	return name
}
