package utils

import (
	"strings"
	"unicode"
)

// splitWords breaks an identifier into lower-cased words on separators and
// lower-to-upper case changes: "user_name", "userName" and "User-Name" all
// become ["user", "name"].
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

// ToCamelCase converts snake, kebab or Pascal case to camelCase.
func ToCamelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(words[0])
	for _, w := range words[1:] {
		sb.WriteString(UpperFirst(w))
	}
	return sb.String()
}

// ToPascalCase is ToCamelCase with the first letter upper-cased.
func ToPascalCase(s string) string {
	return UpperFirst(ToCamelCase(s))
}

// ToKebabCase converts an identifier to lower-case words joined by "-".
func ToKebabCase(s string) string {
	return strings.Join(splitWords(s), "-")
}

func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// StripPrefixes removes the first matching prefix from name.
func StripPrefixes(name string, prefixes []string) string {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return strings.TrimPrefix(name, p)
		}
	}
	return name
}

// BusinessName returns the part of a table name after its last underscore.
func BusinessName(tableName string) string {
	return tableName[strings.LastIndex(tableName, "_")+1:]
}
