package avatar

import (
	"net/url"
	"regexp"
	"strings"
)

// placeholderTokens are cell values that mean "no image" in the sheets.
var placeholderTokens = map[string]struct{}{
	"link": {}, "null": {}, "undefined": {}, "false": {},
	"0": {}, "n/a": {}, "na": {}, "none": {}, "": {},
}

var driveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`),
}

// Resolve turns a raw image cell into an ordered list of candidate URLs,
// most-CORS-friendly first. An empty list means the caller should fall back
// to initials or a generated avatar.
func Resolve(raw string) []string {
	cleaned := clean(raw)
	if isPlaceholder(cleaned) {
		return nil
	}

	value := cleaned
	if strings.Contains(cleaned, ",") {
		value = pickFromList(cleaned)
		if value == "" {
			return nil
		}
	}

	if id := driveFileID(value); id != "" {
		return candidateURLs(id)
	}
	if looksDirect(value) {
		return []string{value}
	}
	return nil
}

func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}

func isPlaceholder(s string) bool {
	_, ok := placeholderTokens[strings.ToLower(s)]
	return ok
}

// pickFromList takes the first comma-separated segment that looks like a
// URL, falling back to the first non-placeholder segment.
func pickFromList(s string) string {
	parts := strings.Split(s, ",")
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" || isPlaceholder(trimmed) {
			continue
		}
		if strings.HasPrefix(trimmed, "http") || strings.Contains(trimmed, "drive.google.com") {
			return trimmed
		}
	}
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" && !isPlaceholder(trimmed) {
			return trimmed
		}
	}
	return ""
}

func driveFileID(value string) string {
	for _, pattern := range driveIDPatterns {
		if match := pattern.FindStringSubmatch(value); match != nil {
			return match[1]
		}
	}
	return ""
}

func candidateURLs(fileID string) []string {
	return []string{
		"https://drive.google.com/uc?export=view&id=" + fileID,
		"https://lh3.googleusercontent.com/d/" + fileID + "=w400-h400-c",
		"https://lh3.googleusercontent.com/d/" + fileID + "=w400",
		"https://lh3.googleusercontent.com/d/" + fileID,
	}
}

func looksDirect(value string) bool {
	return strings.Contains(value, "drive.google.com/uc") ||
		strings.Contains(value, "lh3.googleusercontent.com")
}

// Initials returns up to two uppercase initials for the deterministic
// text fallback.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "?"
	}
	if len(fields) > 2 {
		fields = fields[:2]
	}
	var b strings.Builder
	for _, f := range fields {
		r := []rune(f)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// GeneratedURL builds a placeholder-avatar request keyed by the subject's
// name against a ui-avatars style service.
func GeneratedURL(serviceBase, name string) string {
	return serviceBase + "?name=" + url.QueryEscape(name) +
		"&background=6366f1&color=fff&size=200&rounded=true"
}
