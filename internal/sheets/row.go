package sheets

import "strings"

// Row is a positional list of cell display values. Cells beyond the row's
// width read as empty strings.
type Row []string

func (r Row) Str(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// Int parses the leading integer of a cell, matching the lossy
// parseInt-with-zero-default policy the dashboards rely on: "50%" is 50,
// "12.7" is 12, anything without a leading digit is 0.
func (r Row) Int(i int) int {
	return ParseLooseInt(r.Str(i))
}

func ParseLooseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	i := 0
	neg := false
	if s[i] == '+' || s[i] == '-' {
		neg = s[i] == '-'
		i++
	}
	n := 0
	ok := false
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		ok = true
	}
	if !ok {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
