package extraction

import "strings"

// ScanObject returns the maximal substring of raw that starts at the first
// '{' and ends at the last '}', inclusive. It reports false when raw holds no
// such span. The result is not guaranteed to be valid JSON.
func ScanObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(raw, '}')
	if end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// repairJSON fixes common JSON formatting slips in model output: unquoted
// keys after '{' or ',' that still carry their closing quote, and trailing
// commas before '}' or ']'.
func repairJSON(s string) string {
	return dropTrailingCommas(quoteKeys(s))
}

// quoteKeys adds the missing opening quote before keys.
// Example: `, label":` -> `, "label":`
func quoteKeys(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+16)

	i := 0
	for i < len(result) {
		ch := result[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++

		// Skip whitespace
		for i < len(result) && isSpace(result[i]) {
			fixed = append(fixed, result[i])
			i++
		}

		if i >= len(result) || result[i] == '"' || !isLetter(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && (isLetter(result[i]) || result[i] == '_') {
			i++
		}

		// An unquoted key is followed directly by its closing quote and a colon.
		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, result[keyStart:i]...)
	}

	return string(fixed)
}

// dropTrailingCommas removes commas that directly precede a closing brace or
// bracket, ignoring string contents.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(s) && isSpace(rune(s[j])) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
