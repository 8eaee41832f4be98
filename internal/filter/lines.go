package filter

import "strings"

// SplitLines splits text after every line terminator: "\n", "\r\n" or a lone
// "\r". Each line keeps its terminator bytes, so joining the result
// reproduces text exactly. A trailing unterminated line is returned as the
// last element; empty text yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}

	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// JoinLines concatenates lines that still carry their terminators.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// trimTerminator strips a trailing "\n", "\r\n" or "\r".
func trimTerminator(line string) string {
	if strings.HasSuffix(line, "\n") {
		line = line[:len(line)-1]
	}
	return strings.TrimSuffix(line, "\r")
}
