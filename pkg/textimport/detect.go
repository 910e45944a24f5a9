package textimport

import (
	"bytes"
	"strings"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// parseSepHeader recognizes a leading "sep=X" line, optionally quoted, and
// returns X.
func parseSepHeader(line []byte) (rune, bool) {
	s := strings.Trim(strings.TrimSpace(string(line)), `"`)
	if len(s) != 5 || !strings.EqualFold(s[:4], "sep=") {
		return 0, false
	}
	return rune(s[4]), true
}

// detectSeparator picks the most frequent of comma, semicolon and tab in
// the sampled lines, preferring comma on a tie.
func detectSeparator(sample []byte) rune {
	var commas, semicolons, tabs int
	for _, line := range bytes.Split(sample, []byte{'\n'}) {
		line = bytes.Trim(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		commas += bytes.Count(line, []byte{','})
		semicolons += bytes.Count(line, []byte{';'})
		tabs += bytes.Count(line, []byte{'\t'})
	}
	switch {
	case semicolons > commas && semicolons > tabs:
		return ';'
	case tabs > commas && tabs > semicolons:
		return '\t'
	}
	return ','
}

// firstLine returns sample up to its first newline.
func firstLine(sample []byte) []byte {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		return sample[:i+1]
	}
	return sample
}
