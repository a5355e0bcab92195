package layout

import (
	"math"
	"strings"
)

// Ellipsis is appended to the last line when text is truncated.
const Ellipsis = "…"

// Wrap breaks text into lines that each measure at most maxWidth points.
//
// Splitting is greedy on whitespace: a word joins the current line if the
// joined line still fits, otherwise it starts a new line. A literal newline
// is always a hard break and is never merged across. A single word wider
// than maxWidth is broken at the character level. Empty input yields no
// lines, not a single empty line.
func Wrap(m Metrics, text, font string, size, maxWidth float64) []string {
	if text == "" {
		return nil
	}

	// Isolate newlines as explicit break tokens.
	words := strings.Split(strings.ReplaceAll(text, "\n", " \n "), " ")

	var lines []string
	current := ""

	for _, word := range words {
		if word == "\n" {
			if current != "" {
				lines = append(lines, strings.TrimSpace(current))
			}
			current = ""
			continue
		}
		if word == "" {
			continue
		}

		test := word
		if current != "" {
			test = current + " " + word
		}

		if m.Width(font, size, test) <= maxWidth {
			current = test
			continue
		}

		if current != "" {
			lines = append(lines, current)
		}
		if m.Width(font, size, word) > maxWidth {
			lines = append(lines, breakLongWord(m, word, font, size, maxWidth)...)
			current = ""
		} else {
			current = word
		}
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// breakLongWord splits a single over-wide word into chunks that each fit
// maxWidth, accumulating characters until the next one would overflow.
func breakLongWord(m Metrics, word, font string, size, maxWidth float64) []string {
	var result []string
	current := ""

	for _, r := range word {
		test := current + string(r)
		if m.Width(font, size, test) <= maxWidth {
			current = test
			continue
		}
		if current != "" {
			result = append(result, current)
		}
		current = string(r)
	}

	if current != "" {
		result = append(result, current)
	}
	return result
}

// TextHeight returns the total height of n lines at the given size and
// line spacing. Line pitch is uniform; no per-line ascent or descent
// variance is modeled.
func TextHeight(n int, size, spacing float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * size * spacing
}

// Fit wraps text into a maxWidth × maxHeight box, shrinking the font size
// one point per pass until the wrapped height fits or style.MinSize is
// reached. Height is monotonic in size, so the first fitting size is also
// the largest one; shrinking only happens when strictly necessary.
//
// If the text still does not fit at the minimum size, it is cut to the
// number of whole lines the box can hold and the last kept line is
// shortened until it carries a trailing ellipsis within maxWidth. A box
// too short for even one line yields an empty, truncated result.
func Fit(m Metrics, text string, style TextStyle, maxWidth, maxHeight float64) FitResult {
	if text == "" {
		return FitResult{Size: style.Size}
	}

	for size := style.Size; size >= style.MinSize; size-- {
		lines := Wrap(m, text, style.Font, size, maxWidth)
		if TextHeight(len(lines), size, style.LineSpacing) <= maxHeight {
			return FitResult{Lines: lines, Size: size}
		}
	}

	// Minimum size reached and it still overflows: truncate.
	size := style.MinSize
	lines := Wrap(m, text, style.Font, size, maxWidth)
	maxLines := int(math.Floor(maxHeight / (size * style.LineSpacing)))
	if maxLines < 0 {
		// Negative space from an impossible region; report, don't crash.
		maxLines = 0
	}

	if len(lines) <= maxLines {
		return FitResult{Lines: lines, Size: size}
	}

	lines = lines[:maxLines]
	if len(lines) > 0 {
		last := []rune(lines[len(lines)-1])
		for len(last) > 0 && m.Width(style.Font, size, string(last)+Ellipsis) > maxWidth {
			last = last[:len(last)-1]
		}
		lines[len(lines)-1] = string(last) + Ellipsis
	}

	return FitResult{Lines: lines, Size: size, Truncated: true}
}
