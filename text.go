package main

import (
	"fmt"
	"math"
)

// formatTime converts seconds to MM:SS format. Unknown values (NaN, Inf,
// negative, or too large for int64, e.g. before metadata loads) render as
// 00:00.
func formatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 || seconds >= math.MaxInt64 {
		return "00:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// scrollText returns a scrolling window of text with smooth looping
func scrollText(text string, max int, offset int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	// Padding for a smooth loop, see scrollSeparator
	fullText := append(runes, []rune(scrollSeparator)...)
	textLen := len(fullText)

	offset = offset % textLen

	var result []rune
	for i := 0; i < max; i++ {
		result = append(result, fullText[(offset+i)%textLen])
	}
	return string(result)
}
