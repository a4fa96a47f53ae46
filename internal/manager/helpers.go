package manager

import (
	"strings"
	"time"
)

// wordCount counts whitespace-separated words.
func wordCount(s string) int { return len(strings.Fields(s)) }

// tokensPerSecond approximates throughput from the word count of text.
// elapsed is clamped to 1ms so instant backends do not divide by zero.
func tokensPerSecond(text string, elapsed time.Duration) float64 {
	ms := elapsed.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return float64(wordCount(text)) * 1000 / float64(ms)
}
