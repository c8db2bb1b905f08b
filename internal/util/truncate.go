package util

import "fmt"

// DefaultLogMaxLen caps provider error bodies quoted in logs and error
// details (1KB).
const DefaultLogMaxLen = 1024

// TruncateLog shortens long strings before they reach logs or error details.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes is a []byte convenience wrapper using DefaultLogMaxLen.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}
