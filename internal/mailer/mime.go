package mailer

import (
	"bytes"
	"fmt"
	"mime"
)

// BuildMIME assembles a single-part plain-text message in the raw form the
// provider's send API expects (before transport encoding).
func BuildMIME(to, subject, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", encodeHeader(subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}

// encodeHeader applies RFC 2047 Q-encoding to non-ASCII header values.
func encodeHeader(s string) string {
	return mime.QEncoding.Encode("UTF-8", s)
}
