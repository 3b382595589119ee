package repofetch

import (
	"encoding/base64"
	"unicode/utf8"
)

// Decode turns a base64 file body from the contents API into text. The API
// wraps the payload at 60 columns; StdEncoding skips the newlines.
func Decode(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", DecodeError{Reason: "invalid base64 content", Err: err}
	}
	if !utf8.Valid(raw) {
		return "", DecodeError{Reason: "content is not valid UTF-8"}
	}
	return string(raw), nil
}
