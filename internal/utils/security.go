package utils

import "unicode/utf8"

// MaskPhoneNumber masks a phone number for logs and menus.
// Keeps first 3 and last 4 characters visible.
//
// Examples:
//   - "+79991234567" -> "+79****4567"
//   - "+12345" -> "****"
func MaskPhoneNumber(phone string) string {
	if len(phone) <= 6 {
		return "****"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}

// MaskSecret hides everything but the last 4 characters of an API key or hash
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// Preview shortens text to at most n runes for log output
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "…"
}
