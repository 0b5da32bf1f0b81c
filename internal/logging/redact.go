// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package logging

import "strings"

// MaskSecret masks a credential, keeping the first and last 4 characters.
// Values of 12 characters or fewer are fully masked.
//
//	MaskSecret("sk_live_0123456789abcdef") // "sk_l...cdef"
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

var sensitiveKeys = map[string]bool{
	"access_token":   true,
	"accesstoken":    true,
	"token":          true,
	"client_secret":  true,
	"clientsecret":   true,
	"secret":         true,
	"api_key":        true,
	"apikey":         true,
	"authorization":  true,
	"webhook_secret": true,
}

// SanitizeValue masks value when key names a credential.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return MaskSecret(value)
	}
	return value
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
