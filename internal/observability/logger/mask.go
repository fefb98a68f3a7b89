package logger

import (
	"net/http"
	"strings"
)

var sensitiveHeaders = map[string]struct{}{
	"authorization":    {},
	"cookie":           {},
	"stripe-signature": {},
	"x-api-key":        {},
}

// MaskAuthorization masks bearer tokens, preserving the scheme.
func MaskAuthorization(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Fields(value)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return "Bearer " + maskLast4(parts[1])
	}
	return maskLast4(value)
}

// MaskSignature keeps the timestamp element of a provider signature header
// and masks every signature element.
func MaskSignature(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, ",")
	masked := make([]string, 0, len(parts))
	for _, part := range parts {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			masked = append(masked, maskLast4(part))
			continue
		}
		if key == "t" {
			masked = append(masked, part)
			continue
		}
		masked = append(masked, key+"="+maskLast4(val))
	}
	return strings.Join(masked, ",")
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(value string) string {
	value = strings.TrimSpace(value)
	local, domain, ok := strings.Cut(value, "@")
	if !ok || local == "" {
		return maskLast4(value)
	}
	return local[:1] + "***@" + domain
}

// MaskAPIKey masks API keys, preserving only the last 4 characters.
func MaskAPIKey(value string) string {
	return maskLast4(value)
}

// MaskHeaders returns a copy of headers with sensitive fields masked.
func MaskHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	masked := make(map[string]string, len(headers))
	for key, values := range headers {
		joined := strings.Join(values, ",")
		name := strings.ToLower(strings.TrimSpace(key))
		if _, ok := sensitiveHeaders[name]; !ok {
			masked[key] = joined
			continue
		}
		switch name {
		case "authorization":
			masked[key] = MaskAuthorization(joined)
		case "stripe-signature":
			masked[key] = MaskSignature(joined)
		default:
			masked[key] = maskLast4(joined)
		}
	}
	return masked
}

func maskLast4(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
