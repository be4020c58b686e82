package authapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NormalizeErrorBody turns a rejected response body into one readable line.
// op names the operation in fallback messages ("Login", "Registration").
//
//   - JSON array: the first element; structured elements are re-serialized.
//   - JSON object with a non-empty "detail": the detail, normalized the same way.
//   - JSON object without "detail": the whole object, serialized.
//   - other JSON values: their text.
//   - not JSON: the raw text, or "<op> failed with status N" when empty.
func NormalizeErrorBody(op string, status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("%s failed with status %d", op, status)
	}
	if !json.Valid([]byte(text)) {
		return text
	}
	if msg := normalizeValue([]byte(text)); msg != "" {
		return msg
	}
	return op + " failed"
}

func normalizeValue(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
			return ""
		}
		return element(items[0])
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return compact(raw)
		}
		if detail, ok := obj["detail"]; ok && truthy(detail) {
			if msg := normalizeValue(detail); msg != "" {
				return msg
			}
		}
		return compact(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	case 'n':
		return ""
	default:
		return string(raw)
	}
}

// element renders one item of an error array.
func element(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '{', '[':
		return compact(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// truthy mirrors a loose "is this field set" check: null, "", 0 and false are not.
func truthy(raw json.RawMessage) bool {
	v := string(bytes.TrimSpace(raw))
	switch v {
	case "", "null", "false", `""`:
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}

// compact keeps the server's key order, which re-marshalling a map would not.
func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
