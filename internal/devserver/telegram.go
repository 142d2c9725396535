package devserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TelegramHash computes the login widget signature over every field but
// "hash": HMAC-SHA256 keyed with sha256(botToken) over the sorted "k=v" lines.
func TelegramHash(data map[string]any, botToken string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + formatTelegramValue(data[k])
	}

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyTelegramAuth reports whether data carries a valid signature.
func VerifyTelegramAuth(data map[string]any, botToken string) bool {
	got, _ := data["hash"].(string)
	if got == "" {
		return false
	}
	want := TelegramHash(data, botToken)
	return hmac.Equal([]byte(got), []byte(want))
}

func formatTelegramValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}
