package sudoadapter

import "strings"

// settingValue reads a key=value entry from a host settings/user_info-style
// array, returning "" if absent.
func settingValue(entries []string, key string) string {
	prefix := key + "="
	for _, entry := range entries {
		if strings.HasPrefix(entry, prefix) {
			return strings.TrimPrefix(entry, prefix)
		}
	}
	return ""
}

// settingBoolOK reads a boolean-shaped key=value entry, accepting the same
// literal forms the config loader does, and reports whether the key was
// present at all.
func settingBoolOK(entries []string, key string) (bool, bool) {
	raw := settingValue(entries, key)
	if raw == "" && !hasKey(entries, key) {
		return false, false
	}
	switch raw {
	case "true", "1":
		return true, true
	case "false", "0", "":
		return false, true
	default:
		return false, true
	}
}

func hasKey(entries []string, key string) bool {
	prefix := key + "="
	for _, entry := range entries {
		if strings.HasPrefix(entry, prefix) {
			return true
		}
	}
	return false
}
