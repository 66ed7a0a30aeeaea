package sudoadapter

import (
	"os"
	"os/user"
	"strconv"
)

const unknownPrincipal = "unknown"

// resolvePrincipal implements the documented preference order: the `user=`
// entry from user_info[], else SUDO_USER, else a password-database lookup
// of the real user id, else the literal "unknown".
func resolvePrincipal(userInfo []string) string {
	if u := settingValue(userInfo, "user"); u != "" {
		return u
	}
	if u := os.Getenv("SUDO_USER"); u != "" {
		return u
	}
	if u, ok := lookupRealUser(); ok {
		return u
	}
	return unknownPrincipal
}

func lookupRealUser() (string, bool) {
	u, err := user.LookupId(strconv.Itoa(os.Getuid()))
	if err != nil || u.Username == "" {
		return "", false
	}
	return u.Username, true
}
