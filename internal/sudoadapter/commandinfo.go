package sudoadapter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultPathList = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// CommandInfo is the freshly-allocated key=value array the sudo host
// consumes to execute the command. It is adapter-owned until the host
// releases it. Entries() appends a trailing empty string to mirror the
// null-terminated array the host-plugin ABI expects.
type CommandInfo struct {
	entries []string
}

// Entries returns the null-terminated key=value array.
func (c CommandInfo) Entries() []string {
	out := make([]string, len(c.entries)+1)
	copy(out, c.entries)
	return out
}

func newCommandInfo(command, cwd string) CommandInfo {
	return CommandInfo{entries: []string{
		"command=" + command,
		"runas_uid=0",
		"runas_gid=0",
		"cwd=" + cwd,
		"timeout=300",
	}}
}

// resolveCommandPath finds the absolute path of name. A name containing a
// slash is taken verbatim (relative or absolute) per spec's boundary case.
// Otherwise it scans envp's PATH entry, falling back to defaultPathList,
// and returns the first directory containing an executable of that name.
func resolveCommandPath(name string, envp []string) (string, error) {
	if strings.Contains(name, "/") {
		return name, nil
	}

	pathList := settingValue(envp, "PATH")
	if pathList == "" {
		pathList = defaultPathList
	}

	for _, dir := range strings.Split(pathList, ":") {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("command not found: %s", name)
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
