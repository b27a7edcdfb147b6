package config

import (
	"os"
	"strings"
)

// ParseEnvVars returns the process environment as a map.
func ParseEnvVars() map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}
