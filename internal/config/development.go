package config

import "os"

func Development() bool {
	return flagEnv("DEVELOPMENT", false)
}

// flagEnv treats any value but "0", "false" and "" as set.
func flagEnv(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch v {
	case "", "0", "false", "FALSE", "False":
		return false
	default:
		return true
	}
}
