package config

import "os"

const DefaultPort = ":8080"

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

func Port() string {
	if port, ok := os.LookupEnv("APP_PORT"); ok && port != "" {
		return port
	}
	return DefaultPort
}

// LevelsDir is the export root for level files; they live in its
// JSON_LEVELS subdirectory.
func LevelsDir() string {
	if dir, ok := os.LookupEnv("LEVELS_DIR"); ok && dir != "" {
		return dir
	}
	return "."
}
