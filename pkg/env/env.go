package env

import "os"

// Get reads an environment variable, treating an empty value the same as an
// unset one, and falls back when neither is usable.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
