// Package instance names the running process in logs.
package instance

import "os"

// GetID returns the platform dyno name, then the hostname, else "local".
func GetID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
