package instance

import "os"

// GetID identifies this process in logs: MIRS_INSTANCE_ID, then the host
// name, then "local".
func GetID() string {
	if id := os.Getenv("MIRS_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
