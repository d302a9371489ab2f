package instance

import "os"

// ID names the running process in logs. DYNO wins over INSTANCE_ID so the
// platform-assigned name is used when present.
func ID() string {
	for _, key := range []string{"DYNO", "INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
