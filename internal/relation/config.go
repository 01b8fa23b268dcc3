package relation

import (
	"os"
	"runtime"
	"strconv"
)

// Workers returns the default worker-goroutine count for parallel bulk
// operations: RELDB_WORKERS if set to a valid positive integer, else
// runtime.NumCPU(). A malformed value is ignored silently, falling back
// to the auto-detected count, matching the teacher's defensive env-var
// parsing in its asyncio worker-pool sizing.
func Workers() int {
	if v := os.Getenv("RELDB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}
