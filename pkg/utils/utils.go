package utils

import (
	"fmt"
)

// FailOnError terminates the process when err is set. Only mains call it.
func FailOnError(format string, err error, v ...any) {
	if err != nil {
		logger.Fatalf("%s: %v", fmt.Sprintf(format, v...), err)
	}
}
