package checkpointer

import (
	"fmt"
	"time"
)

// FilenameEnumerator returns a function which returns filenames with
// a counter suffix, starting at start+1. Each call to the returned
// function increments the counter.
//
// For example, FilenameEnumerator(0, "policy", ".bin") produces
// policy1.bin, policy2.bin, and so on.
func FilenameEnumerator(start int, filename, extension string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v%v%v", filename, i, extension)
	}
}

// FileTimer returns a function which returns filenames suffixed by the
// number of nanoseconds since January 1, 1970
func FileTimer(filename, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%v%v", filename, time.Now().UnixNano(),
			extension)
	}
}
