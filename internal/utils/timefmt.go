package utils

import (
	"fmt"
	"time"
)

// tiddlerSecondLayout renders the second-resolution portion of a tiddler timestamp.
const tiddlerSecondLayout = "20060102150405"

// FormatTiddlerTimestamp renders value in UTC as the 17-character
// lexicographically sortable timestamp TiddlyWiki uses for created and
// modified fields (seconds followed by three millisecond digits).
func FormatTiddlerTimestamp(value time.Time) string {
	utcValue := value.UTC()
	return fmt.Sprintf("%s%03d", utcValue.Format(tiddlerSecondLayout), utcValue.Nanosecond()/int(time.Millisecond))
}
