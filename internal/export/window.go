package export

import (
	"fmt"
	"time"
)

// Window is the half-open interval [Start, End) defining which orders are
// included in one export run.
type Window struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the window is a non-empty forward interval
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

// String renders the window for log and error context
func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// filenameStamp is the window-bound layout used in attachment filenames
const filenameStamp = "20060102_1504"

// Filename returns the attachment filename for the window, e.g.
// 20240701_1500_20240702_0900_orders.csv
func (w Window) Filename(ext string) string {
	return fmt.Sprintf("%s_%s_orders.%s", w.Start.Format(filenameStamp), w.End.Format(filenameStamp), ext)
}
