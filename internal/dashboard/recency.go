package dashboard

import (
	"fmt"
	"time"

	"github.com/2beens/fittrack/pkg"
)

const NotYetLogged = "Not yet logged."

// RecencyLabel describes how long ago the last workout was.
// Dates after today are labeled as today.
func RecencyLabel(last *time.Time, today time.Time) string {
	if last == nil {
		return NotYetLogged
	}

	diff := max(pkg.DaysBetween(*last, today), 0)
	switch diff {
	case 0:
		return "Today"
	case 1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", diff)
	}
}
