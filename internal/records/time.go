package records

import "time"

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// SessionFileName returns the file name of a session held on date.
// The day is taken in UTC so the name does not depend on the host zone.
func SessionFileName(date time.Time) string {
	return "sessao_" + date.UTC().Format("2006-01-02") + ".json"
}
