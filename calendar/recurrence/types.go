package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caltide/caltide/calendar/storage"
)

// Occurrence is one concrete instance of a (possibly recurring) event,
// materialized at read time and never persisted. Generated instances carry a
// synthesized ID (see InstanceID), ParentEventID pointing at the generating
// master and OriginalDate set to the undeviated occurrence instant.
// Pass-through events keep their stored fields as-is.
type Occurrence struct {
	storage.MasterEvent
}

// instanceIDSeparator splits a composite instance id into master id and
// occurrence timestamp. External callers rely on this exact delimiter to
// route edit/delete requests back to the correct master and date.
const instanceIDSeparator = "-recur-"

// InstanceID builds the composite id of a generated occurrence:
// <masterID>-recur-<unix millisecond timestamp>. The same master and instant
// always produce the same id, so repeated reads of an unchanged series are
// byte-identical.
func InstanceID(masterID string, at time.Time) string {
	return masterID + instanceIDSeparator + strconv.FormatInt(at.UnixMilli(), 10)
}

// ParseInstanceID splits a composite instance id back into the master event
// id and the occurrence instant.
func ParseInstanceID(id string) (masterID string, at time.Time, err error) {
	i := strings.LastIndex(id, instanceIDSeparator)
	if i < 0 {
		return "", time.Time{}, fmt.Errorf("not an instance id: %q", id)
	}
	masterID = id[:i]
	ms, err := strconv.ParseInt(id[i+len(instanceIDSeparator):], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bad instance timestamp in %q: %w", id, err)
	}
	if masterID == "" {
		return "", time.Time{}, fmt.Errorf("empty master id in %q", id)
	}
	return masterID, time.UnixMilli(ms).Local(), nil
}

// IsInstanceID reports whether id looks like a generated occurrence id.
func IsInstanceID(id string) bool {
	_, _, err := ParseInstanceID(id)
	return err == nil
}

// Options controls expansion behavior
type Options struct {
	// DefaultWindowMonths is the span of the implicit window used when the
	// caller asks for all occurrences without bounds.
	DefaultWindowMonths int
	// MaxIterations caps the generator loop per series. Reaching the cap
	// truncates the series silently; it is a safety valve, not an error.
	MaxIterations int
}

// DefaultOptions provides the defaults used by NewEngine.
var DefaultOptions = Options{
	DefaultWindowMonths: 6,
	MaxIterations:       500,
}
