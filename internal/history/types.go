package history

import "time"

// RawDay is a single per-day availability record as returned by the upstream
// reservation API. Optional upstream fields are pointers so that absence is
// distinguishable from a zero value.
type RawDay struct {
	DateFormatted       string  `json:"dateFormatted"`
	FreeBeds            *int    `json:"freeBeds"`
	TotalSleepingPlaces *int    `json:"totalSleepingPlaces"`
	HutStatus           *string `json:"hutStatus"`
}

// Row is the canonical persisted unit of the history dataset. One row states
// how many beds of a hut were free for one booking date, as seen on one
// retrieval date. Repeated polls produce multiple rows per booking date;
// consumers pick the latest retrieval date for current state.
type Row struct {
	RetrievedAt time.Time // Abrufdatum: the day the poll ran
	Hut         string    // Huette: display name from the registry
	BookingDate time.Time // Buchungsdatum: the day being reported on
	FreeBeds    int       // FreiePlaetze
	Capacity    int       // Kapazität: falls back to FreeBeds when upstream omits it
	Status      string    // never empty; defaults to StatusServiced
}

// Hut status values seen upstream. Anything else is passed through verbatim.
const (
	StatusServiced = "SERVICED"
	StatusClosed   = "CLOSED"
)

// dateLayout is the day-first format used for both dataset columns.
const dateLayout = "02-01-2006"

// legacyHut is the only hut that was tracked before multi-hut support.
// Datasets written back then lack the Huette column and are backfilled with
// this exact name during migration.
const legacyHut = "Franz Senn Hütte"

// Dataset column names, in canonical header order.
const (
	colRetrieved = "Abrufdatum"
	colHut       = "Huette"
	colBooking   = "Buchungsdatum"
	colFreeBeds  = "FreiePlaetze"
	colCapacity  = "Kapazität"
	colStatus    = "Status"
)

func canonicalHeader() []string {
	return []string{colRetrieved, colHut, colBooking, colFreeBeds, colCapacity, colStatus}
}

// ParseDate parses a dataset date (day-first, dash-separated, e.g. 05-03-2025).
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders a date the way the dataset stores it.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DateOf truncates t to its calendar date, normalized to UTC midnight. Rows
// built from it round-trip exactly through the dataset's date format.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
