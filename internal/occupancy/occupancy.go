// Package occupancy derives presentation-ready occupancy figures from raw
// history rows. All functions are pure; they never touch the dataset.
package occupancy

import (
	"sort"
	"strings"
	"time"

	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/hut"
)

// Day is one booking date on the current availability board.
type Day struct {
	BookingDate  time.Time
	FreeBeds     int
	Capacity     int
	Status       string
	OnlineBooked int // Capacity - FreeBeds
	FixBooked    int // max(0, FixedCapacity - Capacity)
}

// Board is the latest availability snapshot of one hut. Closed days are
// excluded; Days is sorted by booking date.
type Board struct {
	Hut           string
	RetrievedAt   time.Time
	FixedCapacity int
	Days          []Day
}

// DayRange is the occupancy envelope of one booking date across every
// retrieval in the dataset.
type DayRange struct {
	BookingDate time.Time
	MinOccupied int
	MaxOccupied int
}

// Summary is the per-hut map marker state.
type Summary struct {
	Hut         hut.Descriptor
	FreeBeds    *int
	BookingDate *time.Time // the date FreeBeds refers to: today, or the next future date
	Stale       bool       // the hut has data, but none for today or later
}

func isClosed(status string) bool {
	return strings.EqualFold(status, history.StatusClosed)
}

func forHut(rows []history.Row, name string) []history.Row {
	var out []history.Row
	for _, r := range rows {
		if r.Hut == name {
			out = append(out, r)
		}
	}
	return out
}

func latestRetrieval(rows []history.Row) time.Time {
	var latest time.Time
	for _, r := range rows {
		if r.RetrievedAt.After(latest) {
			latest = r.RetrievedAt
		}
	}
	return latest
}

// BuildBoard derives the latest board for hut h. The snapshot date is the
// newest retrieval date over all of the hut's rows, including closed days;
// closed days are then dropped from the board itself. ok is false when the
// dataset holds no rows for the hut.
func BuildBoard(rows []history.Row, h hut.Descriptor) (Board, bool) {
	hutRows := forHut(rows, h.Name)
	if len(hutRows) == 0 {
		return Board{}, false
	}

	latest := latestRetrieval(hutRows)

	var snapshot []history.Row
	for _, r := range hutRows {
		if r.RetrievedAt.Equal(latest) && !isClosed(r.Status) {
			snapshot = append(snapshot, r)
		}
	}

	fixedCap := h.FixedCapacity
	if fixedCap <= 0 {
		// No registry value: take the largest capacity the hut reported in
		// the latest snapshot.
		for _, r := range snapshot {
			if r.Capacity > fixedCap {
				fixedCap = r.Capacity
			}
		}
	}

	days := make([]Day, 0, len(snapshot))
	for _, r := range snapshot {
		fixBooked := fixedCap - r.Capacity
		if fixBooked < 0 {
			fixBooked = 0
		}
		days = append(days, Day{
			BookingDate:  r.BookingDate,
			FreeBeds:     r.FreeBeds,
			Capacity:     r.Capacity,
			Status:       r.Status,
			OnlineBooked: r.Capacity - r.FreeBeds,
			FixBooked:    fixBooked,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].BookingDate.Before(days[j].BookingDate) })

	return Board{
		Hut:           h.Name,
		RetrievedAt:   latest,
		FixedCapacity: fixedCap,
		Days:          days,
	}, true
}

// BuildRange aggregates every non-closed observation of hut h by booking
// date. Occupied beds are counted against fixedCap, the value BuildBoard
// resolved for the hut. The result is sorted by booking date.
func BuildRange(rows []history.Row, h hut.Descriptor, fixedCap int) []DayRange {
	byDate := make(map[time.Time]*DayRange)
	for _, r := range forHut(rows, h.Name) {
		if isClosed(r.Status) {
			continue
		}
		occupied := fixedCap - r.FreeBeds
		dr, ok := byDate[r.BookingDate]
		if !ok {
			byDate[r.BookingDate] = &DayRange{BookingDate: r.BookingDate, MinOccupied: occupied, MaxOccupied: occupied}
			continue
		}
		if occupied < dr.MinOccupied {
			dr.MinOccupied = occupied
		}
		if occupied > dr.MaxOccupied {
			dr.MaxOccupied = occupied
		}
	}

	out := make([]DayRange, 0, len(byDate))
	for _, dr := range byDate {
		out = append(out, *dr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.Before(out[j].BookingDate) })
	return out
}

// Summarize derives one map marker per registered hut, in registry order.
// For each hut it picks, from the newest snapshot with usable rows, the free
// beds for today, or failing that for the next future booking date. Closed
// days never count as usable.
func Summarize(rows []history.Row, registry *hut.Registry, today time.Time) []Summary {
	today = history.DateOf(today)

	summaries := make([]Summary, 0, registry.Len())
	for _, h := range registry.All() {
		var usable []history.Row
		for _, r := range forHut(rows, h.Name) {
			if !isClosed(r.Status) {
				usable = append(usable, r)
			}
		}

		s := Summary{Hut: h}
		if len(usable) == 0 {
			summaries = append(summaries, s)
			continue
		}

		latest := latestRetrieval(usable)
		var snapshot []history.Row
		for _, r := range usable {
			if r.RetrievedAt.Equal(latest) {
				snapshot = append(snapshot, r)
			}
		}
		sort.Slice(snapshot, func(i, j int) bool {
			return snapshot[i].BookingDate.Before(snapshot[j].BookingDate)
		})

		var pick *history.Row
		for i := range snapshot {
			if snapshot[i].BookingDate.Equal(today) {
				pick = &snapshot[i]
				break
			}
		}
		if pick == nil {
			for i := range snapshot {
				if snapshot[i].BookingDate.After(today) {
					pick = &snapshot[i]
					break
				}
			}
		}

		if pick == nil {
			s.Stale = true
		} else {
			freeBeds := pick.FreeBeds
			bookingDate := pick.BookingDate
			s.FreeBeds = &freeBeds
			s.BookingDate = &bookingDate
		}
		summaries = append(summaries, s)
	}
	return summaries
}
