package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/hut"
)

var franzSenn = hut.Descriptor{Name: "Franz Senn Hütte", UpstreamID: 675, FixedCapacity: 130}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func row(hutName string, retrieved, booking time.Time, free, capacity int, status string) history.Row {
	return history.Row{
		RetrievedAt: retrieved,
		Hut:         hutName,
		BookingDate: booking,
		FreeBeds:    free,
		Capacity:    capacity,
		Status:      status,
	}
}

func TestBuildBoardUsesLatestSnapshot(t *testing.T) {
	r1 := day(2025, time.June, 1)
	r2 := day(2025, time.June, 2)
	rows := []history.Row{
		row("Franz Senn Hütte", r1, day(2025, time.July, 15), 10, 130, "SERVICED"),
		row("Franz Senn Hütte", r2, day(2025, time.July, 16), 2, 120, "SERVICED"),
		row("Franz Senn Hütte", r2, day(2025, time.July, 15), 4, 130, "SERVICED"),
		row("Regensburger Hütte", r2, day(2025, time.July, 15), 9, 85, "SERVICED"),
	}

	board, ok := BuildBoard(rows, franzSenn)
	require.True(t, ok)
	assert.Equal(t, "Franz Senn Hütte", board.Hut)
	assert.Equal(t, r2, board.RetrievedAt)
	assert.Equal(t, 130, board.FixedCapacity)

	require.Len(t, board.Days, 2)
	assert.Equal(t, day(2025, time.July, 15), board.Days[0].BookingDate)
	assert.Equal(t, day(2025, time.July, 16), board.Days[1].BookingDate)

	// 15-07: capacity 130, 4 free.
	assert.Equal(t, 126, board.Days[0].OnlineBooked)
	assert.Equal(t, 0, board.Days[0].FixBooked)
	// 16-07: capacity 120, 2 free, 10 beds withheld from online booking.
	assert.Equal(t, 118, board.Days[1].OnlineBooked)
	assert.Equal(t, 10, board.Days[1].FixBooked)
}

func TestBuildBoardDropsClosedDaysButKeepsSnapshotDate(t *testing.T) {
	r1 := day(2025, time.June, 1)
	r2 := day(2025, time.June, 2)
	rows := []history.Row{
		row("Franz Senn Hütte", r1, day(2025, time.July, 15), 10, 130, "SERVICED"),
		row("Franz Senn Hütte", r2, day(2025, time.July, 15), 0, 130, "CLOSED"),
		row("Franz Senn Hütte", r2, day(2025, time.July, 16), 0, 130, "closed"),
	}

	board, ok := BuildBoard(rows, franzSenn)
	require.True(t, ok)

	// The latest retrieval determines the snapshot even when every row in it
	// is closed; the board is then simply empty.
	assert.Equal(t, r2, board.RetrievedAt)
	assert.Empty(t, board.Days)
}

func TestBuildBoardFixedCapacityFallback(t *testing.T) {
	unknown := hut.Descriptor{Name: "Neue Hütte", UpstreamID: 999}
	r1 := day(2025, time.June, 1)
	rows := []history.Row{
		row("Neue Hütte", r1, day(2025, time.July, 15), 4, 60, "SERVICED"),
		row("Neue Hütte", r1, day(2025, time.July, 16), 4, 75, "SERVICED"),
	}

	board, ok := BuildBoard(rows, unknown)
	require.True(t, ok)
	assert.Equal(t, 75, board.FixedCapacity)
	assert.Equal(t, 15, board.Days[0].FixBooked)
}

func TestBuildBoardNoRows(t *testing.T) {
	_, ok := BuildBoard(nil, franzSenn)
	assert.False(t, ok)

	_, ok = BuildBoard([]history.Row{
		row("Regensburger Hütte", day(2025, time.June, 1), day(2025, time.July, 15), 1, 85, "SERVICED"),
	}, franzSenn)
	assert.False(t, ok)
}

func TestBuildRange(t *testing.T) {
	r1 := day(2025, time.June, 1)
	r2 := day(2025, time.June, 2)
	r3 := day(2025, time.June, 3)
	booking := day(2025, time.July, 15)
	rows := []history.Row{
		row("Franz Senn Hütte", r1, booking, 40, 130, "SERVICED"),
		row("Franz Senn Hütte", r2, booking, 10, 130, "SERVICED"),
		row("Franz Senn Hütte", r3, booking, 25, 130, "SERVICED"),
		row("Franz Senn Hütte", r3, day(2025, time.July, 16), 0, 130, "CLOSED"),
		row("Franz Senn Hütte", r3, day(2025, time.July, 17), 130, 130, "SERVICED"),
		row("Starkenburger Hütte", r3, booking, 1, 90, "SERVICED"),
	}

	ranges := BuildRange(rows, franzSenn, 130)
	require.Len(t, ranges, 2)

	assert.Equal(t, booking, ranges[0].BookingDate)
	assert.Equal(t, 90, ranges[0].MinOccupied)
	assert.Equal(t, 120, ranges[0].MaxOccupied)

	assert.Equal(t, day(2025, time.July, 17), ranges[1].BookingDate)
	assert.Equal(t, 0, ranges[1].MinOccupied)
	assert.Equal(t, 0, ranges[1].MaxOccupied)
}

func TestSummarize(t *testing.T) {
	registry := hut.NewRegistry([]hut.Descriptor{
		{Name: "Franz Senn Hütte", UpstreamID: 675},
		{Name: "Regensburger Hütte", UpstreamID: 275},
		{Name: "Starkenburger Hütte", UpstreamID: 693},
		{Name: "Neue Hütte", UpstreamID: 999},
	})
	today := day(2025, time.July, 15)
	r1 := day(2025, time.June, 1)

	rows := []history.Row{
		// Franz Senn: has a row for today.
		row("Franz Senn Hütte", r1, day(2025, time.July, 14), 9, 130, "SERVICED"),
		row("Franz Senn Hütte", r1, today, 4, 130, "SERVICED"),
		// Regensburger: nothing for today, next future day wins.
		row("Regensburger Hütte", r1, day(2025, time.July, 18), 12, 85, "SERVICED"),
		row("Regensburger Hütte", r1, day(2025, time.July, 20), 3, 85, "SERVICED"),
		// Starkenburger: only past data.
		row("Starkenburger Hütte", r1, day(2025, time.July, 1), 5, 90, "SERVICED"),
		// Neue Hütte: no rows at all.
	}

	summaries := Summarize(rows, registry, today)
	require.Len(t, summaries, 4)

	require.NotNil(t, summaries[0].FreeBeds)
	assert.Equal(t, 4, *summaries[0].FreeBeds)
	assert.Equal(t, today, *summaries[0].BookingDate)

	require.NotNil(t, summaries[1].FreeBeds)
	assert.Equal(t, 12, *summaries[1].FreeBeds)
	assert.Equal(t, day(2025, time.July, 18), *summaries[1].BookingDate)

	assert.Nil(t, summaries[2].FreeBeds)
	assert.True(t, summaries[2].Stale)

	assert.Nil(t, summaries[3].FreeBeds)
	assert.False(t, summaries[3].Stale)
}

func TestSummarizeIgnoresClosedSnapshots(t *testing.T) {
	registry := hut.NewRegistry([]hut.Descriptor{{Name: "Franz Senn Hütte", UpstreamID: 675}})
	today := day(2025, time.July, 15)
	r1 := day(2025, time.June, 1)
	r2 := day(2025, time.June, 2)

	rows := []history.Row{
		row("Franz Senn Hütte", r1, day(2025, time.July, 16), 8, 130, "SERVICED"),
		// The newest retrieval only saw closed days; the marker falls back to
		// the newest retrieval that has usable rows.
		row("Franz Senn Hütte", r2, day(2025, time.July, 16), 0, 130, "CLOSED"),
	}

	summaries := Summarize(rows, registry, today)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].FreeBeds)
	assert.Equal(t, 8, *summaries[0].FreeBeds)
	assert.Equal(t, day(2025, time.July, 16), *summaries[0].BookingDate)
}
