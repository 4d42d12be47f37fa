package history

import (
	"errors"
	"fmt"
	"time"

	"hut-occupancy-backend/internal/hut"
)

var errFreeBedsMissing = errors.New("freeBeds missing")

// NormalizationError reports a single malformed upstream day record. It is
// recoverable: the caller skips the record and continues with the rest of the
// hut's batch.
type NormalizationError struct {
	Hut     string
	RawDate string
	Err     error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizing day %q for %s: %v", e.RawDate, e.Hut, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// Normalize maps one raw upstream day record into a canonical history row.
// Capacity falls back to FreeBeds when upstream omits totalSleepingPlaces and
// Status falls back to StatusServiced when upstream omits hutStatus. A record
// without freeBeds or with an unparseable date is malformed and yields a
// *NormalizationError. Normalize performs no I/O.
func Normalize(h hut.Descriptor, retrievedAt time.Time, raw RawDay) (Row, error) {
	if raw.FreeBeds == nil {
		return Row{}, &NormalizationError{Hut: h.Name, RawDate: raw.DateFormatted, Err: errFreeBedsMissing}
	}

	booking, err := ParseDate(raw.DateFormatted)
	if err != nil {
		return Row{}, &NormalizationError{Hut: h.Name, RawDate: raw.DateFormatted, Err: err}
	}

	capacity := *raw.FreeBeds
	if raw.TotalSleepingPlaces != nil {
		capacity = *raw.TotalSleepingPlaces
	}

	status := StatusServiced
	if raw.HutStatus != nil {
		status = *raw.HutStatus
	}

	return Row{
		RetrievedAt: DateOf(retrievedAt),
		Hut:         h.Name,
		BookingDate: booking,
		FreeBeds:    *raw.FreeBeds,
		Capacity:    capacity,
		Status:      status,
	}, nil
}
