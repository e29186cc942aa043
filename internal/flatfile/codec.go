package flatfile

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/railtransit/reservation-engine/internal/models"
)

// Legacy line layout, preserved bit-for-bit:
//
//	booking:   pnr|serviceId|date|fare|status|passengerCount|passengerData
//	passenger: name|age|gender, passengers joined by '&'
//	service:   KIND|id|name|origin|destination|capacity|fare|pantry|seatMap
//	seat map:  N:date|seats;date|seats; (count-prefixed, ';'-terminated)
//
// Fares carry six decimal places, matching the legacy writer.
const (
	fieldSep     = "|"
	passengerSep = "&"
	calendarSep  = ";"
)

// ErrCorruptedRecord indicates a persisted line that fails to parse. Loads
// skip such lines individually and continue.
var ErrCorruptedRecord = errors.New("corrupted record")

func formatFare(fare float64) string {
	return strconv.FormatFloat(fare, 'f', 6, 64)
}

// EncodeBooking renders a booking as a single persisted line.
func EncodeBooking(b models.Booking) string {
	passengers := make([]string, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		passengers = append(passengers, strings.Join([]string{
			p.Name, strconv.Itoa(p.Age), p.Gender,
		}, fieldSep))
	}
	return strings.Join([]string{
		b.PNR,
		b.ServiceID,
		b.TravelDate,
		formatFare(b.TotalFare),
		string(b.Status),
		strconv.Itoa(len(b.Passengers)),
		strings.Join(passengers, passengerSep),
	}, fieldSep)
}

// DecodeBooking parses a persisted booking line.
func DecodeBooking(line string) (models.Booking, error) {
	parts := strings.SplitN(line, fieldSep, 7)
	if len(parts) < 7 {
		return models.Booking{}, fmt.Errorf("booking line has %d fields: %w", len(parts), ErrCorruptedRecord)
	}

	fare, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking %s fare: %w", parts[0], ErrCorruptedRecord)
	}
	status := models.BookingStatus(parts[4])
	if !status.IsValid() {
		return models.Booking{}, fmt.Errorf("booking %s status %q: %w", parts[0], parts[4], ErrCorruptedRecord)
	}
	count, err := strconv.Atoi(parts[5])
	if err != nil || count < 0 {
		return models.Booking{}, fmt.Errorf("booking %s passenger count: %w", parts[0], ErrCorruptedRecord)
	}

	booking := models.Booking{
		PNR:        parts[0],
		ServiceID:  parts[1],
		TravelDate: parts[2],
		TotalFare:  fare,
		Status:     status,
	}

	if count > 0 {
		records := strings.Split(parts[6], passengerSep)
		if len(records) < count {
			count = len(records)
		}
		for _, record := range records[:count] {
			fields := strings.Split(record, fieldSep)
			if len(fields) != 3 {
				return models.Booking{}, fmt.Errorf("booking %s passenger record: %w", parts[0], ErrCorruptedRecord)
			}
			age, err := strconv.Atoi(fields[1])
			if err != nil {
				return models.Booking{}, fmt.Errorf("booking %s passenger age: %w", parts[0], ErrCorruptedRecord)
			}
			booking.Passengers = append(booking.Passengers, models.Passenger{
				Name:   fields[0],
				Age:    age,
				Gender: fields[2],
			})
		}
	}
	return booking, nil
}

// EncodeService renders a service descriptor with its seat calendar as a
// single persisted line.
func EncodeService(state models.ServiceState) string {
	svc := state.Descriptor
	pantry := "0"
	if svc.HasPantry {
		pantry = "1"
	}
	return strings.Join([]string{
		strings.ToUpper(string(svc.Kind)),
		svc.ID,
		svc.Name,
		svc.Origin,
		svc.Destination,
		strconv.Itoa(svc.Capacity),
		formatFare(svc.BaseFare),
		pantry,
		encodeCalendar(state.Calendar),
	}, fieldSep)
}

// DecodeService parses a persisted service line.
func DecodeService(line string) (models.ServiceState, error) {
	parts := strings.SplitN(line, fieldSep, 9)
	if len(parts) < 9 {
		return models.ServiceState{}, fmt.Errorf("service line has %d fields: %w", len(parts), ErrCorruptedRecord)
	}

	kind := models.ServiceKind(strings.ToLower(parts[0]))
	if !kind.IsValid() {
		return models.ServiceState{}, fmt.Errorf("service %s kind %q: %w", parts[1], parts[0], ErrCorruptedRecord)
	}
	capacity, err := strconv.Atoi(parts[5])
	if err != nil || capacity <= 0 {
		return models.ServiceState{}, fmt.Errorf("service %s capacity: %w", parts[1], ErrCorruptedRecord)
	}
	fare, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return models.ServiceState{}, fmt.Errorf("service %s fare: %w", parts[1], ErrCorruptedRecord)
	}

	calendar, err := decodeCalendar(parts[8])
	if err != nil {
		return models.ServiceState{}, fmt.Errorf("service %s: %w", parts[1], err)
	}

	return models.ServiceState{
		Descriptor: models.ServiceDescriptor{
			ID:          parts[1],
			Name:        parts[2],
			Kind:        kind,
			Origin:      parts[3],
			Destination: parts[4],
			Capacity:    capacity,
			BaseFare:    fare,
			HasPantry:   parts[7] == "1",
		},
		Calendar: calendar,
	}, nil
}

// encodeCalendar renders the per-date availability as the legacy
// count-prefixed list. Dates are sorted so the encoding is deterministic.
func encodeCalendar(calendar map[string]int) string {
	dates := make([]string, 0, len(calendar))
	for date := range calendar {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(dates)))
	sb.WriteString(":")
	for _, date := range dates {
		sb.WriteString(date)
		sb.WriteString(fieldSep)
		sb.WriteString(strconv.Itoa(calendar[date]))
		sb.WriteString(calendarSep)
	}
	return sb.String()
}

func decodeCalendar(data string) (map[string]int, error) {
	countEnd := strings.Index(data, ":")
	if countEnd < 0 {
		return nil, fmt.Errorf("seat calendar missing count prefix: %w", ErrCorruptedRecord)
	}
	count, err := strconv.Atoi(data[:countEnd])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("seat calendar count: %w", ErrCorruptedRecord)
	}

	calendar := make(map[string]int, count)
	entries := strings.Split(data[countEnd+1:], calendarSep)
	for i := 0; i < count && i < len(entries); i++ {
		if entries[i] == "" {
			continue
		}
		fields := strings.Split(entries[i], fieldSep)
		if len(fields) != 2 {
			return nil, fmt.Errorf("seat calendar entry %q: %w", entries[i], ErrCorruptedRecord)
		}
		seats, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("seat calendar seats %q: %w", entries[i], ErrCorruptedRecord)
		}
		calendar[fields[0]] = seats
	}
	return calendar, nil
}
