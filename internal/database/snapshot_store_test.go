package database

import (
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railtransit/reservation-engine/internal/models"
)

func newMockSnapshotStore(t *testing.T) (*SnapshotStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewSnapshotStore(sqlx.NewDb(db, "sqlmock"), logger), mock
}

func TestSnapshotStore_Save(t *testing.T) {
	store, mock := newMockSnapshotStore(t)

	snapshot := models.Snapshot{
		Services: []models.ServiceState{
			{
				Descriptor: models.ServiceDescriptor{
					ID: "ET001", Name: "Fast Express", Kind: models.ServiceKindExpress,
					Origin: "CityA", Destination: "CityB", Capacity: 10, BaseFare: 55.00, HasPantry: true,
				},
				Calendar: map[string]int{"01/01/2030": 7},
			},
		},
		Bookings: []models.Booking{
			{
				PNR: "100000000001", ServiceID: "ET001", TravelDate: "01/01/2030",
				Passengers: []models.Passenger{{Name: "Asha", Age: 30, Gender: "F"}},
				TotalFare:  55.00, Status: models.BookingStatusConfirmed,
			},
		},
		PNRCounter: 100000000001,
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_calendar").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM bookings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO services").
		WithArgs("ET001", "Fast Express", models.ServiceKindExpress, "CityA", "CityB", 10, 55.00, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO seat_calendar").
		WithArgs("ET001", "01/01/2030", 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs("100000000001", "ET001", "01/01/2030", 55.00, models.BookingStatusConfirmed,
			[]byte(`[{"name":"Asha","age":30,"gender":"F"}]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO pnr_counter").
		WithArgs(int64(100000000001)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(snapshot))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_Save_RollsBackOnFailure(t *testing.T) {
	store, mock := newMockSnapshotStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_calendar").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.Save(models.Snapshot{})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_Load(t *testing.T) {
	store, mock := newMockSnapshotStore(t)

	mock.ExpectQuery("SELECT id, name, kind, origin, destination, capacity, base_fare, has_pantry").
		WillReturnRows(sqlmock.NewRows(serviceColumns()).
			AddRow("ET001", "Fast Express", "express", "CityA", "CityB", 10, 55.00, true))
	mock.ExpectQuery("SELECT travel_date, available_seats").
		WithArgs("ET001").
		WillReturnRows(sqlmock.NewRows([]string{"travel_date", "available_seats"}).
			AddRow("01/01/2030", 7))
	mock.ExpectQuery("SELECT pnr, service_id, travel_date, total_fare, status, passengers").
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow("100000000001", "ET001", "01/01/2030", 55.00, "Confirmed",
				[]byte(`[{"name":"Asha","age":30,"gender":"F"}]`)))
	mock.ExpectQuery("SELECT value FROM pnr_counter").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(100000000001)))

	snapshot, err := store.Load()
	require.NoError(t, err)

	require.Len(t, snapshot.Services, 1)
	assert.Equal(t, "ET001", snapshot.Services[0].Descriptor.ID)
	assert.Equal(t, map[string]int{"01/01/2030": 7}, snapshot.Services[0].Calendar)
	require.Len(t, snapshot.Bookings, 1)
	assert.Equal(t, models.BookingStatusConfirmed, snapshot.Bookings[0].Status)
	assert.Equal(t, uint64(100000000001), snapshot.PNRCounter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotStore_Load_SkipsUnreadableBookingRows(t *testing.T) {
	store, mock := newMockSnapshotStore(t)

	mock.ExpectQuery("SELECT id, name, kind, origin, destination, capacity, base_fare, has_pantry").
		WillReturnRows(sqlmock.NewRows(serviceColumns()))
	mock.ExpectQuery("SELECT pnr, service_id, travel_date, total_fare, status, passengers").
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow("100000000001", "ET001", "01/01/2030", 55.00, "Confirmed", []byte(`broken`)).
			AddRow("100000000002", "ET001", "01/01/2030", 55.00, "Waitlist",
				[]byte(`[{"name":"Ravi","age":40,"gender":"M"}]`)))
	mock.ExpectQuery("SELECT value FROM pnr_counter").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(100000000002)))

	snapshot, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snapshot.Bookings, 1)
	assert.Equal(t, "100000000002", snapshot.Bookings[0].PNR)
	assert.NoError(t, mock.ExpectationsWereMet())
}
