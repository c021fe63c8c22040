package domain

// BookingStatus represents the commercial status of a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusOngoing   BookingStatus = "ongoing"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is the commercial reservation a ride journey belongs to. Only the
// fields the tracking pipeline reads are modelled here.
type Booking struct {
	ID         string
	CustomerID string
	BikeID     string
	Status     BookingStatus
}
