package models

const (
	SlotAvailable = "Available"
	SlotFull      = "Full"
)

type SlotAvailability struct {
	Time      string `json:"time"`
	Booked    int    `json:"booked"`
	Available int    `json:"available"`
	Status    string `json:"status"`
}

type DayAvailability struct {
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

type AvailabilityResponse struct {
	Clinic         *Clinic           `json:"clinic"`
	AvailableDates []DayAvailability `json:"availableDates"`
}

// SlotReservation is a short-lived hold on one unit of slot capacity.
type SlotReservation struct {
	Token     string `json:"token"`
	Clinic    string `json:"clinic"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	ExpiresIn int    `json:"expiresInSeconds"`
}
