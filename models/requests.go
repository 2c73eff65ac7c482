package models

// ChangeSessionInfoRequest drives reschedule, complete and cancel from the admin dashboard.
type ChangeSessionInfoRequest struct {
	ID            string `json:"_id" binding:"required"`
	SessionNumber int    `json:"sessionNumber" binding:"required"`
	Status        string `json:"status"`
	IsReschedule  bool   `json:"isReschedule"`
	NewDate       string `json:"new_date"`
	NewTime       string `json:"new_time"`
	Reason        string `json:"reason"`
}

type AddNextSessionRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	NewDate   string `json:"new_date" binding:"required"`
	NewTime   string `json:"new_time" binding:"required"`
}

type ChangeSessionStatusRequest struct {
	BookingID     string `json:"bookingId"`
	SessionNumber int    `json:"sessionNumber" binding:"required"`
	NewStatus     string `json:"newStatus" binding:"required"`
	Reason        string `json:"reason"`
}

type DeleteSessionRequest struct {
	BookingID     string `json:"bookingId" binding:"required"`
	SessionNumber int    `json:"sessionNumber" binding:"required"`
}

// PrescriptionUpload is the parsed multipart form of a prescription upsert.
type PrescriptionUpload struct {
	BookingID        string
	SessionNumber    int
	PrescriptionType string
	LocalFilePath    string
}

type SessionSlot struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type CreateBookingRequest struct {
	Service          string      `json:"service" binding:"required"`
	Clinic           string      `json:"clinic" binding:"required"`
	Doctor           string      `json:"doctor"`
	NoOfSessionBook  int         `json:"no_of_session_book" binding:"required"`
	TotalAmount      float64     `json:"totalAmount"`
	PaymentIntentID  string      `json:"paymentIntentId" binding:"required"`
	FirstSession     SessionSlot `json:"firstSession" binding:"required"`
	ReservationToken string      `json:"reservationToken"`
}

type ReserveSlotRequest struct {
	Clinic string `json:"clinic" binding:"required"`
	Date   string `json:"date" binding:"required"`
	Time   string `json:"time" binding:"required"`
}

type CreateClinicRequest struct {
	Name          string         `json:"name" binding:"required"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone"`
	Timings       ClinicTimings  `json:"timings" binding:"required"`
	BookingWindow *BookingWindow `json:"booking_window"`
}

type UpdateBookingWindowRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type UpdateSettingsRequest struct {
	SlotsPerHour        int `json:"slots_per_hour" binding:"required"`
	BookingLimitPerSlot int `json:"booking_limit_per_slot" binding:"required"`
}

type SpecialRestrictionRequest struct {
	Date        string       `json:"date" binding:"required"`
	Clinic      string       `json:"clinic" binding:"required"`
	TimeWindows []TimeWindow `json:"time_windows"`
	Active      *bool        `json:"active"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}
