// File: utils/constants.go
package utils

const (
	// AdminSessionPrefix prefixes admin session keys in the auth Redis DB.
	AdminSessionPrefix = "admin_session:"
	// AdminSessionCookie is the cookie carrying the admin session token.
	AdminSessionCookie = "admin_session"
	// ReservationPrefix prefixes slot hold keys in the cache Redis DB.
	ReservationPrefix = "reservation:"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
