package apperrors

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrHallNotFound   = errors.New("hall not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrZoneNotFound   = errors.New("zone not found")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrOrderNotFound  = errors.New("order not found")
	ErrRefundNotFound = errors.New("refund request not found")

	ErrPermissionDenied      = errors.New("permission denied")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrOrderNotPending       = errors.New("order is not pending")
	ErrEmptyOrder            = errors.New("order has no tickets")
	ErrPaymentDeclined       = errors.New("payment declined")
	ErrRefundNotPending      = errors.New("refund request is not pending")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailTaken            = errors.New("email already registered")
	ErrDuplicateZone         = errors.New("duplicate zone type")
	ErrHallInUse             = errors.New("hall already hosts an event")
	ErrTicketNotOwned        = errors.New("ticket not owned by user")
	ErrInvalidInput          = errors.New("invalid input")
)
