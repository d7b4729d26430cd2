package order

import (
	"fmt"
	"strings"
)

// String implements the stringer interface
func (t Type) String() string {
	return string(t)
}

// Equals compares two order types ignoring case
func (t Type) Equals(other Type) bool {
	return strings.EqualFold(string(t), string(other))
}

// IsValid returns whether the type is a defined order type
func (t Type) IsValid() bool {
	return t == Limit || t == Market
}

// String implements the stringer interface
func (s Side) String() string {
	return string(s)
}

// Equals compares two order sides ignoring case
func (s Side) Equals(other Side) bool {
	return strings.EqualFold(string(s), string(other))
}

// IsValid returns whether the side is a defined order side
func (s Side) IsValid() bool {
	return s == Buy || s == Sell
}

// String implements the stringer interface
func (s Status) String() string {
	return string(s)
}

// Equals compares two order statuses ignoring case
func (s Status) Equals(other Status) bool {
	return strings.EqualFold(string(s), string(other))
}

// IsValid returns whether the status is a defined order status
func (s Status) IsValid() bool {
	switch s {
	case Pending, Success, Closed, Canceled, Failed:
		return true
	}
	return false
}

// StringToOrderType for converting case insensitive order type
// and returning a real Type
func StringToOrderType(oType string) (Type, error) {
	switch {
	case strings.EqualFold(oType, Limit.String()):
		return Limit, nil
	case strings.EqualFold(oType, Market.String()):
		return Market, nil
	default:
		return UnknownType, fmt.Errorf("%w: %w %q", ErrOperational, ErrInvalidType, oType)
	}
}

// StringToOrderSide for converting case insensitive order side
// and returning a real Side
func StringToOrderSide(side string) (Side, error) {
	switch {
	case strings.EqualFold(side, Buy.String()):
		return Buy, nil
	case strings.EqualFold(side, Sell.String()):
		return Sell, nil
	default:
		return UnknownSide, fmt.Errorf("%w: %w %q", ErrOperational, ErrInvalidSide, side)
	}
}

// StringToOrderStatus for converting case insensitive order status
// and returning a real Status
func StringToOrderStatus(status string) (Status, error) {
	switch {
	case strings.EqualFold(status, Pending.String()):
		return Pending, nil
	case strings.EqualFold(status, Success.String()):
		return Success, nil
	case strings.EqualFold(status, Closed.String()):
		return Closed, nil
	case strings.EqualFold(status, Canceled.String()),
		strings.EqualFold(status, "CANCELLED"):
		return Canceled, nil
	case strings.EqualFold(status, Failed.String()):
		return Failed, nil
	default:
		return UnknownStatus, fmt.Errorf("%w: %w %q", ErrOperational, ErrInvalidStatus, status)
	}
}
