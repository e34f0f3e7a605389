package enum

import (
	"database/sql/driver"
	"fmt"
)

// SpaceKind classifies a bookable space
type SpaceKind string

const (
	SpaceKindDesk          SpaceKind = "DESK"
	SpaceKindPrivateOffice SpaceKind = "PRIVATE_OFFICE"
	SpaceKindMeetingRoom   SpaceKind = "MEETING_ROOM"
)

func (k SpaceKind) IsValid() bool {
	return k == SpaceKindDesk || k == SpaceKindPrivateOffice || k == SpaceKindMeetingRoom
}

func (k SpaceKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *SpaceKind) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*k = SpaceKindDesk
	case string:
		*k = SpaceKind(v)
	case []byte:
		*k = SpaceKind(v)
	default:
		return fmt.Errorf("cannot scan %T into SpaceKind", value)
	}
	return nil
}

// BookingStatus represents the state of a space booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *BookingStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = BookingStatusConfirmed
	case string:
		*s = BookingStatus(v)
	case []byte:
		*s = BookingStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into BookingStatus", value)
	}
	return nil
}
