package domain

import "time"

type MachineType string

const (
	MachineWasher MachineType = "washer"
	MachineDryer  MachineType = "dryer"
)

func (t MachineType) Valid() bool {
	return t == MachineWasher || t == MachineDryer
}

type MachineStatus string

const (
	// MachineAvailable and MachineReserved form a best-effort cache of the
	// reservation table. Conflict detection never reads this field; the
	// reservations table is authoritative.
	MachineAvailable    MachineStatus = "available"
	MachineReserved     MachineStatus = "reserved"
	MachineOutOfService MachineStatus = "out_of_service"
)

type Machine struct {
	ID             int64         `json:"id" gorm:"primaryKey"`
	Code           string        `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Type           MachineType   `json:"type" gorm:"size:32;not null;index"`
	Status         MachineStatus `json:"status" gorm:"size:32;not null;default:available"`
	IsActive       bool          `json:"is_active" gorm:"not null;default:true"`
	BookingEnabled bool          `json:"booking_enabled" gorm:"not null;default:true"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Bookable reports whether new reservations may reference this machine.
func (m *Machine) Bookable() bool {
	return m.IsActive && m.BookingEnabled && m.Status != MachineOutOfService
}
