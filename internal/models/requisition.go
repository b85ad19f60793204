package models

import "time"

// Requisition statuses. An order moves pending -> in-progress -> ready ->
// collected; cancelled is terminal from any state.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusReady      = "ready"
	StatusCollected  = "collected"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusReady, StatusCollected, StatusCancelled:
		return true
	}
	return false
}

// Measurements holds the customer's body measurements in centimetres.
// Every field is optional: a tailor records only what the garment needs.
type Measurements struct {
	Chest             *float64 `json:"chest,omitempty"`
	Shoulders         *float64 `json:"shoulders,omitempty"`
	SleeveLengthLong  *float64 `json:"sleeve_length_long,omitempty"`
	SleeveLengthShort *float64 `json:"sleeve_length_short,omitempty"`
	TopLength         *float64 `json:"top_length,omitempty"`
	Neck              *float64 `json:"neck,omitempty"`
	Tommy             *float64 `json:"tommy,omitempty"`
	Hip               *float64 `json:"hip,omitempty"`
	Waist             *float64 `json:"waist,omitempty"`
	TrouserLength     *float64 `json:"trouser_length,omitempty"`
	Lap               *float64 `json:"lap,omitempty"`
	Base              *float64 `json:"base,omitempty"`
	AgbadaLength      *float64 `json:"agbada_length,omitempty"`
	AgbadaSleeve      *float64 `json:"agbada_sleeve,omitempty"`
}

// Requisition is a tailoring order: who it is for, the measurements taken
// and where it sits in the workshop pipeline.
type Requisition struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"-"`
	Reference   string `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Status      string `gorm:"size:16;index;not null;default:pending" json:"status"`

	ContactEmail string `gorm:"size:255" json:"contact_email,omitempty"`
	ContactPhone string `gorm:"size:15" json:"contact_phone,omitempty"`

	Measurements Measurements `gorm:"embedded;embeddedPrefix:m_" json:"measurements"`

	DueDate   *time.Time `gorm:"index" json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Notes []RequisitionNote `gorm:"constraint:OnDelete:CASCADE" json:"notes,omitempty"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// RequisitionNote is an append-only remark on an order (fitting feedback,
// fabric choices, collection reminders).
type RequisitionNote struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RequisitionID uint      `gorm:"index;not null" json:"-"`
	Text          string    `gorm:"size:500;not null" json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}
