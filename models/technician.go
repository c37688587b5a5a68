package models

import "time"

type TechnicianStatus string

const (
	TechnicianStatusActive    TechnicianStatus = "active"
	TechnicianStatusBusy      TechnicianStatus = "busy"
	TechnicianStatusInactive  TechnicianStatus = "inactive"
	TechnicianStatusSuspended TechnicianStatus = "suspended"
)

type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "pending"
	VerificationSubmitted VerificationStatus = "submitted"
	VerificationApproved  VerificationStatus = "approved"
	VerificationRejected  VerificationStatus = "rejected"
)

// Technician is the availability snapshot the dispatch engine consumes.
// Account management owns the record; the engine only flips status and
// availability around travel and terminal outcomes, and moves wallet and
// loyalty balances during settlement.
type Technician struct {
	TechnicianID string   `json:"technicianID" dynamodbav:"technicianID"`
	Name         string   `json:"name" dynamodbav:"name"`
	Phone        string   `json:"phone" dynamodbav:"phone"`
	Email        string   `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Skills       []string `json:"skills,omitempty" dynamodbav:"skills,omitempty"`

	Status      TechnicianStatus `json:"status" dynamodbav:"status"`
	IsAvailable bool             `json:"isAvailable" dynamodbav:"isAvailable"`

	Location *GeoPoint `json:"location,omitempty" dynamodbav:"location,omitempty"`
	Pincode  string    `json:"pincode,omitempty" dynamodbav:"pincode,omitempty"`

	LoyaltyPoints  int        `json:"loyaltyPoints" dynamodbav:"loyaltyPoints"`
	WalletBalance  int        `json:"walletBalance" dynamodbav:"walletBalance"`
	SuspendedUntil *time.Time `json:"suspendedUntil,omitempty" dynamodbav:"suspendedUntil,omitempty"`
	CancelCount    int        `json:"cancelCount" dynamodbav:"cancelCount"`
	CompletedJobs  int        `json:"completedJobs" dynamodbav:"completedJobs"`

	Rating             float64            `json:"rating,omitempty" dynamodbav:"rating,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus" dynamodbav:"verificationStatus"`

	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// EligibleForBroadcast reports whether a technician may be offered new work.
// Busy technicians stay in the pool: holding a job at one slot does not block
// broadcasts for other slots.
func (t *Technician) EligibleForBroadcast() bool {
	return (t.Status == TechnicianStatusActive || t.Status == TechnicianStatusBusy) &&
		t.VerificationStatus == VerificationApproved
}
