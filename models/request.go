package models

import "time"

type RequestStatus string

const (
	RequestStatusPending          RequestStatus = "pending"
	RequestStatusBroadcasted      RequestStatus = "broadcasted"
	RequestStatusAccepted         RequestStatus = "accepted"
	RequestStatusOnTheWay         RequestStatus = "on_the_way"
	RequestStatusAwaitingApproval RequestStatus = "awaiting_approval"
	RequestStatusApproved         RequestStatus = "approved"
	RequestStatusInProgress       RequestStatus = "in_progress"
	RequestStatusCompleted        RequestStatus = "completed"
	RequestStatusCancelled        RequestStatus = "cancelled"
)

// IsTerminal reports whether no further status mutation is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

type PreferredSlot string

const (
	SlotMorning   PreferredSlot = "Morning (9 AM - 12 PM)"
	SlotAfternoon PreferredSlot = "Afternoon (12 PM - 3 PM)"
	SlotEvening   PreferredSlot = "Evening (5 PM - 7 PM)"
	SlotNight     PreferredSlot = "Night (7 PM - 9 PM)"
)

type SubscriptionPlan string

const (
	PlanBasic      SubscriptionPlan = "basic"
	PlanGold       SubscriptionPlan = "gold"
	PlanPremium    SubscriptionPlan = "premium"
	PlanPremiumPro SubscriptionPlan = "premium_pro"
)

// ActiveAssignmentStatuses are the statuses during which a technician is
// bound to a request. Used for slot-conflict checks and the technicianID
// invariant (non-empty iff status is in this set or completed).
var ActiveAssignmentStatuses = []RequestStatus{
	RequestStatusAccepted,
	RequestStatusOnTheWay,
	RequestStatusAwaitingApproval,
	RequestStatusApproved,
	RequestStatusInProgress,
}

// ServiceRequest is one repair job walking the dispatch pipeline.
//
// BroadcastedTo is fixed at creation and acts as the authorization list for
// who may accept. TechnicianID stays empty while the request is pending or
// broadcasted; a technician-initiated re-broadcast clears it again.
type ServiceRequest struct {
	RequestID     string   `json:"requestID" dynamodbav:"requestID" validate:"omitempty,uuid4"`
	UserID        string   `json:"userID" dynamodbav:"userID" validate:"required"`
	ApplianceID   string   `json:"applianceID" dynamodbav:"applianceID" validate:"required"`
	TechnicianID  string   `json:"technicianID,omitempty" dynamodbav:"technicianID,omitempty"`
	BroadcastedTo []string `json:"broadcastedTo" dynamodbav:"broadcastedTo"`

	Location       *GeoPoint `json:"location,omitempty" dynamodbav:"location,omitempty"`
	AddressDetails *Address  `json:"addressDetails,omitempty" dynamodbav:"addressDetails,omitempty"`

	IssueDesc     string        `json:"issueDesc" dynamodbav:"issueDesc" validate:"required,min=5,max=1000"`
	Images        []string      `json:"images,omitempty" dynamodbav:"images,omitempty"`
	PreferredSlot PreferredSlot `json:"preferredSlot" dynamodbav:"preferredSlot"`
	ScheduledDate string        `json:"scheduledDate" dynamodbav:"scheduledDate"`

	Status RequestStatus `json:"status" dynamodbav:"status"`

	VisitFeePaid         bool `json:"visitFeePaid" dynamodbav:"visitFeePaid"`
	UsedFreeVisit        bool `json:"usedFreeVisit" dynamodbav:"usedFreeVisit"`
	VisitFeeAmount       int  `json:"visitFeeAmount" dynamodbav:"visitFeeAmount"`
	TechnicianVisitShare int  `json:"technicianVisitShare" dynamodbav:"technicianVisitShare"`
	PlatformVisitShare   int  `json:"platformVisitShare" dynamodbav:"platformVisitShare"`

	EstimatedServiceCost int `json:"estimatedServiceCost" dynamodbav:"estimatedServiceCost"`
	DiscountApplied      int `json:"discountApplied" dynamodbav:"discountApplied"`

	CompletionOTP string `json:"-" dynamodbav:"completionOTP,omitempty"`
	OTPVerified   bool   `json:"otpVerified" dynamodbav:"otpVerified"`

	SubscriptionPlan SubscriptionPlan `json:"subscriptionPlan" dynamodbav:"subscriptionPlan"`
	PriorityLevel    int              `json:"priorityLevel" dynamodbav:"priorityLevel"`

	AcceptedAt  *time.Time `json:"acceptedAt,omitempty" dynamodbav:"acceptedAt,omitempty"`
	OnTheWayAt  *time.Time `json:"onTheWayAt,omitempty" dynamodbav:"onTheWayAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty" dynamodbav:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" dynamodbav:"updatedAt"`
}

// CreateRequestRequest is the intake payload for a new service request.
type CreateRequestRequest struct {
	ApplianceID    string        `json:"applianceID" validate:"required"`
	IssueDesc      string        `json:"issueDesc" validate:"required,min=5,max=1000"`
	Images         []string      `json:"images,omitempty"`
	PreferredSlot  PreferredSlot `json:"preferredSlot" validate:"omitempty,oneof='Morning (9 AM - 12 PM)' 'Afternoon (12 PM - 3 PM)' 'Evening (5 PM - 7 PM)' 'Night (7 PM - 9 PM)'"`
	ScheduledDate  string        `json:"scheduledDate,omitempty"`
	Latitude       float64       `json:"latitude,omitempty"`
	Longitude      float64       `json:"longitude,omitempty"`
	AddressDetails *Address      `json:"addressDetails,omitempty"`
}

// CreateRequestResponse carries the persisted request plus the candidate
// count so callers can react to an unmatched (pending) request.
type CreateRequestResponse struct {
	Request          *ServiceRequest `json:"request"`
	TechniciansFound int             `json:"techniciansFound"`
	UsedFreeVisit    bool            `json:"usedFreeVisit"`
}

type SubmitEstimateRequest struct {
	EstimatedServiceCost int `json:"estimatedServiceCost" validate:"required,gt=0"`
}

type VerifyOTPRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}
