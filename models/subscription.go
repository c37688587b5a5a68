package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Subscription is the plan snapshot consumed at intake and adjusted during
// settlement. FreeVisitsUsed/TotalVisitsUsed move together: a free visit
// always counts as a visit.
type Subscription struct {
	SubscriptionID  string             `json:"subscriptionID" dynamodbav:"subscriptionID"`
	UserID          string             `json:"userID" dynamodbav:"userID" validate:"required"`
	Plan            SubscriptionPlan   `json:"plan" dynamodbav:"plan"`
	Status          SubscriptionStatus `json:"status" dynamodbav:"status"`
	StartDate       time.Time          `json:"startDate" dynamodbav:"startDate"`
	EndDate         time.Time          `json:"endDate" dynamodbav:"endDate"`
	FreeVisitsUsed  int                `json:"freeVisitsUsed" dynamodbav:"freeVisitsUsed"`
	TotalVisitsUsed int                `json:"totalVisitsUsed" dynamodbav:"totalVisitsUsed"`
	FreeVisitLimit  int                `json:"freeVisitLimit" dynamodbav:"freeVisitLimit"`
	CreatedAt       time.Time          `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" dynamodbav:"updatedAt"`
}

// IsCurrent reports whether the subscription is active as of now.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s != nil && s.Status == SubscriptionActive && s.EndDate.After(now)
}
