package models

import "time"

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

type TransactionCategory string

const (
	CategoryVisitFeePayment      TransactionCategory = "visit_fee_payment"
	CategorySubscriptionPurchase TransactionCategory = "subscription_purchase"
	CategoryVisitFeeRefund       TransactionCategory = "visit_fee_refund"
	CategoryTechnicianPayout     TransactionCategory = "technician_payout"
	CategoryPenaltyDeduction     TransactionCategory = "penalty_deduction"
	CategoryServicePayment       TransactionCategory = "service_payment"
	CategoryWalletTopup          TransactionCategory = "wallet_topup"
)

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
	TransactionPending TransactionStatus = "pending"
)

// Transaction is an append-only ledger entry; the system of record for all
// financial reporting. Never mutated or deleted.
type Transaction struct {
	TransactionID    string              `json:"transactionID" dynamodbav:"transactionID"`
	UserID           string              `json:"userID,omitempty" dynamodbav:"userID,omitempty"`
	TechnicianID     string              `json:"technicianID,omitempty" dynamodbav:"technicianID,omitempty"`
	Amount           int                 `json:"amount" dynamodbav:"amount" validate:"required,gt=0"`
	Type             TransactionType     `json:"type" dynamodbav:"type" validate:"required,oneof=credit debit"`
	Category         TransactionCategory `json:"category" dynamodbav:"category" validate:"required"`
	Description      string              `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Status           TransactionStatus   `json:"status" dynamodbav:"status"`
	RelatedRequestID string              `json:"relatedRequestID,omitempty" dynamodbav:"relatedRequestID,omitempty"`
	CreatedAt        time.Time           `json:"createdAt" dynamodbav:"createdAt"`
}
