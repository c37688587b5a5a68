package services

import (
	"context"
	"electrocare-backend/dal"
	"electrocare-backend/models"
	"electrocare-backend/repository"
	"electrocare-backend/utils/logger"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Settlement amounts are domain-fixed, taken from the pricing the platform
// operates with. They are not configuration.
const (
	VisitFeeAmount       = 200
	TechnicianVisitShare = 150
	PlatformVisitShare   = 50

	// Customer cancellation after the estimate: partial refund to the
	// customer, partial compensation to the technician. The platform keeps
	// the remaining 25.
	PartialRefundAmount    = 75
	PartialCompensation    = 100
	FreeVisitCompensation  = 75
	LoyaltyPenaltyPoints   = 15
	SuspensionFloorPoints  = 50
	SuspensionCooldownDays = 15
)

// SettlementPlan is the computed money movement for one transition. It is a
// pure value: tests assert on it directly, and Apply turns it into a single
// grouped write together with the status update.
type SettlementPlan struct {
	UserWalletDelta        int
	UserLoyaltyDelta       int
	TechnicianWalletDelta  int
	TechnicianLoyaltyDelta int

	// TechnicianAdds carries extra additive counters (cancelCount,
	// completedJobs) that ride in the same group.
	TechnicianAdds map[string]int

	// RestoreFreeVisit decrements both subscription counters by one,
	// undoing the consumption recorded at intake.
	RestoreFreeVisit bool

	SuspendTechnician bool
	SuspendedUntil    *time.Time

	// TechnicianSets carries non-monetary technician fields that must move
	// with the group (status/availability flips on terminal outcomes).
	TechnicianSets map[string]interface{}

	Transactions []*models.Transaction
}

// IsZero reports whether the plan moves no money and flips no state.
func (p *SettlementPlan) IsZero() bool {
	return p.UserWalletDelta == 0 && p.UserLoyaltyDelta == 0 &&
		p.TechnicianWalletDelta == 0 && p.TechnicianLoyaltyDelta == 0 &&
		!p.RestoreFreeVisit && !p.SuspendTechnician &&
		len(p.TechnicianAdds) == 0 && len(p.TechnicianSets) == 0 &&
		len(p.Transactions) == 0
}

// SettlementService computes and applies the financial consequences of
// status transitions. Every branch writes its paired transaction records in
// the same grouped write as the status flip and the balance moves: either
// everything commits or the transition is reported as failed.
type SettlementService struct {
	db               dal.DatabaseClientInterface
	requestRepo      repository.RequestRepositoryInterface
	userRepo         repository.UserRepositoryInterface
	technicianRepo   repository.TechnicianRepositoryInterface
	subscriptionRepo repository.SubscriptionRepositoryInterface
	transactionRepo  repository.TransactionRepositoryInterface
	logger           logger.Logger
}

func NewSettlementService(
	db dal.DatabaseClientInterface,
	requestRepo repository.RequestRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	technicianRepo repository.TechnicianRepositoryInterface,
	subscriptionRepo repository.SubscriptionRepositoryInterface,
	transactionRepo repository.TransactionRepositoryInterface,
	log logger.Logger,
) *SettlementService {
	return &SettlementService{
		db:               db,
		requestRepo:      requestRepo,
		userRepo:         userRepo,
		technicianRepo:   technicianRepo,
		subscriptionRepo: subscriptionRepo,
		transactionRepo:  transactionRepo,
		logger:           log,
	}
}

// PlanCustomerCancel computes the settlement for a customer-initiated
// cancellation, branching on the request's prior status.
func (s *SettlementService) PlanCustomerCancel(req *models.ServiceRequest) *SettlementPlan {
	plan := &SettlementPlan{}

	switch req.Status {
	case models.RequestStatusPending, models.RequestStatusBroadcasted, models.RequestStatusAccepted:
		// Before travel: undo whatever was taken at intake, nothing for the
		// technician.
		if req.UsedFreeVisit {
			plan.RestoreFreeVisit = true
		} else if req.VisitFeePaid {
			plan.UserWalletDelta = VisitFeeAmount
			plan.Transactions = append(plan.Transactions, &models.Transaction{
				UserID:           req.UserID,
				Amount:           VisitFeeAmount,
				Type:             models.TransactionCredit,
				Category:         models.CategoryVisitFeeRefund,
				Description:      "Full refund for cancellation (before technician arrival)",
				RelatedRequestID: req.RequestID,
			})
		}

	case models.RequestStatusOnTheWay:
		// Cancelling under a travelling technician costs loyalty points and
		// forfeits the fee.
		plan.UserLoyaltyDelta = -LoyaltyPenaltyPoints
		if req.UsedFreeVisit {
			plan.RestoreFreeVisit = true
			if req.TechnicianID != "" {
				plan.TechnicianWalletDelta = FreeVisitCompensation
				plan.Transactions = append(plan.Transactions, &models.Transaction{
					TechnicianID:     req.TechnicianID,
					Amount:           FreeVisitCompensation,
					Type:             models.TransactionCredit,
					Category:         models.CategoryTechnicianPayout,
					Description:      "Compensation for cancelled free visit (customer cancelled while on the way)",
					RelatedRequestID: req.RequestID,
				})
			}
		}

	case models.RequestStatusAwaitingApproval:
		if req.UsedFreeVisit {
			// The visit is consumed; the technician earned the full share.
			if req.TechnicianID != "" {
				plan.TechnicianWalletDelta = TechnicianVisitShare
				plan.Transactions = append(plan.Transactions, &models.Transaction{
					TechnicianID:     req.TechnicianID,
					Amount:           TechnicianVisitShare,
					Type:             models.TransactionCredit,
					Category:         models.CategoryTechnicianPayout,
					Description:      "Compensation for cancelled free visit (cancelled at estimate)",
					RelatedRequestID: req.RequestID,
				})
			}
		} else if req.VisitFeePaid {
			plan.UserWalletDelta = PartialRefundAmount
			plan.Transactions = append(plan.Transactions, &models.Transaction{
				UserID:           req.UserID,
				Amount:           PartialRefundAmount,
				Type:             models.TransactionCredit,
				Category:         models.CategoryVisitFeeRefund,
				Description:      "Partial refund (cancelled after estimate)",
				RelatedRequestID: req.RequestID,
			})
			if req.TechnicianID != "" {
				plan.TechnicianWalletDelta = PartialCompensation
				plan.Transactions = append(plan.Transactions, &models.Transaction{
					TechnicianID:     req.TechnicianID,
					Amount:           PartialCompensation,
					Type:             models.TransactionCredit,
					Category:         models.CategoryTechnicianPayout,
					Description:      "Compensation for cancelled service (after estimate)",
					RelatedRequestID: req.RequestID,
				})
			}
		}
	}

	// Free the technician once the job dies, unless they are suspended.
	if req.TechnicianID != "" {
		plan.TechnicianSets = map[string]interface{}{
			"status":      models.TechnicianStatusActive,
			"isAvailable": true,
		}
	}

	return plan
}

// PlanTechnicianCancel computes the settlement for a technician abandoning
// a job while on the way: loyalty penalty, possible suspension, full refund
// of a paid fee.
func (s *SettlementService) PlanTechnicianCancel(req *models.ServiceRequest, tech *models.Technician) *SettlementPlan {
	plan := &SettlementPlan{
		TechnicianLoyaltyDelta: -LoyaltyPenaltyPoints,
		TechnicianAdds:         map[string]int{"cancelCount": 1},
	}

	if req.VisitFeePaid && !req.UsedFreeVisit {
		plan.UserWalletDelta = VisitFeeAmount
		plan.Transactions = append(plan.Transactions, &models.Transaction{
			UserID:           req.UserID,
			Amount:           VisitFeeAmount,
			Type:             models.TransactionCredit,
			Category:         models.CategoryVisitFeeRefund,
			Description:      "Full refund due to technician cancellation (while on the way)",
			RelatedRequestID: req.RequestID,
		})
	}

	if tech.LoyaltyPoints-LoyaltyPenaltyPoints < SuspensionFloorPoints {
		until := time.Now().AddDate(0, 0, SuspensionCooldownDays)
		plan.SuspendTechnician = true
		plan.SuspendedUntil = &until
		plan.TechnicianSets = map[string]interface{}{
			"status":         models.TechnicianStatusSuspended,
			"isAvailable":    false,
			"suspendedUntil": until,
		}
	} else {
		plan.TechnicianSets = map[string]interface{}{
			"status":      models.TechnicianStatusActive,
			"isAvailable": true,
		}
	}

	return plan
}

// PlanCompletion computes the completion payout: the technician's visit
// share when the fee was paid, and a logged balance debit for any service
// cost above what intake already collected. The balance is recorded for
// reconciliation, not wallet-settled.
func (s *SettlementService) PlanCompletion(req *models.ServiceRequest) *SettlementPlan {
	plan := &SettlementPlan{
		TechnicianAdds: map[string]int{"completedJobs": 1},
	}

	alreadyPaid := 0
	if req.VisitFeePaid {
		alreadyPaid = VisitFeeAmount
	}
	if balance := req.EstimatedServiceCost - alreadyPaid; balance > 0 {
		plan.Transactions = append(plan.Transactions, &models.Transaction{
			UserID:           req.UserID,
			TechnicianID:     req.TechnicianID,
			Amount:           balance,
			Type:             models.TransactionDebit,
			Category:         models.CategoryServicePayment,
			Description:      fmt.Sprintf("Balance payment for service (total: %d, paid: %d)", req.EstimatedServiceCost, alreadyPaid),
			RelatedRequestID: req.RequestID,
		})
	}

	if req.VisitFeePaid {
		plan.TechnicianWalletDelta = TechnicianVisitShare
		plan.Transactions = append(plan.Transactions, &models.Transaction{
			TechnicianID:     req.TechnicianID,
			Amount:           TechnicianVisitShare,
			Type:             models.TransactionCredit,
			Category:         models.CategoryTechnicianPayout,
			Description:      "Earnings for completed service (visit fee share)",
			RelatedRequestID: req.RequestID,
		})
	}

	plan.TechnicianSets = map[string]interface{}{
		"status":      models.TechnicianStatusActive,
		"isAvailable": true,
	}

	return plan
}

// Apply commits a transition and its settlement as one grouped write: the
// guarded status update, every balance delta, the counter restore, and the
// transaction records. A guard mismatch surfaces as Conflict; any other
// failure as SettlementFailure with nothing committed.
func (s *SettlementService) Apply(ctx context.Context, req *models.ServiceRequest, statusSets map[string]interface{}, condition string, conditionValues map[string]interface{}, plan *SettlementPlan, subscriptionID string) error {
	var items []types.TransactWriteItem

	statusItem, err := s.requestRepo.TxTransition(req.RequestID, statusSets, condition, conditionValues)
	if err != nil {
		return models.NewSettlementFailure("failed to build status update", err)
	}
	items = append(items, statusItem)

	if plan.UserWalletDelta != 0 || plan.UserLoyaltyDelta != 0 {
		adds := map[string]int{}
		if plan.UserWalletDelta != 0 {
			adds["walletBalance"] = plan.UserWalletDelta
		}
		if plan.UserLoyaltyDelta != 0 {
			adds["loyaltyPoints"] = plan.UserLoyaltyDelta
		}
		item, err := s.userRepo.TxAdjust(req.UserID, adds)
		if err != nil {
			return models.NewSettlementFailure("failed to build user adjustment", err)
		}
		items = append(items, item)
	}

	if req.TechnicianID != "" && (plan.TechnicianWalletDelta != 0 || plan.TechnicianLoyaltyDelta != 0 || len(plan.TechnicianAdds) > 0 || len(plan.TechnicianSets) > 0) {
		adds := map[string]int{}
		if plan.TechnicianWalletDelta != 0 {
			adds["walletBalance"] = plan.TechnicianWalletDelta
		}
		if plan.TechnicianLoyaltyDelta != 0 {
			adds["loyaltyPoints"] = plan.TechnicianLoyaltyDelta
		}
		for k, v := range plan.TechnicianAdds {
			adds[k] = v
		}
		item, err := s.technicianRepo.TxAdjust(req.TechnicianID, plan.TechnicianSets, adds)
		if err != nil {
			return models.NewSettlementFailure("failed to build technician adjustment", err)
		}
		items = append(items, item)
	}

	if plan.RestoreFreeVisit {
		if subscriptionID == "" {
			s.logger.Warnf("Free-visit restore requested for request %s but no active subscription found", req.RequestID)
		} else {
			item, err := s.subscriptionRepo.TxAdjustCounters(subscriptionID, -1, -1)
			if err != nil {
				return models.NewSettlementFailure("failed to build subscription restore", err)
			}
			items = append(items, item)
		}
	}

	for _, txn := range plan.Transactions {
		item, err := s.transactionRepo.TxRecord(txn)
		if err != nil {
			return models.NewSettlementFailure("failed to build transaction record", err)
		}
		items = append(items, item)
	}

	if err := s.db.TransactWriteItems(ctx, items); err != nil {
		if errors.Is(err, dal.ErrConditionFailed) {
			return models.NewConflict("service request is no longer in the expected state")
		}
		s.logger.Errorf("Settlement group failed for request %s: %v", req.RequestID, err)
		return models.NewSettlementFailure("settlement could not be applied as a unit", err)
	}

	return nil
}
