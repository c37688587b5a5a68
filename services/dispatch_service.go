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

// DispatchService handles request intake: subscription-based fee resolution,
// candidate matching, and the initial broadcast.
type DispatchService struct {
	db               dal.DatabaseClientInterface
	requestRepo      repository.RequestRepositoryInterface
	queueRepo        repository.QueueRepositoryInterface
	userRepo         repository.UserRepositoryInterface
	subscriptionRepo repository.SubscriptionRepositoryInterface
	transactionRepo  repository.TransactionRepositoryInterface
	geo              *GeoService
	notifier         Notifier
	logger           logger.Logger
}

func NewDispatchService(
	db dal.DatabaseClientInterface,
	requestRepo repository.RequestRepositoryInterface,
	queueRepo repository.QueueRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	subscriptionRepo repository.SubscriptionRepositoryInterface,
	transactionRepo repository.TransactionRepositoryInterface,
	geo *GeoService,
	notifier Notifier,
	log logger.Logger,
) *DispatchService {
	return &DispatchService{
		db:               db,
		requestRepo:      requestRepo,
		queueRepo:        queueRepo,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		transactionRepo:  transactionRepo,
		geo:              geo,
		notifier:         notifier,
		logger:           log,
	}
}

// FreeVisitEligible resolves whether this visit is covered by the
// subscription. Premium plans carry a fixed free-visit budget; premium pro
// makes every third visit free. The decision depends only on the snapshot,
// never on matching results.
func FreeVisitEligible(sub *models.Subscription, now time.Time) bool {
	if !sub.IsCurrent(now) {
		return false
	}
	switch sub.Plan {
	case models.PlanPremium:
		limit := sub.FreeVisitLimit
		if limit <= 0 {
			limit = 2
		}
		return sub.FreeVisitsUsed < limit
	case models.PlanPremiumPro:
		return (sub.TotalVisitsUsed+1)%3 == 0
	}
	return false
}

func planPriority(plan models.SubscriptionPlan) int {
	switch plan {
	case models.PlanPremiumPro:
		return 3
	case models.PlanPremium:
		return 2
	case models.PlanGold:
		return 1
	}
	return 0
}

// CreateRequest runs the intake pipeline: resolve the visit fee against the
// subscription, match candidate technicians, and persist the request and its
// money movement in one grouped write. Zero candidates is not an error; the
// request lands as pending and the caller sees techniciansFound = 0.
func (s *DispatchService) CreateRequest(ctx context.Context, userID string, in *models.CreateRequestRequest) (*models.CreateRequestResponse, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub, err := s.subscriptionRepo.GetActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan := models.PlanBasic
	if sub.IsCurrent(now) {
		plan = sub.Plan
	}
	usedFreeVisit := FreeVisitEligible(sub, now)

	if !usedFreeVisit && user.WalletBalance < VisitFeeAmount {
		return nil, models.NewValidation(fmt.Sprintf("insufficient wallet balance: visit fee is %d", VisitFeeAmount))
	}

	lat, lng := in.Latitude, in.Longitude
	pincode := ""
	if in.AddressDetails != nil {
		pincode = in.AddressDetails.Pincode
	}
	if lat == 0 && lng == 0 && in.AddressDetails != nil {
		if glat, glng, ok := s.geo.GeocodeAddress(ctx, in.AddressDetails); ok {
			lat, lng = glat, glng
		}
	}

	candidates := s.geo.FindCandidates(ctx, lat, lng, pincode, 0)
	candidateIDs := make([]string, 0, len(candidates))
	for _, t := range candidates {
		candidateIDs = append(candidateIDs, t.TechnicianID)
	}

	status := models.RequestStatusPending
	if len(candidateIDs) > 0 {
		status = models.RequestStatusBroadcasted
	}

	scheduledDate := in.ScheduledDate
	if scheduledDate == "" {
		scheduledDate = now.Format("2006-01-02")
	}

	req := &models.ServiceRequest{
		UserID:               userID,
		ApplianceID:          in.ApplianceID,
		BroadcastedTo:        candidateIDs,
		AddressDetails:       in.AddressDetails,
		IssueDesc:            in.IssueDesc,
		Images:               in.Images,
		PreferredSlot:        in.PreferredSlot,
		ScheduledDate:        scheduledDate,
		Status:               status,
		VisitFeePaid:         !usedFreeVisit,
		UsedFreeVisit:        usedFreeVisit,
		VisitFeeAmount:       VisitFeeAmount,
		TechnicianVisitShare: TechnicianVisitShare,
		PlatformVisitShare:   PlatformVisitShare,
		SubscriptionPlan:     plan,
		PriorityLevel:        planPriority(plan),
	}
	if lat != 0 || lng != 0 {
		req.Location = &models.GeoPoint{Latitude: lat, Longitude: lng}
	}

	items, err := s.buildIntakeGroup(req, sub, usedFreeVisit)
	if err != nil {
		return nil, err
	}
	if err := s.db.TransactWriteItems(ctx, items); err != nil {
		if errors.Is(err, dal.ErrConditionFailed) {
			return nil, models.NewConflict("intake write was rejected")
		}
		s.logger.Errorf("Intake group failed for user %s: %v", userID, err)
		return nil, models.NewSettlementFailure("failed to persist request with its fee movement", err)
	}

	s.logger.Infof("Created request %s (status=%s, candidates=%d, freeVisit=%t)",
		req.RequestID, req.Status, len(candidateIDs), usedFreeVisit)

	if len(candidateIDs) > 0 {
		if err := s.queueRepo.Populate(ctx, req.RequestID, candidateIDs); err != nil {
			s.logger.Errorf("Failed to populate broadcast queue for request %s: %v", req.RequestID, err)
		}
		for _, id := range candidateIDs {
			s.notifier.Notify(ctx, id, RecipientTechnician, "New service request",
				fmt.Sprintf("A new repair job is available near you (slot: %s)", req.PreferredSlot))
		}
	}

	return &models.CreateRequestResponse{
		Request:          req,
		TechniciansFound: len(candidateIDs),
		UsedFreeVisit:    usedFreeVisit,
	}, nil
}

// buildIntakeGroup assembles the grouped write for intake: the request Put
// plus, for a paid visit, the wallet debit and its ledger record, or, for a
// free visit, the subscription counter bumps. A paid visit under an active
// subscription still counts toward totalVisitsUsed.
func (s *DispatchService) buildIntakeGroup(req *models.ServiceRequest, sub *models.Subscription, usedFreeVisit bool) ([]types.TransactWriteItem, error) {
	putItem, err := s.requestRepo.TxCreate(req)
	if err != nil {
		return nil, models.NewSettlementFailure("failed to build request write", err)
	}
	items := []types.TransactWriteItem{putItem}

	if usedFreeVisit {
		counterItem, err := s.subscriptionRepo.TxAdjustCounters(sub.SubscriptionID, 1, 1)
		if err != nil {
			return nil, models.NewSettlementFailure("failed to build subscription counters", err)
		}
		items = append(items, counterItem)
		return items, nil
	}

	debitItem, err := s.userRepo.TxAdjust(req.UserID, map[string]int{"walletBalance": -VisitFeeAmount})
	if err != nil {
		return nil, models.NewSettlementFailure("failed to build wallet debit", err)
	}
	items = append(items, debitItem)

	feeTxn, err := s.transactionRepo.TxRecord(&models.Transaction{
		UserID:           req.UserID,
		Amount:           VisitFeeAmount,
		Type:             models.TransactionDebit,
		Category:         models.CategoryVisitFeePayment,
		Description:      "Visit fee for service request",
		RelatedRequestID: req.RequestID,
	})
	if err != nil {
		return nil, models.NewSettlementFailure("failed to build fee record", err)
	}
	items = append(items, feeTxn)

	if sub.IsCurrent(time.Now()) {
		counterItem, err := s.subscriptionRepo.TxAdjustCounters(sub.SubscriptionID, 0, 1)
		if err != nil {
			return nil, models.NewSettlementFailure("failed to build subscription counters", err)
		}
		items = append(items, counterItem)
	}

	return items, nil
}
