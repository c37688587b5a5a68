package services

import (
	"context"
	"electrocare-backend/models"
	"electrocare-backend/repository"
	"electrocare-backend/utils"
	"electrocare-backend/utils/logger"
	"fmt"
	"time"
)

// LifecycleService drives every post-intake transition of a service request.
// Each operation re-reads the request, checks ownership and the prior
// status, and then applies the transition through a conditional write so a
// concurrent caller cannot double-apply it.
type LifecycleService struct {
	requestRepo      repository.RequestRepositoryInterface
	queueRepo        repository.QueueRepositoryInterface
	technicianRepo   repository.TechnicianRepositoryInterface
	userRepo         repository.UserRepositoryInterface
	subscriptionRepo repository.SubscriptionRepositoryInterface
	settlement       *SettlementService
	notifier         Notifier
	logger           logger.Logger
}

func NewLifecycleService(
	requestRepo repository.RequestRepositoryInterface,
	queueRepo repository.QueueRepositoryInterface,
	technicianRepo repository.TechnicianRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	subscriptionRepo repository.SubscriptionRepositoryInterface,
	settlement *SettlementService,
	notifier Notifier,
	log logger.Logger,
) *LifecycleService {
	return &LifecycleService{
		requestRepo:      requestRepo,
		queueRepo:        queueRepo,
		technicianRepo:   technicianRepo,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		settlement:       settlement,
		notifier:         notifier,
		logger:           log,
	}
}

// statusCondition builds the guard re-checking the prior status inside the
// write.
func statusCondition(prior models.RequestStatus) (string, map[string]interface{}) {
	return "#status = :cond_prior", map[string]interface{}{":cond_prior": prior}
}

// Accept assigns a broadcasted request to a technician. The authorization
// list, the technician's standing, and the slot calendar are checked first,
// but the assignment itself is a single conditional write: of N concurrent
// accepters exactly one wins and the rest get Conflict.
func (s *LifecycleService) Accept(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	tech, err := s.technicianRepo.GetTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	switch tech.Status {
	case models.TechnicianStatusSuspended:
		return nil, models.NewForbidden("technician is suspended and cannot accept jobs")
	case models.TechnicianStatusInactive:
		return nil, models.NewForbidden("technician account is inactive")
	}

	if !contains(req.BroadcastedTo, technicianID) {
		return nil, models.NewForbidden("this request was not offered to you")
	}

	if req.Status != models.RequestStatusPending && req.Status != models.RequestStatusBroadcasted {
		return nil, models.NewConflict("service request already accepted or no longer available")
	}

	conflict, err := s.requestRepo.HasSlotConflict(ctx, technicianID, req.ScheduledDate, req.PreferredSlot)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, models.NewConflict("you already have a job in this slot on that date")
	}

	if err := s.requestRepo.AcceptRequest(ctx, requestID, technicianID); err != nil {
		return nil, err
	}

	if err := s.queueRepo.MarkResponded(ctx, requestID, technicianID, models.QueueResponseAccepted); err != nil {
		s.logger.Errorf("Failed to mark queue entry accepted for request %s: %v", requestID, err)
	}

	s.notifier.Notify(ctx, req.UserID, RecipientUser, "Technician assigned",
		fmt.Sprintf("%s accepted your service request", tech.Name))

	return s.requestRepo.GetRequest(ctx, requestID)
}

// MarkOnTheWay starts travel: accepted -> on_the_way, and the technician
// becomes busy and unavailable. Availability flips here, not at accept, so
// an accepted-but-not-travelling technician can still take other slots.
func (s *LifecycleService) MarkOnTheWay(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.ownedByTechnician(ctx, technicianID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusAccepted {
		return nil, models.NewConflict("service request is not in accepted state")
	}

	cond, vals := statusCondition(models.RequestStatusAccepted)
	err = s.requestRepo.TransitionStatus(ctx, requestID, map[string]interface{}{
		"status":     models.RequestStatusOnTheWay,
		"onTheWayAt": time.Now(),
	}, cond, vals)
	if err != nil {
		return nil, err
	}

	if err := s.technicianRepo.SetAvailability(ctx, technicianID, models.TechnicianStatusBusy, false); err != nil {
		s.logger.Errorf("Failed to flip technician %s busy: %v", technicianID, err)
	}

	s.notifier.Notify(ctx, req.UserID, RecipientUser, "Technician on the way",
		"Your technician has started travelling to your location")

	return s.requestRepo.GetRequest(ctx, requestID)
}

// SubmitEstimate records the diagnosed cost: on_the_way -> awaiting_approval.
func (s *LifecycleService) SubmitEstimate(ctx context.Context, technicianID, requestID string, estimatedCost int) (*models.ServiceRequest, error) {
	req, err := s.ownedByTechnician(ctx, technicianID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusOnTheWay {
		return nil, models.NewConflict("estimate can only be submitted while on the way or on site")
	}
	if estimatedCost <= 0 {
		return nil, models.NewValidation("estimated service cost must be positive")
	}

	cond, vals := statusCondition(models.RequestStatusOnTheWay)
	err = s.requestRepo.TransitionStatus(ctx, requestID, map[string]interface{}{
		"status":               models.RequestStatusAwaitingApproval,
		"estimatedServiceCost": estimatedCost,
	}, cond, vals)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, req.UserID, RecipientUser, "Estimate ready",
		fmt.Sprintf("Your technician estimates the repair at %d. Approve to proceed.", estimatedCost))

	return s.requestRepo.GetRequest(ctx, requestID)
}

// ApproveEstimate is the customer's go-ahead: awaiting_approval -> approved.
func (s *LifecycleService) ApproveEstimate(ctx context.Context, userID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.ownedByCustomer(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusAwaitingApproval {
		return nil, models.NewConflict("there is no estimate awaiting approval")
	}

	cond, vals := statusCondition(models.RequestStatusAwaitingApproval)
	err = s.requestRepo.TransitionStatus(ctx, requestID, map[string]interface{}{
		"status": models.RequestStatusApproved,
	}, cond, vals)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, req.TechnicianID, RecipientTechnician, "Estimate approved",
		"The customer approved your estimate. You can start the repair.")

	return s.requestRepo.GetRequest(ctx, requestID)
}

// CompleteService mints the completion code and hands it to the customer.
// The status does not change here; only a successful code verification
// closes the job.
func (s *LifecycleService) CompleteService(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.ownedByTechnician(ctx, technicianID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusApproved && req.Status != models.RequestStatusInProgress {
		return nil, models.NewConflict("service is not in a completable state")
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion code: %w", err)
	}

	cond, vals := statusCondition(req.Status)
	err = s.requestRepo.TransitionStatus(ctx, requestID, map[string]interface{}{
		"completionOTP": otp,
	}, cond, vals)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, req.UserID, RecipientUser, "Confirm completion",
		fmt.Sprintf("Share this code with your technician to confirm the job is done: %s", otp))

	s.logger.Infof("Completion code issued for request %s", requestID)
	return s.requestRepo.GetRequest(ctx, requestID)
}

// VerifyOTP closes the job. The code is compared verbatim; a mismatch
// changes nothing. On match the completion settlement (payout, balance
// record, technician release) commits together with the status flip.
func (s *LifecycleService) VerifyOTP(ctx context.Context, technicianID, requestID, otp string) (*models.ServiceRequest, error) {
	req, err := s.ownedByTechnician(ctx, technicianID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusApproved && req.Status != models.RequestStatusInProgress {
		return nil, models.NewConflict("service is not awaiting completion")
	}
	if req.CompletionOTP == "" {
		return nil, models.NewConflict("no completion code has been issued for this request")
	}
	if otp != req.CompletionOTP {
		return nil, models.NewValidation("incorrect completion code")
	}

	plan := s.settlement.PlanCompletion(req)
	now := time.Now()
	cond, vals := statusCondition(req.Status)
	sets := map[string]interface{}{
		"status":      models.RequestStatusCompleted,
		"otpVerified": true,
		"completedAt": now,
		"updatedAt":   now,
	}
	if err := s.settlement.Apply(ctx, req, sets, cond, vals, plan, ""); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, req.UserID, RecipientUser, "Service completed",
		"Your service request has been completed. Thank you!")

	return s.requestRepo.GetRequest(ctx, requestID)
}

// CancelByCustomer cancels a request on behalf of its owner, settling per
// the prior status. Once the estimate is approved the job can no longer be
// cancelled from the customer side.
func (s *LifecycleService) CancelByCustomer(ctx context.Context, userID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.ownedByCustomer(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, models.NewConflict("service request is already closed")
	}
	switch req.Status {
	case models.RequestStatusApproved, models.RequestStatusInProgress:
		return nil, models.NewForbidden("cannot cancel after approving the estimate")
	}

	plan := s.settlement.PlanCustomerCancel(req)

	subscriptionID := ""
	if plan.RestoreFreeVisit {
		sub, err := s.subscriptionRepo.GetActiveForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			subscriptionID = sub.SubscriptionID
		}
	}

	now := time.Now()
	cond, vals := statusCondition(req.Status)
	sets := map[string]interface{}{
		"status":    models.RequestStatusCancelled,
		"updatedAt": now,
	}
	if err := s.settlement.Apply(ctx, req, sets, cond, vals, plan, subscriptionID); err != nil {
		return nil, err
	}

	if req.TechnicianID != "" {
		s.notifier.Notify(ctx, req.TechnicianID, RecipientTechnician, "Job cancelled",
			"The customer cancelled the service request")
	}

	s.logger.Infof("Request %s cancelled by customer (prior status %s)", requestID, req.Status)
	return s.requestRepo.GetRequest(ctx, requestID)
}

// CancelByTechnician handles a technician backing out. While travelling it
// is a real cancellation with a loyalty penalty, possible suspension, and a
// refund. Before travel the job simply goes back on the broadcast board
// with no money moving.
func (s *LifecycleService) CancelByTechnician(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.ownedByTechnician(ctx, technicianID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, models.NewConflict("service request is already closed")
	}

	switch req.Status {
	case models.RequestStatusOnTheWay:
		return s.technicianCancelOnTheWay(ctx, req)
	case models.RequestStatusAccepted:
		return s.rebroadcast(ctx, req)
	default:
		return nil, models.NewForbidden("cannot cancel after submitting an estimate")
	}
}

func (s *LifecycleService) technicianCancelOnTheWay(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error) {
	tech, err := s.technicianRepo.GetTechnician(ctx, req.TechnicianID)
	if err != nil {
		return nil, err
	}

	plan := s.settlement.PlanTechnicianCancel(req, tech)
	now := time.Now()
	cond, vals := statusCondition(models.RequestStatusOnTheWay)
	sets := map[string]interface{}{
		"status":    models.RequestStatusCancelled,
		"updatedAt": now,
	}
	if err := s.settlement.Apply(ctx, req, sets, cond, vals, plan, ""); err != nil {
		return nil, err
	}

	if plan.SuspendTechnician {
		s.logger.Warnf("Technician %s suspended until %s after cancelling while on the way",
			req.TechnicianID, plan.SuspendedUntil.Format(time.RFC3339))
	}

	s.notifier.Notify(ctx, req.UserID, RecipientUser, "Technician cancelled",
		"Your technician had to cancel. Any visit fee you paid has been refunded.")

	return s.requestRepo.GetRequest(ctx, req.RequestID)
}

// rebroadcast reverts an accepted request to the broadcast board. The
// technician fields are cleared, their queue entry becomes rejected, and the
// remaining candidates are pinged again.
func (s *LifecycleService) rebroadcast(ctx context.Context, req *models.ServiceRequest) (*models.ServiceRequest, error) {
	technicianID := req.TechnicianID

	cond, vals := statusCondition(models.RequestStatusAccepted)
	err := s.requestRepo.TransitionStatus(ctx, req.RequestID, map[string]interface{}{
		"status":       models.RequestStatusBroadcasted,
		"technicianID": "",
		"acceptedAt":   nil,
		"onTheWayAt":   nil,
	}, cond, vals)
	if err != nil {
		return nil, err
	}

	if err := s.queueRepo.MarkResponded(ctx, req.RequestID, technicianID, models.QueueResponseRejected); err != nil {
		s.logger.Errorf("Failed to mark queue entry rejected for request %s: %v", req.RequestID, err)
	}

	if err := s.technicianRepo.SetAvailability(ctx, technicianID, models.TechnicianStatusActive, true); err != nil {
		s.logger.Errorf("Failed to restore technician %s availability: %v", technicianID, err)
	}

	s.notifier.Notify(ctx, req.UserID, RecipientUser, "Looking for a new technician",
		"Your technician withdrew. We are re-broadcasting your request.")
	for _, id := range req.BroadcastedTo {
		if id == technicianID {
			continue
		}
		s.notifier.Notify(ctx, id, RecipientTechnician, "Service request available again",
			"A previously accepted repair job is back on the board")
	}

	s.logger.Infof("Request %s re-broadcasted after technician %s withdrew", req.RequestID, technicianID)
	return s.requestRepo.GetRequest(ctx, req.RequestID)
}

// ListCustomerRequests returns every request owned by the customer.
func (s *LifecycleService) ListCustomerRequests(ctx context.Context, userID string) ([]*models.ServiceRequest, error) {
	return s.requestRepo.GetRequestsByUser(ctx, userID)
}

// TechnicianInbox returns the open broadcasts a technician may still accept
// plus the jobs currently assigned to them.
func (s *LifecycleService) TechnicianInbox(ctx context.Context, technicianID string) (*models.TechnicianInbox, error) {
	inbox := &models.TechnicianInbox{
		Broadcasted: []*models.ServiceRequest{},
		MyJobs:      []*models.ServiceRequest{},
	}

	entries, err := s.queueRepo.GetPendingForTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		req, err := s.requestRepo.GetRequest(ctx, entry.RequestID)
		if err != nil {
			s.logger.Warnf("Queue entry %s points at unreadable request: %v", entry.EntryID, err)
			continue
		}
		if req.Status == models.RequestStatusBroadcasted {
			inbox.Broadcasted = append(inbox.Broadcasted, req)
		}
	}

	assigned, err := s.requestRepo.GetRequestsByTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	for _, req := range assigned {
		if !req.Status.IsTerminal() {
			inbox.MyJobs = append(inbox.MyJobs, req)
		}
	}

	return inbox, nil
}

// GetRequestForActor fetches one request, enforcing that the caller is a
// party to it.
func (s *LifecycleService) GetRequestForActor(ctx context.Context, actorID string, role models.ActorRole, requestID string) (*models.ServiceRequest, error) {
	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch role {
	case models.RoleCustomer:
		if req.UserID != actorID {
			return nil, models.NewForbidden("you do not own this service request")
		}
	case models.RoleTechnician:
		if req.TechnicianID != actorID && !contains(req.BroadcastedTo, actorID) {
			return nil, models.NewForbidden("this service request is not assigned or offered to you")
		}
	}
	return req, nil
}

func (s *LifecycleService) ownedByCustomer(ctx context.Context, userID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, models.NewForbidden("you do not own this service request")
	}
	return req, nil
}

func (s *LifecycleService) ownedByTechnician(ctx context.Context, technicianID, requestID string) (*models.ServiceRequest, error) {
	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.TechnicianID != technicianID {
		return nil, models.NewForbidden("this service request is not assigned to you")
	}
	return req, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
