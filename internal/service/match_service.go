package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carematch-be/internal/dto"
	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"
	"carematch-be/internal/pkg/logger"
	"carematch-be/internal/repository/contract"
	"carematch-be/internal/repository/unitofwork"
	"carematch-be/pkg/events"
)

type IMatchService interface {
	CreateMatchRequest(ctx context.Context, familyProfileId int64, req *dto.CreateMatchRequestRequest) (*dto.MatchRequestResponse, error)
	RespondToMatchRequest(ctx context.Context, requestId int64, caregiverUserId int64, decision entity.MatchDecision) (*dto.MatchRequestResponse, error)
	CompleteMatch(ctx context.Context, requestId int64, actingUserId int64) (*dto.MatchRequestResponse, error)
	ExpireStaleRequests(ctx context.Context, now time.Time) (int64, error)
	GetMatchRequest(ctx context.Context, requestId int64, principal entity.Principal) (*dto.MatchRequestResponse, error)
	ListMatchRequests(ctx context.Context, principal entity.Principal, query *dto.ListMatchRequestsQuery) (*dto.PaginatedResponse[*dto.MatchRequestResponse], error)
}

type matchService struct {
	uowFactory unitofwork.RepositoryFactory
	profiles   IProfileResolver
	requestTTL time.Duration
	events     emitter
	logger     logger.ILogger
	now        func() time.Time
}

func NewMatchService(
	uowFactory unitofwork.RepositoryFactory,
	profiles IProfileResolver,
	publisher events.Publisher,
	logger logger.ILogger,
	requestTTL time.Duration,
) IMatchService {
	return &matchService{
		uowFactory: uowFactory,
		profiles:   profiles,
		requestTTL: requestTTL,
		events:     newEmitter(publisher, logger),
		logger:     logger,
		now:        time.Now,
	}
}

func (s *matchService) CreateMatchRequest(ctx context.Context, familyProfileId int64, req *dto.CreateMatchRequestRequest) (*dto.MatchRequestResponse, error) {
	if req.ProposedStart != nil && req.ProposedEnd != nil && req.ProposedEnd.Before(*req.ProposedStart) {
		return nil, apperror.Validation("proposed_end must not be before proposed_start")
	}
	if req.RequestedHours != nil && *req.RequestedHours <= 0 {
		return nil, apperror.Validation("requested_hours must be positive")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	caregiver, err := uow.ProfileRepository().FindCaregiverProfileByID(ctx, req.CaregiverProfileId)
	if err != nil {
		return nil, err
	}
	if caregiver == nil {
		return nil, apperror.NotFound("caregiver profile not found", apperror.Resource("caregiver_profile", req.CaregiverProfileId))
	}

	// Concurrent creates by the same family queue up behind this lock, so
	// the open-pair check below sees every committed request.
	family, err := uow.ProfileRepository().LockFamilyProfile(ctx, familyProfileId)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, apperror.NotFound("family profile not found", apperror.Resource("family_profile", familyProfileId))
	}

	open, err := uow.MatchRequestRepository().ExistsOpenForPair(ctx, family.Id, caregiver.Id)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, openPairConflict(family.Id, caregiver.Id)
	}

	now := s.now()
	request := &entity.MatchRequest{
		FamilyProfileId:    family.Id,
		CaregiverProfileId: caregiver.Id,
		Status:             entity.MatchStatusPending,
		Message:            req.Message,
		ProposedStart:      req.ProposedStart,
		ProposedEnd:        req.ProposedEnd,
		RequestedHours:     req.RequestedHours,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uow.MatchRequestRepository().Create(ctx, request); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, openPairConflict(family.Id, caregiver.Id)
		}
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	parties := &entity.MatchParties{Request: request, FamilyUserId: family.UserId, CaregiverUserId: caregiver.UserId}
	s.logger.Info("MATCH", "Match request created", map[string]interface{}{
		"match_request_id":     request.Id,
		"family_profile_id":    family.Id,
		"caregiver_profile_id": caregiver.Id,
	})
	s.events.emit(ctx, events.MatchRequestCreated, now, matchEventData(parties))

	return toMatchRequestResponse(parties, nil), nil
}

func openPairConflict(familyProfileId, caregiverProfileId int64) error {
	return apperror.Conflict(
		"an open match request already exists for this caregiver",
		fmt.Sprintf("family_profile:%d,caregiver_profile:%d", familyProfileId, caregiverProfileId),
	)
}

func (s *matchService) RespondToMatchRequest(ctx context.Context, requestId int64, caregiverUserId int64, decision entity.MatchDecision) (*dto.MatchRequestResponse, error) {
	var target entity.MatchStatus
	switch decision {
	case entity.MatchDecisionAccept:
		target = entity.MatchStatusAccepted
	case entity.MatchDecisionDecline:
		target = entity.MatchStatusDeclined
	default:
		return nil, apperror.Validation("decision must be accept or decline")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	parties, err := uow.MatchRequestRepository().FindParties(ctx, requestId, true)
	if err != nil {
		return nil, err
	}
	if parties == nil || parties.CaregiverUserId != caregiverUserId {
		return nil, apperror.NotFound("match request not found", apperror.Resource("match_request", requestId))
	}

	request := parties.Request
	now := s.now()

	// A repeated accept replays the side effect only: the conversation is
	// created if a previous attempt never got that far.
	if request.Status == entity.MatchStatusAccepted && target == entity.MatchStatusAccepted {
		conversation, created, err := uow.ConversationRepository().CreateForMatchIfAbsent(ctx, request.Id, participantsOf(parties), now)
		if err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		if created {
			s.logger.Warn("MATCH", "Repaired missing conversation for accepted match", map[string]interface{}{
				"match_request_id": request.Id,
				"conversation_id":  conversation.Id,
			})
		}
		return toMatchRequestResponse(parties, &conversation.Id), nil
	}

	if !request.Status.CanTransitionTo(target) {
		return nil, apperror.InvalidState(
			fmt.Sprintf("match request is %s, not pending", request.Status),
			apperror.Resource("match_request", request.Id),
		)
	}

	updated, err := uow.MatchRequestRepository().UpdateStatus(ctx, request.Id, request.Status, target, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperror.InvalidState("match request changed concurrently", apperror.Resource("match_request", request.Id))
	}
	request.Status = target
	request.RespondedAt = &now
	request.UpdatedAt = now

	var conversationId *int64
	if target == entity.MatchStatusAccepted {
		conversation, _, err := uow.ConversationRepository().CreateForMatchIfAbsent(ctx, request.Id, participantsOf(parties), now)
		if err != nil {
			return nil, err
		}
		conversationId = &conversation.Id
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	eventType := events.MatchRequestDeclined
	if target == entity.MatchStatusAccepted {
		eventType = events.MatchRequestAccepted
	}
	data := matchEventData(parties)
	if conversationId != nil {
		data["conversation_id"] = *conversationId
	}
	s.logger.Info("MATCH", "Match request answered", map[string]interface{}{
		"match_request_id": request.Id,
		"status":           request.Status,
	})
	s.events.emit(ctx, eventType, now, data)

	return toMatchRequestResponse(parties, conversationId), nil
}

func (s *matchService) CompleteMatch(ctx context.Context, requestId int64, actingUserId int64) (*dto.MatchRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	parties, err := uow.MatchRequestRepository().FindParties(ctx, requestId, true)
	if err != nil {
		return nil, err
	}
	if parties == nil {
		return nil, apperror.NotFound("match request not found", apperror.Resource("match_request", requestId))
	}
	if !parties.Involves(actingUserId) {
		return nil, apperror.Forbidden("only the family or the caregiver can complete this match")
	}

	request := parties.Request
	if !request.Status.CanTransitionTo(entity.MatchStatusCompleted) {
		return nil, apperror.InvalidState(
			fmt.Sprintf("match request is %s, not accepted", request.Status),
			apperror.Resource("match_request", request.Id),
		)
	}

	now := s.now()
	updated, err := uow.MatchRequestRepository().UpdateStatus(ctx, request.Id, entity.MatchStatusAccepted, entity.MatchStatusCompleted, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, apperror.InvalidState("match request changed concurrently", apperror.Resource("match_request", request.Id))
	}
	request.Status = entity.MatchStatusCompleted
	request.CompletedAt = &now
	request.UpdatedAt = now

	conversation, err := uow.ConversationRepository().FindByMatchRequestID(ctx, request.Id)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	data := matchEventData(parties)
	data["completed_by"] = actingUserId
	s.events.emit(ctx, events.MatchCompleted, now, data)

	var conversationId *int64
	if conversation != nil {
		conversationId = &conversation.Id
	}
	return toMatchRequestResponse(parties, conversationId), nil
}

func (s *matchService) ExpireStaleRequests(ctx context.Context, now time.Time) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	expired, err := uow.MatchRequestRepository().ExpirePendingBefore(ctx, now.Add(-s.requestTTL), now)
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.logger.Info("MATCH", "Expired stale match requests", map[string]interface{}{
			"count": expired,
			"ttl":   s.requestTTL.String(),
		})
		s.events.emit(ctx, events.MatchRequestsExpired, now, map[string]interface{}{"count": expired})
	}
	return expired, nil
}

func (s *matchService) GetMatchRequest(ctx context.Context, requestId int64, principal entity.Principal) (*dto.MatchRequestResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	parties, err := uow.MatchRequestRepository().FindParties(ctx, requestId, false)
	if err != nil {
		return nil, err
	}
	if parties == nil {
		return nil, apperror.NotFound("match request not found", apperror.Resource("match_request", requestId))
	}
	if !principal.IsAdmin() && !parties.Involves(principal.UserId) {
		return nil, apperror.Forbidden("you are not a party to this match request")
	}

	conversation, err := uow.ConversationRepository().FindByMatchRequestID(ctx, requestId)
	if err != nil {
		return nil, err
	}

	var conversationId *int64
	if conversation != nil {
		conversationId = &conversation.Id
	}
	return toMatchRequestResponse(parties, conversationId), nil
}

func (s *matchService) ListMatchRequests(ctx context.Context, principal entity.Principal, query *dto.ListMatchRequestsQuery) (*dto.PaginatedResponse[*dto.MatchRequestResponse], error) {
	limit, offset := query.Normalize()
	filter := contract.MatchRequestFilter{Limit: limit, Offset: offset}

	switch principal.Role {
	case entity.UserRoleFamily:
		id, err := s.profiles.FamilyProfileID(ctx, principal)
		if err != nil {
			return nil, err
		}
		filter.FamilyProfileId = &id
	case entity.UserRoleCaregiver:
		id, err := s.profiles.CaregiverProfileID(ctx, principal)
		if err != nil {
			return nil, err
		}
		filter.CaregiverProfileId = &id
	case entity.UserRoleAdmin:
	default:
		return nil, apperror.Forbidden("unknown role")
	}

	if query.Status != "" {
		status := entity.MatchStatus(query.Status)
		if !status.Valid() {
			return nil, apperror.Validation("unknown match status " + query.Status)
		}
		filter.Status = &status
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, total, err := uow.MatchRequestRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MatchRequestResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, toMatchRequestResponse(row, nil))
	}

	return &dto.PaginatedResponse[*dto.MatchRequestResponse]{
		Items: items,
		Page:  query.Page,
		Limit: limit,
		Total: total,
	}, nil
}

func participantsOf(parties *entity.MatchParties) []int64 {
	return []int64{parties.FamilyUserId, parties.CaregiverUserId}
}

func matchEventData(parties *entity.MatchParties) map[string]interface{} {
	return map[string]interface{}{
		"match_request_id":  parties.Request.Id,
		"family_user_id":    parties.FamilyUserId,
		"caregiver_user_id": parties.CaregiverUserId,
		"status":            string(parties.Request.Status),
	}
}

func toMatchRequestResponse(parties *entity.MatchParties, conversationId *int64) *dto.MatchRequestResponse {
	r := parties.Request
	return &dto.MatchRequestResponse{
		Id:                 r.Id,
		FamilyProfileId:    r.FamilyProfileId,
		CaregiverProfileId: r.CaregiverProfileId,
		FamilyUserId:       parties.FamilyUserId,
		CaregiverUserId:    parties.CaregiverUserId,
		Status:             string(r.Status),
		Message:            r.Message,
		ProposedStart:      r.ProposedStart,
		ProposedEnd:        r.ProposedEnd,
		RequestedHours:     r.RequestedHours,
		RespondedAt:        r.RespondedAt,
		CompletedAt:        r.CompletedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		ConversationId:     conversationId,
	}
}
