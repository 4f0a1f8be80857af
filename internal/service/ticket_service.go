package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nairobi-county/county-tickets/internal/clock"
	"github.com/nairobi-county/county-tickets/internal/config"
	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/events"
	"github.com/nairobi-county/county-tickets/internal/geo"
	"github.com/nairobi-county/county-tickets/internal/observability"
	"github.com/nairobi-county/county-tickets/internal/repository"
	"github.com/nairobi-county/county-tickets/internal/routing"
	"github.com/nairobi-county/county-tickets/internal/sla"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

// maxSequence is the largest sequence that fits the six digit ticket id suffix.
const maxSequence = 999999

// TicketService runs the ticket lifecycle state machine. Every mutation is a
// compare-and-transition against the caller's snapshot version.
type TicketService struct {
	tickets    repository.TicketRepository
	sequence   repository.SequenceAllocator
	resolver   *geo.Resolver
	router     *routing.Router
	policy     *sla.Policy
	dispatcher events.Dispatcher
	clock      clock.Clock
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.TicketConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Sequence   repository.SequenceAllocator
	Resolver   *geo.Resolver
	Router     *routing.Router
	Policy     *sla.Policy
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Config     config.TicketConfig
}

// TicketCreateInput describes a citizen submission.
type TicketCreateInput struct {
	Category           domain.Category
	Intent             domain.Intent
	IssueCategory      domain.IssueCategory
	Title              string
	Description        string
	VoiceRecordingRef  string
	Priority           domain.TicketPriority
	Coordinates        *domain.Coordinate
	WardCode           string
	LocationText       string
	Photos             []string
	Reporter           *domain.Contact
	Beneficiary        *domain.Contact
	DepartmentOverride domain.Department
	CreatedBy          domain.Actor
}

// NewTicketService constructs the service. Nil clock, router and policy get defaults.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		sequence:   deps.Sequence,
		resolver:   deps.Resolver,
		router:     deps.Router,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        deps.Config,
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.router == nil {
		s.router = routing.NewRouter()
	}
	if s.policy == nil {
		s.policy = sla.NewPolicy(sla.DefaultDueHours)
	}
	if s.sequence == nil {
		s.sequence = repository.NewMemorySequence()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.cfg.IDPrefix == "" {
		s.cfg.IDPrefix = "NRB"
	}
	return s
}

// Create validates a submission, derives ward, department and deadline, and
// stores the ticket in status new. Nothing is stored if any step fails.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ticket, err := s.buildTicket(input)
	if err != nil {
		return nil, err
	}

	ticketID, err := s.nextTicketID(ctx, ticket.CreatedAt)
	if err != nil {
		return nil, err
	}
	ticket.TicketID = ticketID

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket %s: %w", ticketID, apperrors.NewInternalError(err))
	}
	s.metrics.RecordTransition(string(domain.ActionCreate))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		Actor:     ticket.CreatedBy,
		Timestamp: ticket.CreatedAt,
		Payload: events.TicketCreatedPayload{
			WardCode:         ticket.WardCode,
			Department:       ticket.AssignedDepartment,
			DepartmentSource: ticket.DepartmentSource,
			IssueCategory:    ticket.IssueCategory,
			SLADeadline:      ticket.SLADeadline,
			Title:            ticket.Title,
		},
	})
	return ticket.Clone(), nil
}

func (s *TicketService) buildTicket(input TicketCreateInput) (*domain.Ticket, error) {
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("category is required", map[string]any{"category": string(input.Category)})
	}
	intent := input.Intent
	if intent == "" && input.Category == domain.CategoryComplaint {
		intent = domain.IntentService
	}
	if intent != "" && intent != domain.IntentService && intent != domain.IntentFeedback {
		return nil, apperrors.NewValidationError("unknown intent", map[string]any{"intent": string(intent)})
	}
	needsIssue := input.Category == domain.CategoryComplaint && intent == domain.IntentService
	if needsIssue && input.IssueCategory == "" {
		return nil, apperrors.NewValidationError("issue category is required for service complaints", nil)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	description := strings.TrimSpace(input.Description)
	voiceRef := strings.TrimSpace(input.VoiceRecordingRef)
	if description == "" && voiceRef == "" {
		return nil, apperrors.NewValidationError("description or voice recording is required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}

	creator := input.CreatedBy
	if creator.Role == "" {
		creator.Role = domain.RoleCitizen
	}
	if !creator.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown actor role", map[string]any{"role": string(creator.Role)})
	}
	if strings.TrimSpace(creator.ID) == "" {
		creator.ID = "anonymous"
	}

	now := s.clock.Now()
	ticket := &domain.Ticket{
		ID:                uuid.NewString(),
		Version:           1,
		Category:          input.Category,
		Intent:            intent,
		IssueCategory:     input.IssueCategory,
		Title:             title,
		Description:       description,
		VoiceRecordingRef: voiceRef,
		Status:            domain.TicketStatusNew,
		Priority:          priority,
		LocationText:      strings.TrimSpace(input.LocationText),
		Photos:            compactStrings(input.Photos),
		Reporter:          cloneContact(input.Reporter),
		Beneficiary:       cloneContact(input.Beneficiary),
		CreatedBy:         creator,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.applyLocation(ticket, input); err != nil {
		return nil, err
	}
	if err := s.applyRouting(ticket, input.DepartmentOverride); err != nil {
		return nil, err
	}

	note := fmt.Sprintf("routed to %s (%s)", ticket.AssignedDepartment, ticket.DepartmentSource)
	ticket.History = []domain.WorkflowHistoryItem{newHistoryItem(1, domain.ActionCreate, creator, now, note)}
	return ticket, nil
}

// applyLocation sets ward fields from an explicit ward code, falling back to
// geo resolution of the coordinates. An unresolved coordinate leaves the ward empty.
func (s *TicketService) applyLocation(ticket *domain.Ticket, input TicketCreateInput) error {
	if input.Coordinates != nil {
		if !geo.ValidCoordinate(*input.Coordinates) {
			return apperrors.NewValidationError("coordinates out of range", map[string]any{
				"lat": input.Coordinates.Lat, "lng": input.Coordinates.Lng,
			})
		}
		coord := *input.Coordinates
		ticket.Coordinates = &coord
	}

	if code := strings.TrimSpace(input.WardCode); code != "" {
		if s.resolver == nil {
			return apperrors.NewValidationError("ward selection is unavailable", nil)
		}
		ward, ok := s.resolver.Index().Lookup(strings.ToUpper(code))
		if !ok {
			return apperrors.NewValidationError("unknown ward", map[string]any{"ward_code": code})
		}
		setWard(ticket, ward.Code, ward.Name, ward.SubCounty, firstZone(ward))
		return nil
	}

	if ticket.Coordinates == nil || s.resolver == nil {
		return nil
	}
	res, err := s.resolver.Resolve(ticket.Coordinates.Lat, ticket.Coordinates.Lng)
	if err != nil {
		return err
	}
	s.metrics.RecordGeoResolution(res.Resolved)
	if res.Resolved {
		setWard(ticket, res.WardCode, res.WardName, res.SubCounty, res.Zone)
	}
	return nil
}

// applyRouting picks the department and, for tickets with an issue category,
// the SLA deadline. Tickets without one go to Customer Service with no deadline.
func (s *TicketService) applyRouting(ticket *domain.Ticket, override domain.Department) error {
	if ticket.IssueCategory == "" {
		ticket.AssignedDepartment = domain.DepartmentCustomerService
		ticket.DepartmentSource = domain.DepartmentSourceAuto
		if override != "" && override != domain.DepartmentCustomerService {
			if !override.Valid() {
				return apperrors.NewValidationError("unknown department", map[string]any{"department": string(override)})
			}
			ticket.AssignedDepartment = override
			ticket.DepartmentSource = domain.DepartmentSourceUserOverride
		}
		return nil
	}

	route, err := s.router.RouteWithOverride(ticket.IssueCategory, override)
	if err != nil {
		return err
	}
	ticket.AssignedDepartment = route.Department
	ticket.DepartmentSource = route.Source
	deadline := s.policy.ComputeDeadline(ticket.CreatedAt, route.Department, ticket.IssueCategory)
	ticket.SLADeadline = &deadline
	return nil
}

func (s *TicketService) nextTicketID(ctx context.Context, createdAt time.Time) (string, error) {
	year := createdAt.UTC().Year()
	seq, err := s.sequence.Next(ctx, year)
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Errorf("allocate ticket sequence: %w", err))
	}
	if seq < 1 || seq > maxSequence {
		return "", apperrors.NewInternalError(fmt.Errorf("ticket sequence %d for %d out of range", seq, year))
	}
	return fmt.Sprintf("%s-%04d-%06d", s.cfg.IDPrefix, year, seq), nil
}

// Get returns a ticket by internal id.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, 0)
	}
	return ticket, nil
}

// GetByTicketID returns a ticket by its public code.
func (s *TicketService) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, strings.ToUpper(strings.TrimSpace(ticketID)))
	if err != nil {
		return nil, mapRepoError(err, ticketID, 0)
	}
	return ticket, nil
}

// Assign moves a new ticket to assigned, or reassigns an assigned one. A
// department change is recorded in history; the SLA deadline is left as is.
func (s *TicketService) Assign(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, assignee string, department domain.Department) (*domain.Ticket, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, apperrors.NewValidationError("assignee is required", nil)
	}
	if department != "" && !department.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": string(department)})
	}

	var oldDepartment domain.Department
	updated, err := s.transition(ctx, ticket, "assign", statuses(domain.TicketStatusNew, domain.TicketStatusAssigned),
		func(t *domain.Ticket, now time.Time) {
			oldDepartment = t.AssignedDepartment
			note := "assigned to " + assignee
			if department != "" && department != t.AssignedDepartment {
				note += fmt.Sprintf("; department %s -> %s", t.AssignedDepartment, department)
				t.AssignedDepartment = department
			}
			t.AssignedTo = &assignee
			t.Status = domain.TicketStatusAssigned
			appendHistory(t, domain.ActionAssign, actor, now, note)
		})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketAssigned,
		TicketID:  updated.ID,
		Actor:     actor,
		Timestamp: updated.UpdatedAt,
		Payload: events.TicketAssignedPayload{
			AssignedTo:    assignee,
			OldDepartment: oldDepartment,
			NewDepartment: updated.AssignedDepartment,
		},
	})
	return updated, nil
}

// Advance starts work on an assigned ticket.
func (s *TicketService) Advance(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, note string) (*domain.Ticket, error) {
	return s.statusChange(ctx, ticket, actor, "advance", domain.ActionInProgress, domain.TicketStatusInProgress,
		strings.TrimSpace(note), nil, statuses(domain.TicketStatusAssigned))
}

// Escalate marks an in-progress ticket as escalated. Escalating twice is an error.
func (s *TicketService) Escalate(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, reason string) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("escalation reason is required", nil)
	}
	return s.statusChange(ctx, ticket, actor, "escalate", domain.ActionEscalate, domain.TicketStatusEscalated,
		reason, nil, statuses(domain.TicketStatusInProgress))
}

// Resolve closes an in-progress or escalated ticket and stamps ResolvedAt.
func (s *TicketService) Resolve(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, note string) (*domain.Ticket, error) {
	return s.statusChange(ctx, ticket, actor, "resolve", domain.ActionResolve, domain.TicketStatusResolved,
		strings.TrimSpace(note), func(t *domain.Ticket, now time.Time) {
			resolvedAt := now
			t.ResolvedAt = &resolvedAt
		}, statuses(domain.TicketStatusInProgress, domain.TicketStatusEscalated))
}

// Reopen returns a resolved ticket to in_progress. Earlier ratings stay in
// SatisfactionHistory but no longer count for the new cycle.
func (s *TicketService) Reopen(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, reason string) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("reopen reason is required", nil)
	}
	return s.statusChange(ctx, ticket, actor, "reopen", domain.ActionReopen, domain.TicketStatusInProgress,
		reason, func(t *domain.Ticket, _ time.Time) {
			t.ReopenCount++
			t.ResolvedAt = nil
		}, statuses(domain.TicketStatusResolved))
}

// Reject closes a ticket that will not be worked on.
func (s *TicketService) Reject(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, reason string) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason is required", nil)
	}
	return s.statusChange(ctx, ticket, actor, "reject", domain.ActionReject, domain.TicketStatusRejected,
		reason, nil, statuses(domain.TicketStatusNew, domain.TicketStatusAssigned, domain.TicketStatusInProgress))
}

// RateSatisfaction records a 1..5 rating on a resolved ticket. The latest
// rating in a cycle wins; every rating is kept in SatisfactionHistory.
func (s *TicketService) RateSatisfaction(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, rating int) (*domain.Ticket, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}
	if ticket != nil && ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewInvalidState("only resolved tickets can be rated", map[string]any{"status": string(ticket.Status)})
	}
	updated, err := s.write(ctx, ticket, func(t *domain.Ticket, now time.Time) {
		r := rating
		t.SatisfactionRating = &r
		t.SatisfactionHistory = append(t.SatisfactionHistory, domain.SatisfactionRecord{
			Rating:  rating,
			Cycle:   t.ReopenCount,
			RatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketRated,
		TicketID:  updated.ID,
		Actor:     actor,
		Timestamp: updated.UpdatedAt,
		Payload:   events.TicketRatedPayload{Rating: rating, Cycle: updated.ReopenCount},
	})
	return updated, nil
}

// AddRemark appends a remark. Rejected tickets take no remarks; resolved ones
// only when post-resolution remarks are allowed.
func (s *TicketService) AddRemark(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, text string, attachments []string) (*domain.Ticket, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("remark text is required", nil)
	}
	if !actor.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown actor role", map[string]any{"role": string(actor.Role)})
	}
	if ticket != nil {
		switch {
		case ticket.Status == domain.TicketStatusRejected:
			return nil, apperrors.NewInvalidState("rejected tickets do not accept remarks", nil)
		case ticket.Status == domain.TicketStatusResolved && !s.cfg.AllowPostResolutionRemarks:
			return nil, apperrors.NewInvalidState("remarks are closed once a ticket is resolved", nil)
		}
	}
	updated, err := s.write(ctx, ticket, func(t *domain.Ticket, now time.Time) {
		t.Remarks = append(t.Remarks, domain.Remark{
			Seq:         len(t.Remarks) + 1,
			By:          actor.ID,
			ByRole:      actor.Role,
			Text:        text,
			Timestamp:   now,
			Attachments: compactStrings(attachments),
		})
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketRemarkAdded,
		TicketID:  updated.ID,
		Actor:     actor,
		Timestamp: updated.UpdatedAt,
		Payload: events.TicketRemarkAddedPayload{
			ByRole:      actor.Role,
			TextPreview: stringPreview(text, 120),
		},
	})
	return updated, nil
}

// RecomputeSLA re-derives the deadline from createdAt and the current
// department. It is the only path that moves a deadline after creation.
func (s *TicketService) RecomputeSLA(ctx context.Context, ticket *domain.Ticket, actor domain.Actor, note string) (*domain.Ticket, error) {
	if ticket != nil && ticket.IssueCategory == "" {
		return nil, apperrors.NewInvalidState("ticket has no issue category and no SLA", nil)
	}
	var oldDeadline *time.Time
	updated, err := s.transition(ctx, ticket, "recompute SLA for",
		statuses(domain.TicketStatusNew, domain.TicketStatusAssigned, domain.TicketStatusInProgress, domain.TicketStatusEscalated),
		func(t *domain.Ticket, now time.Time) {
			oldDeadline = t.SLADeadline
			deadline := s.policy.ComputeDeadline(t.CreatedAt, t.AssignedDepartment, t.IssueCategory)
			t.SLADeadline = &deadline
			entry := fmt.Sprintf("deadline %s -> %s", formatDeadline(oldDeadline), deadline.Format(time.RFC3339))
			if note = strings.TrimSpace(note); note != "" {
				entry += "; " + note
			}
			appendHistory(t, domain.ActionSLARecompute, actor, now, entry)
		})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketSLARecomputed,
		TicketID:  updated.ID,
		Actor:     actor,
		Timestamp: updated.UpdatedAt,
		Payload: events.TicketSLARecomputedPayload{
			OldDeadline: oldDeadline,
			NewDeadline: *updated.SLADeadline,
		},
	})
	return updated, nil
}

// statusChange applies a plain status transition with one history entry and
// publishes ticket_status_changed.
func (s *TicketService) statusChange(
	ctx context.Context,
	ticket *domain.Ticket,
	actor domain.Actor,
	operation string,
	action domain.WorkflowAction,
	next domain.TicketStatus,
	note string,
	extra func(*domain.Ticket, time.Time),
	allowed []domain.TicketStatus,
) (*domain.Ticket, error) {
	var old domain.TicketStatus
	updated, err := s.transition(ctx, ticket, operation, allowed, func(t *domain.Ticket, now time.Time) {
		old = t.Status
		t.Status = next
		if extra != nil {
			extra(t, now)
		}
		appendHistory(t, action, actor, now, note)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketStatusChanged,
		TicketID:  updated.ID,
		Actor:     actor,
		Timestamp: updated.UpdatedAt,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: old,
			NewStatus: next,
			Action:    action,
			Note:      note,
		},
	})
	return updated, nil
}

// transition checks the snapshot status, then writes. The recorded metric is
// the last history action of the updated ticket.
func (s *TicketService) transition(ctx context.Context, ticket *domain.Ticket, operation string, allowed []domain.TicketStatus, mutate func(*domain.Ticket, time.Time)) (*domain.Ticket, error) {
	if ticket == nil {
		return nil, apperrors.NewValidationError("ticket is required", nil)
	}
	if !statusIn(ticket.Status, allowed) {
		return nil, apperrors.NewInvalidTransition(operation, string(ticket.Status))
	}
	updated, err := s.write(ctx, ticket, mutate)
	if err != nil {
		return nil, err
	}
	if n := len(updated.History); n > 0 {
		s.metrics.RecordTransition(string(updated.History[n-1].Action))
	}
	return updated, nil
}

// write mutates a clone of the snapshot and stores it iff the stored version
// still equals the snapshot version. The snapshot itself is never modified.
func (s *TicketService) write(ctx context.Context, ticket *domain.Ticket, mutate func(*domain.Ticket, time.Time)) (*domain.Ticket, error) {
	if ticket == nil {
		return nil, apperrors.NewValidationError("ticket is required", nil)
	}
	now := s.clock.Now()
	next := ticket.Clone()
	mutate(next, now)
	next.Version = ticket.Version + 1
	next.UpdatedAt = now

	if err := s.tickets.Update(ctx, next, ticket.Version); err != nil {
		return nil, mapRepoError(err, ticket.ID, ticket.Version)
	}
	return next, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func mapRepoError(err error, id string, expectedVersion int64) error {
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewStaleState(id, expectedVersion)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}

func newHistoryItem(seq int, action domain.WorkflowAction, actor domain.Actor, at time.Time, note string) domain.WorkflowHistoryItem {
	return domain.WorkflowHistoryItem{
		Seq:         seq,
		Action:      action,
		PerformedBy: actor,
		Timestamp:   at,
		Note:        note,
	}
}

func appendHistory(t *domain.Ticket, action domain.WorkflowAction, actor domain.Actor, at time.Time, note string) {
	t.History = append(t.History, newHistoryItem(len(t.History)+1, action, actor, at, note))
}

func statuses(list ...domain.TicketStatus) []domain.TicketStatus {
	return list
}

func statusIn(status domain.TicketStatus, allowed []domain.TicketStatus) bool {
	for _, candidate := range allowed {
		if candidate == status {
			return true
		}
	}
	return false
}

func setWard(t *domain.Ticket, code, name, subCounty, zone string) {
	t.WardCode = &code
	t.WardName = name
	t.SubCounty = subCounty
	t.Zone = zone
}

func firstZone(ward domain.Ward) string {
	if len(ward.Zones) == 0 {
		return ""
	}
	return ward.Zones[0].Name
}

func formatDeadline(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.Format(time.RFC3339)
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func cloneContact(c *domain.Contact) *domain.Contact {
	if c == nil {
		return nil
	}
	out := domain.Contact{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
	}
	if out == (domain.Contact{}) {
		return nil
	}
	return &out
}

// stringPreview shortens body to at most max runes, cutting on a rune boundary.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
