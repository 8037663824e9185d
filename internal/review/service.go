// Package review orchestrates the draft governance workflow: proposal intake,
// guardrail-gated approval, rejection, revision requests and agentic
// authorization. Every completed or denied operation lands in the audit
// chain.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gxpgovern/internal/auditchain"
	"gxpgovern/internal/draft/models"
	"gxpgovern/internal/draft/store"
	"gxpgovern/internal/guardrail"
	"gxpgovern/internal/regwatch"
	"gxpgovern/internal/regwatch/dedup"
	"gxpgovern/internal/review/metrics"
	id "gxpgovern/pkg/domain"
	dErrors "gxpgovern/pkg/domain-errors"
	"gxpgovern/pkg/platform/sentinel"
	"gxpgovern/pkg/requestcontext"
)

const resourceDraftContent = "draft_content"
const resourceAuditTrail = "audit_trail"

type Service struct {
	drafts    store.DraftStore
	evaluator *guardrail.Evaluator
	ledger    *auditchain.Ledger
	index     dedup.Index
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	locks keyedLocks
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(drafts store.DraftStore, evaluator *guardrail.Evaluator, ledger *auditchain.Ledger, index dedup.Index, opts ...Option) (*Service, error) {
	if drafts == nil {
		return nil, errors.New("draft store is required")
	}
	if evaluator == nil {
		return nil, errors.New("guardrail evaluator is required")
	}
	if ledger == nil {
		return nil, errors.New("audit ledger is required")
	}
	if index == nil {
		return nil, errors.New("dedup index is required")
	}
	svc := &Service{
		drafts:    drafts,
		evaluator: evaluator,
		ledger:    ledger,
		index:     index,
		logger:    slog.Default(),
		tracer:    otel.Tracer("gxpgovern/review"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Propose ingests a new draft. Duplicates of previously proposed regulatory
// inputs are silently absorbed: accepted is false and nothing is stored or
// audited. A successful proposal records a CONTENT_PROPOSED entry.
func (s *Service) Propose(ctx context.Context, actor requestcontext.Actor, draft models.DraftContent) (models.DraftContent, bool, error) {
	ctx, span := s.tracer.Start(ctx, "review.Propose")
	defer span.End()

	if !Can(actor.Role, PermContentPropose) {
		return models.DraftContent{}, false, s.deny(ctx, actor, PermContentPropose, resourceDraftContent, draft.ID.String())
	}
	if draft.ModuleID == "" {
		return models.DraftContent{}, false, dErrors.New(dErrors.CodeValidation, "moduleId is required")
	}
	if strings.TrimSpace(draft.Content) == "" {
		return models.DraftContent{}, false, dErrors.New(dErrors.CodeValidation, "content is required")
	}

	// The fingerprint claim is the dedup gate. AddIfAbsent is atomic, so
	// concurrent proposals of the same input resolve to a single winner;
	// everything after the claim compensates by releasing it on failure.
	fingerprint := regwatch.Fingerprint(draft)
	claimed, err := s.index.AddIfAbsent(ctx, fingerprint)
	if err != nil {
		return models.DraftContent{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "claim draft fingerprint")
	}
	if !claimed {
		s.logger.InfoContext(ctx, "duplicate draft proposal ignored",
			slog.String("module_id", draft.ModuleID),
			slog.String("fingerprint", fingerprint))
		return models.DraftContent{}, false, nil
	}

	if draft.ID.IsNil() {
		draft.ID = id.NewDraftID()
	}
	if draft.GeneratedAt.IsZero() {
		draft.GeneratedAt = time.Now().UTC()
	}
	draft.Status = models.StatusPendingReview
	draft.ReviewedBy = ""
	draft.ReviewedAt = nil
	if draft.Comments == nil {
		draft.Comments = []string{}
	}
	if draft.Sources == nil {
		draft.Sources = []models.SourceLink{}
	}

	if err := s.drafts.Save(ctx, draft); err != nil {
		s.releaseFingerprint(ctx, fingerprint)
		if errors.Is(err, sentinel.ErrConflict) {
			return models.DraftContent{}, false, dErrors.New(dErrors.CodeConflict, "draft already exists")
		}
		return models.DraftContent{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "save draft")
	}

	err = s.appendEntry(ctx, actor, auditchain.ActionContentProposed, draft.ID.String(), map[string]any{
		"moduleId":    draft.ModuleID,
		"changeType":  string(draft.ChangeType),
		"authority":   string(draft.RegulatoryTrigger.Authority),
		"document":    draft.RegulatoryTrigger.Document,
		"fingerprint": fingerprint,
	})
	if err != nil {
		// A proposal without its audit entry must not exist. Unwind the
		// save and release the claim so a retry can go through.
		if delErr := s.drafts.Delete(ctx, draft.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "proposal rollback failed",
				slog.String("draft_id", draft.ID.String()),
				slog.Any("error", delErr))
		}
		s.releaseFingerprint(ctx, fingerprint)
		return models.DraftContent{}, false, err
	}
	s.metrics.IncrementTransition(auditchain.ActionContentProposed)

	s.logger.InfoContext(ctx, "draft proposed",
		slog.String("draft_id", draft.ID.String()),
		slog.String("module_id", draft.ModuleID),
		slog.String("authority", string(draft.RegulatoryTrigger.Authority)))
	return draft, true, nil
}

// ProposeAutomated ingests a draft on behalf of the regulatory watcher. It
// satisfies the poller's Proposer interface.
func (s *Service) ProposeAutomated(ctx context.Context, draft models.DraftContent) (bool, error) {
	ctx = requestcontext.WithActor(ctx, SystemActor)
	_, accepted, err := s.Propose(ctx, SystemActor, draft)
	return accepted, err
}

// Approve transitions a pending draft to approved. The guardrail evaluation
// re-runs at this moment; blocking issues record a CONTENT_APPROVAL_DENIED
// entry and the draft stays pending.
func (s *Service) Approve(ctx context.Context, actor requestcontext.Actor, draftID id.DraftID, comment string) (models.DraftContent, error) {
	ctx, span := s.tracer.Start(ctx, "review.Approve")
	defer span.End()

	if !Can(actor.Role, PermContentApprove) {
		return models.DraftContent{}, s.deny(ctx, actor, PermContentApprove, resourceDraftContent, draftID.String())
	}

	unlock := s.locks.acquire(draftID.String())
	defer unlock()

	draft, err := s.findPending(ctx, draftID, "approved")
	if err != nil {
		return models.DraftContent{}, err
	}

	report := s.evaluator.Evaluate(draft)
	if report.BlockApprove {
		s.metrics.IncrementGuardrailBlock()
		// The denial record is best effort. The block itself must stand
		// even when the ledger is unavailable.
		_ = s.appendEntry(ctx, actor, auditchain.ActionContentApprovalDenied, draftID.String(), map[string]any{
			"moduleId": draft.ModuleID,
			"report":   report,
		})
		s.logger.WarnContext(ctx, "approval blocked by guardrail",
			slog.String("draft_id", draftID.String()),
			slog.Int("issues", len(report.Issues)))
		return models.DraftContent{}, dErrors.WithDetails(dErrors.CodeValidation, "approval blocked by guardrail policy", report)
	}

	prev := draft
	now := time.Now().UTC()
	draft.Status = models.StatusApproved
	draft.ReviewedBy = actor.UserID
	draft.ReviewedAt = &now
	if comment = strings.TrimSpace(comment); comment != "" {
		draft.Comments = append(draft.Comments, comment)
	}
	if err := s.drafts.Update(ctx, draft); err != nil {
		return models.DraftContent{}, dErrors.Wrap(err, dErrors.CodeInternal, "update draft")
	}

	err = s.appendEntry(ctx, actor, auditchain.ActionContentApproved, draftID.String(), map[string]any{
		"moduleId": draft.ModuleID,
		"comment":  comment,
	})
	if err != nil {
		s.revertDraft(ctx, prev)
		return models.DraftContent{}, err
	}
	s.metrics.IncrementTransition(auditchain.ActionContentApproved)
	s.logger.InfoContext(ctx, "draft approved",
		slog.String("draft_id", draftID.String()),
		slog.String("reviewed_by", actor.UserID))
	return draft, nil
}

// Reject archives a pending draft. The comment is mandatory: a refusal for a
// missing comment changes nothing and audits nothing.
func (s *Service) Reject(ctx context.Context, actor requestcontext.Actor, draftID id.DraftID, comment string) (models.DraftContent, error) {
	ctx, span := s.tracer.Start(ctx, "review.Reject")
	defer span.End()

	if !Can(actor.Role, PermContentApprove) {
		return models.DraftContent{}, s.deny(ctx, actor, PermContentApprove, resourceDraftContent, draftID.String())
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return models.DraftContent{}, dErrors.New(dErrors.CodeValidation, "a comment is required to reject a draft")
	}

	unlock := s.locks.acquire(draftID.String())
	defer unlock()

	draft, err := s.findPending(ctx, draftID, "rejected")
	if err != nil {
		return models.DraftContent{}, err
	}

	prev := draft
	now := time.Now().UTC()
	draft.Status = models.StatusArchived
	draft.ReviewedBy = actor.UserID
	draft.ReviewedAt = &now
	draft.Comments = append(draft.Comments, "Rejected: "+comment)
	if err := s.drafts.Update(ctx, draft); err != nil {
		return models.DraftContent{}, dErrors.Wrap(err, dErrors.CodeInternal, "update draft")
	}

	err = s.appendEntry(ctx, actor, auditchain.ActionContentRejected, draftID.String(), map[string]any{
		"moduleId": draft.ModuleID,
		"comment":  comment,
	})
	if err != nil {
		s.revertDraft(ctx, prev)
		return models.DraftContent{}, err
	}
	s.metrics.IncrementTransition(auditchain.ActionContentRejected)
	s.logger.InfoContext(ctx, "draft rejected",
		slog.String("draft_id", draftID.String()),
		slog.String("reviewed_by", actor.UserID))
	return draft, nil
}

// RequestRevision flags a pending draft for rework. The status stays
// pending-review; the mandatory comment carries the reviewer's guidance.
func (s *Service) RequestRevision(ctx context.Context, actor requestcontext.Actor, draftID id.DraftID, comment string) (models.DraftContent, error) {
	ctx, span := s.tracer.Start(ctx, "review.RequestRevision")
	defer span.End()

	if !Can(actor.Role, PermContentApprove) {
		return models.DraftContent{}, s.deny(ctx, actor, PermContentApprove, resourceDraftContent, draftID.String())
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return models.DraftContent{}, dErrors.New(dErrors.CodeValidation, "a comment is required to request a revision")
	}

	unlock := s.locks.acquire(draftID.String())
	defer unlock()

	draft, err := s.findPending(ctx, draftID, "sent back for revision")
	if err != nil {
		return models.DraftContent{}, err
	}

	prev := draft
	now := time.Now().UTC()
	draft.ReviewedBy = actor.UserID
	draft.ReviewedAt = &now
	draft.Comments = append(draft.Comments, "Revision requested: "+comment)
	if err := s.drafts.Update(ctx, draft); err != nil {
		return models.DraftContent{}, dErrors.Wrap(err, dErrors.CodeInternal, "update draft")
	}

	err = s.appendEntry(ctx, actor, auditchain.ActionRevisionRequested, draftID.String(), map[string]any{
		"moduleId": draft.ModuleID,
		"comment":  comment,
	})
	if err != nil {
		s.revertDraft(ctx, prev)
		return models.DraftContent{}, err
	}
	s.metrics.IncrementTransition(auditchain.ActionRevisionRequested)
	return draft, nil
}

// AuthorizeAgentic marks a pending draft as cleared for automated follow-up
// work. The review status itself does not change.
func (s *Service) AuthorizeAgentic(ctx context.Context, actor requestcontext.Actor, draftID id.DraftID) (models.DraftContent, error) {
	ctx, span := s.tracer.Start(ctx, "review.AuthorizeAgentic")
	defer span.End()

	if !Can(actor.Role, PermContentApprove) {
		return models.DraftContent{}, s.deny(ctx, actor, PermContentApprove, resourceDraftContent, draftID.String())
	}

	unlock := s.locks.acquire(draftID.String())
	defer unlock()

	draft, err := s.findPending(ctx, draftID, "cleared for agentic follow-up")
	if err != nil {
		return models.DraftContent{}, err
	}

	prev := draft
	draft.AgenticAuthorized = true
	draft.Comments = append(draft.Comments, "Agentic follow-up authorized")
	if err := s.drafts.Update(ctx, draft); err != nil {
		return models.DraftContent{}, dErrors.Wrap(err, dErrors.CodeInternal, "update draft")
	}

	err = s.appendEntry(ctx, actor, auditchain.ActionAgenticAuthorized, draftID.String(), map[string]any{
		"moduleId": draft.ModuleID,
	})
	if err != nil {
		s.revertDraft(ctx, prev)
		return models.DraftContent{}, err
	}
	s.metrics.IncrementTransition(auditchain.ActionAgenticAuthorized)
	return draft, nil
}

// Get returns one draft. Any authenticated role may read drafts.
func (s *Service) Get(ctx context.Context, draftID id.DraftID) (models.DraftContent, error) {
	draft, err := s.drafts.FindByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.DraftContent{}, dErrors.New(dErrors.CodeNotFound, "draft not found")
		}
		return models.DraftContent{}, dErrors.Wrap(err, dErrors.CodeInternal, "load draft")
	}
	return draft, nil
}

// List returns all drafts in generation order.
func (s *Service) List(ctx context.Context) ([]models.DraftContent, error) {
	drafts, err := s.drafts.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list drafts")
	}
	return drafts, nil
}

// AuditEntries returns the full chain for roles holding audit.read.
func (s *Service) AuditEntries(ctx context.Context, actor requestcontext.Actor) ([]auditchain.Entry, error) {
	if !Can(actor.Role, PermAuditRead) {
		return nil, s.deny(ctx, actor, PermAuditRead, resourceAuditTrail, "")
	}
	return s.ledger.Entries(ctx)
}

// VerifyAudit re-validates the chain and returns its length.
func (s *Service) VerifyAudit(ctx context.Context, actor requestcontext.Actor) (int, error) {
	if !Can(actor.Role, PermAuditRead) {
		return 0, s.deny(ctx, actor, PermAuditRead, resourceAuditTrail, "")
	}
	return s.ledger.VerifyChain(ctx)
}

// findPending loads the draft and enforces the pending-review gate shared by
// every reviewer transition.
func (s *Service) findPending(ctx context.Context, draftID id.DraftID, verb string) (models.DraftContent, error) {
	draft, err := s.drafts.FindByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.DraftContent{}, dErrors.New(dErrors.CodeNotFound, "draft not found")
		}
		return models.DraftContent{}, dErrors.Wrap(err, dErrors.CodeInternal, "load draft")
	}
	if draft.Status != models.StatusPendingReview {
		return models.DraftContent{}, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("only pending-review drafts can be %s (current status: %s)", verb, draft.Status))
	}
	return draft, nil
}

// deny records an ACTION_DENIED entry and returns the forbidden error. Denied
// operations never mutate draft state, so the record is best effort and the
// denial stands even when the ledger is unavailable.
func (s *Service) deny(ctx context.Context, actor requestcontext.Actor, perm Permission, resource, resourceID string) error {
	s.metrics.IncrementDenial()
	_ = s.appendEntryFor(ctx, actor, auditchain.ActionDenied, resource, resourceID, map[string]any{
		"permission": string(perm),
	})
	s.logger.WarnContext(ctx, "operation denied",
		slog.String("user_id", actor.UserID),
		slog.String("role", actor.Role),
		slog.String("permission", string(perm)))
	return dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("role %q lacks permission %s", actor.Role, perm))
}

// revertDraft restores the pre-transition draft after a failed audit append.
func (s *Service) revertDraft(ctx context.Context, prev models.DraftContent) {
	if err := s.drafts.Update(ctx, prev); err != nil {
		s.logger.ErrorContext(ctx, "draft revert failed",
			slog.String("draft_id", prev.ID.String()),
			slog.Any("error", err))
	}
}

// releaseFingerprint gives the dedup claim back after a failed proposal so the
// same input can be proposed again.
func (s *Service) releaseFingerprint(ctx context.Context, fingerprint string) {
	if err := s.index.Remove(ctx, fingerprint); err != nil {
		s.logger.WarnContext(ctx, "fingerprint release failed",
			slog.String("fingerprint", fingerprint),
			slog.Any("error", err))
	}
}

func (s *Service) appendEntry(ctx context.Context, actor requestcontext.Actor, action, resourceID string, details map[string]any) error {
	return s.appendEntryFor(ctx, actor, action, resourceDraftContent, resourceID, details)
}

// appendEntryFor is the transactional audit write. Transitions that commit
// draft state must fail when this fails.
func (s *Service) appendEntryFor(ctx context.Context, actor requestcontext.Actor, action, resource, resourceID string, details map[string]any) error {
	origin := auditchain.OriginHuman
	if actor.Automated {
		origin = auditchain.OriginAutomated
	}
	meta := requestcontext.ClientMetaFrom(ctx)
	entry := auditchain.Entry{
		UserID:     actor.UserID,
		UserName:   actor.UserName,
		ActorRole:  actor.Role,
		Origin:     origin,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details:    details,
	}
	if _, err := s.ledger.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			slog.String("action", action),
			slog.String("resource_id", resourceID),
			slog.Any("error", err))
		return dErrors.Wrap(err, dErrors.CodeInternal, "append audit entry")
	}
	return nil
}

// keyedLocks serializes reviewer transitions per draft id.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) acquire(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
