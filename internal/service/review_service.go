package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"estimatehub/internal/model"
	"estimatehub/internal/repository"
	ws "estimatehub/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type StartSessionRequest struct {
	EstimateIDs []string `json:"estimate_ids" binding:"required,min=1"`
}

type AssignmentRequest struct {
	Mode      string `json:"mode" binding:"required,oneof=ocr existing create none"`
	CompanyID string `json:"company_id"`
}

// --- Interface ---

// ReviewService drives the batch review wizard: N documents, two fixed steps
// each (Customer, LineItems), finished one at a time and in order. Sessions
// are server-side and in-memory; the single-editor assumption makes that
// acceptable for this tool.
type ReviewService interface {
	StartSession(ctx context.Context, req StartSessionRequest) (SessionView, error)
	GetSession(ctx context.Context, sessionID string) (SessionView, error)
	AdvanceStep(ctx context.Context, sessionID string) (SessionView, error)
	RetreatStep(ctx context.Context, sessionID string) (SessionView, error)
	JumpToDocument(ctx context.Context, sessionID string, index int) (SessionView, error)
	SetAssignment(ctx context.Context, sessionID string, req AssignmentRequest) (SessionView, error)
	FinishCurrentDocument(ctx context.Context, sessionID string) (SessionView, error)

	UpdateItem(ctx context.Context, sessionID, itemID string, req UpdateItemRequest) (SessionView, error)
	DeleteItem(ctx context.Context, sessionID, itemID string) (SessionView, error)
	UpdateField(ctx context.Context, sessionID, fieldID string, req UpdateFieldRequest) (SessionView, error)
	AddField(ctx context.Context, sessionID, itemID string, req AddFieldRequest) (SessionView, error)
	DeleteField(ctx context.Context, sessionID, fieldID string) (SessionView, error)

	SweepExpired()
}

type reviewService struct {
	estimateRepo repository.EstimateRepository
	itemRepo     repository.ItemRepository
	companyRepo  repository.CompanyRepository
	fieldDefRepo repository.FieldDefinitionRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub

	mu       sync.RWMutex
	sessions map[uuid.UUID]*reviewSession
	ttl      time.Duration
}

func NewReviewService(
	estimateRepo repository.EstimateRepository,
	itemRepo repository.ItemRepository,
	companyRepo repository.CompanyRepository,
	fieldDefRepo repository.FieldDefinitionRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ReviewService {
	return &reviewService{
		estimateRepo: estimateRepo,
		itemRepo:     itemRepo,
		companyRepo:  companyRepo,
		fieldDefRepo: fieldDefRepo,
		txManager:    txManager,
		hub:          hub,
		sessions:     make(map[uuid.UUID]*reviewSession),
		ttl:          2 * time.Hour,
	}
}

// --- Session store ---

func (s *reviewService) getSession(sessionID string) (*reviewSession, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SweepExpired drops sessions idle past the TTL. Wired to the cron scheduler
// in main.
func (s *reviewService) SweepExpired() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastActive.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
		}
	}
}

// --- Orchestrator ---

// StartSession loads every estimate's full item/field tree once. The whole
// load fails if any estimate is missing or its extraction is not done.
func (s *reviewService) StartSession(ctx context.Context, req StartSessionRequest) (SessionView, error) {
	docs := make([]*sessionDocument, 0, len(req.EstimateIDs))
	for _, raw := range req.EstimateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return SessionView{}, fmt.Errorf("invalid estimate ID %q", raw)
		}
		est, err := s.estimateRepo.FindByIDWithItems(ctx, id)
		if err != nil {
			return SessionView{}, fmt.Errorf("estimate %s not found: %w", raw, err)
		}
		if est.ExtractionStatus != model.ExtractionDone {
			return SessionView{}, fmt.Errorf("estimate %s is not ready for review (status %s)", raw, est.ExtractionStatus)
		}

		doc := &sessionDocument{estimate: est}
		// Resolve the extracted guess against the directory up front so the
		// UI can enable/disable the OCR option.
		if est.OCRCustomerName != nil && strings.TrimSpace(*est.OCRCustomerName) != "" {
			if match, err := s.companyRepo.FindByName(ctx, strings.TrimSpace(*est.OCRCustomerName)); err == nil {
				doc.assignment.ocrMatchID = &match.ID
				doc.assignment.ocrMatchName = match.Name
			}
		}
		// An estimate that already carries a bound customer keeps it; retrying
		// a finish must not rebind.
		if est.CompanyID != nil {
			doc.assignment.boundCompanyID = est.CompanyID
		}
		docs = append(docs, doc)
	}

	sess := newReviewSession(docs)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return toSessionView(sess), nil
}

func (s *reviewService) GetSession(_ context.Context, sessionID string) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	return toSessionView(sess), nil
}

func (s *reviewService) AdvanceStep(_ context.Context, sessionID string) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	sess.advanceStep()
	return toSessionView(sess), nil
}

func (s *reviewService) RetreatStep(_ context.Context, sessionID string) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	sess.retreatStep()
	return toSessionView(sess), nil
}

func (s *reviewService) JumpToDocument(_ context.Context, sessionID string, index int) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	if !sess.jumpToDocument(index) {
		return SessionView{}, fmt.Errorf("document index %d out of range", index)
	}
	return toSessionView(sess), nil
}

// SetAssignment records the customer decision for the current document. No
// persistence happens here; the write is deferred to FinishCurrentDocument.
func (s *reviewService) SetAssignment(_ context.Context, sessionID string, req AssignmentRequest) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	if sess.completed {
		return SessionView{}, ErrSessionCompleted
	}

	doc := sess.current()
	a := &doc.assignment
	a.mode = req.Mode
	a.noCustomer = req.Mode == AssignModeNone
	a.companyID = nil
	if req.Mode == AssignModeExisting {
		if req.CompanyID == "" {
			return SessionView{}, fmt.Errorf("company_id is required for existing mode")
		}
		cid, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return SessionView{}, fmt.Errorf("invalid company_id")
		}
		a.companyID = &cid
	}
	return toSessionView(sess), nil
}

// FinishCurrentDocument commits the resolved customer assignment and advances
// the wizard. If persistence fails the indices stay put so the user can retry;
// a company already created by a previous attempt is reused, not duplicated.
func (s *reviewService) FinishCurrentDocument(ctx context.Context, sessionID string) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()
	if sess.completed {
		return SessionView{}, ErrSessionCompleted
	}
	if sess.stepIndex != StepLineItems {
		return SessionView{}, fmt.Errorf("line items step not reached")
	}

	doc := sess.current()
	if !doc.canProceed() {
		return SessionView{}, fmt.Errorf("customer assignment is not resolved")
	}

	companyID, err := s.resolveAssignment(ctx, doc)
	if err != nil {
		return SessionView{}, err
	}

	if err := s.estimateRepo.UpdateAssignment(ctx, doc.estimate.ID, companyID); err != nil {
		return SessionView{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	doc.estimate.CompanyID = companyID
	doc.assignment.boundCompanyID = companyID

	sess.completeCurrent()

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventReviewDocumentCompleted, map[string]interface{}{
			"session_id":  sess.id.String(),
			"estimate_id": doc.estimate.ID.String(),
			"completed":   sess.completed,
		})
	}

	return toSessionView(sess), nil
}

// resolveAssignment turns the recorded mode into a company ID to bind,
// creating a directory entry from the guess for create mode. Create-then-bind
// is two sequential calls, not a transaction; boundCompanyID makes the retry
// path reuse the row instead of inserting twice.
func (s *reviewService) resolveAssignment(ctx context.Context, doc *sessionDocument) (*uuid.UUID, error) {
	a := &doc.assignment
	switch a.mode {
	case AssignModeNone:
		return nil, nil
	case AssignModeOCR:
		return a.ocrMatchID, nil
	case AssignModeExisting:
		return a.companyID, nil
	case AssignModeCreate:
		if a.boundCompanyID != nil {
			return a.boundCompanyID, nil
		}
		company := companyFromGuess(doc.estimate)
		if err := s.companyRepo.Create(ctx, company); err != nil {
			return nil, fmt.Errorf("%w: create company: %v", ErrGateway, err)
		}
		a.boundCompanyID = &company.ID
		return &company.ID, nil
	default:
		return nil, fmt.Errorf("customer assignment is not resolved")
	}
}

// companyFromGuess builds a new directory entry out of the extracted-customer
// guess, folding the loose contact bits into the notes field.
func companyFromGuess(est *model.Estimate) *model.Company {
	company := &model.Company{}
	if est.OCRCustomerName != nil {
		company.Name = strings.TrimSpace(*est.OCRCustomerName)
	}
	if est.OCRContactName != nil {
		company.ContactPerson = strings.TrimSpace(*est.OCRContactName)
	}
	if est.OCRCustomerEmail != nil {
		company.Email = strings.TrimSpace(*est.OCRCustomerEmail)
	}
	if est.OCRCustomerPhone != nil {
		company.Phone = strings.TrimSpace(*est.OCRCustomerPhone)
	}

	notes := []string{fmt.Sprintf("Created from estimate %s", est.FileName)}
	if company.ContactPerson != "" {
		notes = append(notes, "Contact: "+company.ContactPerson)
	}
	if company.Email != "" {
		notes = append(notes, "Email: "+company.Email)
	}
	if company.Phone != "" {
		notes = append(notes, "Phone: "+company.Phone)
	}
	company.Notes = strings.Join(notes, "\n")
	return company
}
