package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"estimatehub/internal/model"
	"estimatehub/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type UpdateFieldDefinitionRequest struct {
	Label       *string `json:"label"`
	Description *string `json:"description"`
	ValueType   *string `json:"value_type"`
}

type FieldDefinitionResponse struct {
	ID          string    `json:"id"`
	FieldKey    string    `json:"field_key"`
	Label       string    `json:"label"`
	ValueType   string    `json:"value_type"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UsageCount  int       `json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApproveAllResult reports a partial-failure-tolerant batch: each approval is
// attempted independently and counted, and Definitions is re-fetched from the
// store afterwards rather than reconciled locally.
type ApproveAllResult struct {
	Succeeded   int                       `json:"succeeded"`
	Failed      int                       `json:"failed"`
	Definitions []FieldDefinitionResponse `json:"definitions"`
}

// --- Interface ---

// FieldDefinitionService governs the discoverable field-key schema. Keys enter
// as pending_review when the extraction engine first sees them; only approved
// keys are trusted for future extractions.
type FieldDefinitionService interface {
	List(ctx context.Context, status string, page, limit int) ([]FieldDefinitionResponse, int64, error)
	Approve(ctx context.Context, id string) (FieldDefinitionResponse, error)
	Reject(ctx context.Context, id string) (FieldDefinitionResponse, error)
	Update(ctx context.Context, id string, req UpdateFieldDefinitionRequest) (FieldDefinitionResponse, error)
	Delete(ctx context.Context, id string) error
	ApproveAll(ctx context.Context) (ApproveAllResult, error)
}

type fieldDefinitionService struct {
	repo repository.FieldDefinitionRepository
}

func NewFieldDefinitionService(repo repository.FieldDefinitionRepository) FieldDefinitionService {
	return &fieldDefinitionService{repo: repo}
}

// --- Implementation ---

func (s *fieldDefinitionService) List(ctx context.Context, status string, page, limit int) ([]FieldDefinitionResponse, int64, error) {
	if status != "" && status != model.FieldDefPendingReview && status != model.FieldDefApproved {
		return nil, 0, fmt.Errorf("status must be one of: pending_review, approved")
	}
	defs, total, err := s.repo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch field definitions: %w", err)
	}
	res := make([]FieldDefinitionResponse, 0, len(defs))
	for _, d := range defs {
		res = append(res, toFieldDefinitionResponse(d))
	}
	return res, total, nil
}

func (s *fieldDefinitionService) Approve(ctx context.Context, id string) (FieldDefinitionResponse, error) {
	return s.setStatus(ctx, id, model.FieldDefApproved)
}

// Reject demotes a definition back to pending_review. It is not a delete; the
// route name is kept for the existing admin frontend.
func (s *fieldDefinitionService) Reject(ctx context.Context, id string) (FieldDefinitionResponse, error) {
	return s.setStatus(ctx, id, model.FieldDefPendingReview)
}

func (s *fieldDefinitionService) setStatus(ctx context.Context, id, status string) (FieldDefinitionResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return FieldDefinitionResponse{}, fmt.Errorf("invalid field definition ID")
	}
	if err := s.repo.UpdateStatus(ctx, uid, status); err != nil {
		return FieldDefinitionResponse{}, fmt.Errorf("failed to update status: %w", err)
	}
	def, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return FieldDefinitionResponse{}, fmt.Errorf("field definition not found: %w", err)
	}
	return toFieldDefinitionResponse(*def), nil
}

func (s *fieldDefinitionService) Update(ctx context.Context, id string, req UpdateFieldDefinitionRequest) (FieldDefinitionResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return FieldDefinitionResponse{}, fmt.Errorf("invalid field definition ID")
	}
	def, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return FieldDefinitionResponse{}, fmt.Errorf("field definition not found: %w", err)
	}

	if req.Label != nil {
		if *req.Label == "" {
			return FieldDefinitionResponse{}, fmt.Errorf("label cannot be empty")
		}
		def.Label = *req.Label
	}
	if req.Description != nil {
		def.Description = *req.Description
	}
	if req.ValueType != nil {
		if !validValueTypes[*req.ValueType] {
			return FieldDefinitionResponse{}, fmt.Errorf("value_type must be one of: string, number, bool, date, code")
		}
		def.ValueType = *req.ValueType
	}

	if err := s.repo.Update(ctx, def); err != nil {
		return FieldDefinitionResponse{}, fmt.Errorf("failed to update field definition: %w", err)
	}
	return toFieldDefinitionResponse(*def), nil
}

// Delete is a hard delete with no cascade: item fields referencing the
// definition keep their key, label, and value untouched.
func (s *fieldDefinitionService) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid field definition ID")
	}
	if _, err := s.repo.FindByID(ctx, uid); err != nil {
		return fmt.Errorf("field definition not found: %w", err)
	}
	return s.repo.Delete(ctx, uid)
}

// ApproveAll approves every pending_review definition. Approvals run
// concurrently and independently; one failure does not block the others. The
// returned list is always re-fetched so the admin screen reflects what the
// store actually holds, not a local guess — staleness is costlier than latency
// for a bulk administrative action.
func (s *fieldDefinitionService) ApproveAll(ctx context.Context) (ApproveAllResult, error) {
	pending, err := s.repo.ListAll(ctx, model.FieldDefPendingReview)
	if err != nil {
		return ApproveAllResult{}, fmt.Errorf("failed to fetch pending definitions: %w", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)
	for _, def := range pending {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			err := s.repo.UpdateStatus(ctx, id, model.FieldDefApproved)
			mu.Lock()
			if err != nil {
				failed++
			} else {
				succeeded++
			}
			mu.Unlock()
		}(def.ID)
	}
	wg.Wait()

	defs, err := s.repo.ListAll(ctx, "")
	if err != nil {
		return ApproveAllResult{}, fmt.Errorf("failed to re-fetch definitions: %w", err)
	}
	res := ApproveAllResult{Succeeded: succeeded, Failed: failed}
	res.Definitions = make([]FieldDefinitionResponse, 0, len(defs))
	for _, d := range defs {
		res.Definitions = append(res.Definitions, toFieldDefinitionResponse(d))
	}
	return res, nil
}

// --- Response mappers ---

func toFieldDefinitionResponse(d model.FieldDefinition) FieldDefinitionResponse {
	return FieldDefinitionResponse{
		ID:          d.ID.String(),
		FieldKey:    d.FieldKey,
		Label:       d.Label,
		ValueType:   d.ValueType,
		Description: d.Description,
		Status:      d.Status,
		UsageCount:  d.UsageCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
