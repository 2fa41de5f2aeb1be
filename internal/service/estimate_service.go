package service

import (
	"context"
	"fmt"
	"time"

	"estimatehub/internal/extraction"
	"estimatehub/internal/model"
	"estimatehub/internal/preview"
	"estimatehub/internal/repository"
	ws "estimatehub/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type EstimateResponse struct {
	ID               string    `json:"id"`
	CompanyID        *string   `json:"company_id"`
	CompanyName      string    `json:"company_name,omitempty"`
	UploaderName     string    `json:"uploader_name,omitempty"`
	FileName         string    `json:"file_name"`
	FileKind         string    `json:"file_kind"`
	ExtractionStatus string    `json:"extraction_status"`
	ExtractionError  string    `json:"extraction_error,omitempty"`
	OCRCustomerName  *string   `json:"ocr_customer_name"`
	TotalPrice       *string   `json:"total_price"`
	CreatedAt        time.Time `json:"created_at"`
}

type EstimateDetailResponse struct {
	EstimateResponse
	OCRGuess *OCRGuessView `json:"ocr_guess"`
	Items    []ItemView    `json:"items"`
}

type ProcessResult struct {
	ItemCount           int `json:"item_count"`
	NewFieldsDiscovered int `json:"new_fields_discovered"`
}

// --- Interface ---

type EstimateService interface {
	List(ctx context.Context, status, search string, page, limit int) ([]EstimateResponse, int64, error)
	Get(ctx context.Context, id string) (EstimateDetailResponse, error)
	Delete(ctx context.Context, id string) error
	Process(ctx context.Context, id string) (ProcessResult, error)
	PreviewURL(ctx context.Context, id string) (string, error)
}

type estimateService struct {
	estimateRepo repository.EstimateRepository
	extractor    extraction.Client
	previews     preview.Provider
	hub          *ws.Hub
}

func NewEstimateService(
	estimateRepo repository.EstimateRepository,
	extractor extraction.Client,
	previews preview.Provider,
	hub *ws.Hub,
) EstimateService {
	return &estimateService{
		estimateRepo: estimateRepo,
		extractor:    extractor,
		previews:     previews,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *estimateService) List(ctx context.Context, status, search string, page, limit int) ([]EstimateResponse, int64, error) {
	estimates, total, err := s.estimateRepo.List(ctx, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch estimates: %w", err)
	}
	res := make([]EstimateResponse, 0, len(estimates))
	for _, e := range estimates {
		res = append(res, toEstimateResponse(e))
	}
	return res, total, nil
}

func (s *estimateService) Get(ctx context.Context, id string) (EstimateDetailResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return EstimateDetailResponse{}, fmt.Errorf("invalid estimate ID")
	}
	est, err := s.estimateRepo.FindByIDWithItems(ctx, uid)
	if err != nil {
		return EstimateDetailResponse{}, fmt.Errorf("estimate not found: %w", err)
	}

	detail := EstimateDetailResponse{EstimateResponse: toEstimateResponse(*est)}
	if est.OCRCustomerName != nil || est.OCRContactName != nil || est.OCRCustomerEmail != nil || est.OCRCustomerPhone != nil {
		detail.OCRGuess = &OCRGuessView{
			Name:        est.OCRCustomerName,
			ContactName: est.OCRContactName,
			Email:       est.OCRCustomerEmail,
			Phone:       est.OCRCustomerPhone,
			Confidence:  est.OCRConfidence,
		}
	}
	detail.Items = make([]ItemView, 0, len(est.Items))
	for _, item := range est.Items {
		detail.Items = append(detail.Items, toItemView(item))
	}
	return detail, nil
}

func (s *estimateService) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid estimate ID")
	}
	if _, err := s.estimateRepo.FindByID(ctx, uid); err != nil {
		return fmt.Errorf("estimate not found: %w", err)
	}
	return s.estimateRepo.Delete(ctx, uid)
}

// Process hands the document to the extraction engine. The engine writes
// items, fields, and newly discovered field definitions to the store itself
// before returning; this service only tracks the status transitions and tells
// connected clients when the document is ready for review.
func (s *estimateService) Process(ctx context.Context, id string) (ProcessResult, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("invalid estimate ID")
	}
	est, err := s.estimateRepo.FindByID(ctx, uid)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("estimate not found: %w", err)
	}
	if est.ExtractionStatus == model.ExtractionProcessing {
		return ProcessResult{}, fmt.Errorf("estimate is already being processed")
	}

	if err := s.estimateRepo.UpdateStatus(ctx, uid, model.ExtractionProcessing, ""); err != nil {
		return ProcessResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	result, err := s.extractor.Process(ctx, uid.String())
	if err != nil {
		_ = s.estimateRepo.UpdateStatus(ctx, uid, model.ExtractionError, err.Error())
		if s.hub != nil {
			s.hub.BroadcastEvent(ws.EventEstimateExtractFailed, map[string]interface{}{
				"estimate_id": uid.String(),
				"error":       err.Error(),
			})
		}
		return ProcessResult{}, fmt.Errorf("extraction failed: %w", err)
	}

	if err := s.estimateRepo.UpdateStatus(ctx, uid, model.ExtractionDone, ""); err != nil {
		return ProcessResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventEstimateExtracted, map[string]interface{}{
			"estimate_id":           uid.String(),
			"item_count":            result.ItemCount,
			"new_fields_discovered": result.NewFieldsDiscovered,
		})
	}

	return ProcessResult{
		ItemCount:           result.ItemCount,
		NewFieldsDiscovered: result.NewFieldsDiscovered,
	}, nil
}

// PreviewURL fetches a time-limited signed URL for inline preview. Failures
// degrade to an "open externally" affordance client-side and never block the
// wizard.
func (s *estimateService) PreviewURL(ctx context.Context, id string) (string, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid estimate ID")
	}
	est, err := s.estimateRepo.FindByID(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("estimate not found: %w", err)
	}
	url, err := s.previews.SignedURL(ctx, est.FileRef)
	if err != nil {
		return "", fmt.Errorf("%w: preview signer: %v", ErrGateway, err)
	}
	return url, nil
}

// --- Response mappers ---

func toEstimateResponse(e model.Estimate) EstimateResponse {
	res := EstimateResponse{
		ID:               e.ID.String(),
		CompanyID:        uuidPtrToString(e.CompanyID),
		FileName:         e.FileName,
		FileKind:         e.FileKind,
		ExtractionStatus: e.ExtractionStatus,
		ExtractionError:  e.ExtractionErrMsg,
		OCRCustomerName:  e.OCRCustomerName,
		CreatedAt:        e.CreatedAt,
	}
	if e.Company != nil {
		res.CompanyName = e.Company.Name
	}
	if e.Uploader != nil {
		res.UploaderName = e.Uploader.Name
	}
	if e.TotalPrice != nil {
		s := e.TotalPrice.StringFixed(2)
		res.TotalPrice = &s
	}
	return res
}
