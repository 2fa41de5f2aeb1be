package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"estimatehub/internal/model"
	"estimatehub/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCompanyRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Notes         string `json:"notes"`
}

type CompanyResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// --- Interface ---

type CompanyService interface {
	CreateCompany(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error)
	GetCompany(ctx context.Context, id string) (CompanyResponse, error)
	GetCompanies(ctx context.Context, search string, page, limit int) ([]CompanyResponse, int64, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

// --- Implementation ---

func (s *companyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error) {
	if req.Name == "" {
		return CompanyResponse{}, fmt.Errorf("name is required")
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return CompanyResponse{}, fmt.Errorf("invalid email format")
		}
	}

	company := &model.Company{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Notes:         req.Notes,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return CompanyResponse{}, fmt.Errorf("failed to create company: %w", err)
	}
	return toCompanyResponse(*company), nil
}

func (s *companyService) GetCompany(ctx context.Context, id string) (CompanyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return CompanyResponse{}, fmt.Errorf("invalid company ID")
	}
	company, err := s.companyRepo.FindByID(ctx, uid)
	if err != nil {
		return CompanyResponse{}, fmt.Errorf("company not found: %w", err)
	}
	return toCompanyResponse(*company), nil
}

func (s *companyService) GetCompanies(ctx context.Context, search string, page, limit int) ([]CompanyResponse, int64, error) {
	companies, total, err := s.companyRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch companies: %w", err)
	}
	res := make([]CompanyResponse, 0, len(companies))
	for _, c := range companies {
		res = append(res, toCompanyResponse(c))
	}
	return res, total, nil
}

// --- Response mappers ---

func toCompanyResponse(c model.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
