package contact

import (
	"context"
	"strings"

	"github.com/Domenick1991/parcelbooking/internal/domain"
	"github.com/Domenick1991/parcelbooking/internal/repository"
	"github.com/Domenick1991/parcelbooking/internal/validation"
	"github.com/go-playground/validator/v10"
)

type ContactUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.ContactMessage, error)
	List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactMessage, error)
	SetStatus(ctx context.Context, id int64, status domain.ContactStatus) (*domain.ContactMessage, error)
}

type SubmitInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,phone"`
	Email   string `json:"email" validate:"omitempty,email,max=254"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type ContactService struct {
	repo     repository.ContactRepository
	validate *validator.Validate
}

func NewContactService(repo repository.ContactRepository) *ContactService {
	return &ContactService{repo: repo, validate: validation.New()}
}

func (s *ContactService) Submit(ctx context.Context, input SubmitInput) (*domain.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = validation.NormalizePhone(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	if err := validation.Struct(s.validate, input); err != nil {
		return nil, err
	}

	msg := &domain.ContactMessage{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
		Status:  domain.ContactStatusNew,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactMessage, error) {
	if status != "" && !status.IsValid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown contact status"}
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *ContactService) SetStatus(ctx context.Context, id int64, status domain.ContactStatus) (*domain.ContactMessage, error) {
	if !status.IsValid() {
		return nil, domain.ValidationError{Field: "status", Msg: "must be one of new, in_progress, resolved, spam"}
	}
	return s.repo.SetStatus(ctx, id, status)
}

var _ ContactUseCase = (*ContactService)(nil)
