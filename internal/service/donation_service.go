package service

import (
	"context"
	"encoding/json"

	"donationhub/internal/auth"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/model"
)

// Client-facing upstream failure messages.
const (
	MsgCreateDonationFailed = "Failed to create donation"
	MsgListDonationsFailed  = "Failed to fetch donations"
	MsgUpdateDonationFailed = "Failed to update donation"
)

// DonationAPI is the upstream donation service.
type DonationAPI interface {
	CreateDonation(ctx context.Context, d model.NewDonation) (json.RawMessage, error)
	ListDonations(ctx context.Context) (json.RawMessage, error)
	UpdateStatus(ctx context.Context, u model.DonationStatusUpdate) (json.RawMessage, error)
}

// DonationService forwards donation operations on behalf of a verified identity.
type DonationService interface {
	Create(ctx context.Context, d model.NewDonation) (json.RawMessage, error)
	List(ctx context.Context) (json.RawMessage, error)
	UpdateStatus(ctx context.Context, u model.DonationStatusUpdate) (json.RawMessage, error)
}

type donationService struct {
	api DonationAPI
}

// NewDonationService creates a new donation service.
func NewDonationService(api DonationAPI) DonationService {
	return &donationService{api: api}
}

// Create stamps the donor email from the session in ctx and forwards the donation.
func (s *donationService) Create(ctx context.Context, d model.NewDonation) (json.RawMessage, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	d.DonorEmail = id.Email

	body, err := s.api.CreateDonation(ctx, d)
	if err != nil {
		return nil, apperrors.Upstream(MsgCreateDonationFailed, err)
	}
	return body, nil
}

func (s *donationService) List(ctx context.Context) (json.RawMessage, error) {
	body, err := s.api.ListDonations(ctx)
	if err != nil {
		return nil, apperrors.Upstream(MsgListDonationsFailed, err)
	}
	return body, nil
}

func (s *donationService) UpdateStatus(ctx context.Context, u model.DonationStatusUpdate) (json.RawMessage, error) {
	body, err := s.api.UpdateStatus(ctx, u)
	if err != nil {
		return nil, apperrors.Upstream(MsgUpdateDonationFailed, err)
	}
	return body, nil
}
