package services

import (
	"context"
	"errors"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
)

// AddressService manages the billing and shipping addresses of a user.
type AddressService struct {
	repo repositories.AddressRepository
}

func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *AddressService) CreateAddress(ctx context.Context, userID string, address *models.Address) error {
	address.ID = ""
	address.UserID = userID
	return s.repo.Create(ctx, address)
}

// UpdateAddress replaces the editable fields of an address owned by userID.
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID string, in models.Address) (*models.Address, error) {
	address, err := s.owned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	address.FullName = in.FullName
	address.Line1 = in.Line1
	address.Line2 = in.Line2
	address.City = in.City
	address.State = in.State
	address.PostalCode = in.PostalCode
	address.Country = in.Country
	address.Phone = in.Phone
	if err := s.repo.Update(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if _, err := s.owned(ctx, userID, addressID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, addressID)
}

// ValidateOwnership reports ErrAddressNotFound unless the address exists and
// belongs to userID. Foreign addresses are indistinguishable from missing ones.
func (s *AddressService) ValidateOwnership(ctx context.Context, userID, addressID string) (*models.Address, error) {
	address, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *AddressService) owned(ctx context.Context, userID, addressID string) (*models.Address, error) {
	address, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrForbidden
	}
	return address, nil
}
