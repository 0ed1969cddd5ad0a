package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatewarden/gatewarden/internal/models"
)

var (
	ErrDomainNotFound = errors.New("domain not found")
	ErrDomainExists   = errors.New("domain already exists")
)

// DomainService handles CRUD for protected domains.
type DomainService struct {
	db *gorm.DB
}

// NewDomainService returns a DomainService using the provided DB.
func NewDomainService(db *gorm.DB) *DomainService {
	return &DomainService{db: db}
}

// List returns all domains ordered by name.
func (s *DomainService) List() ([]models.Domain, error) {
	var domains []models.Domain
	if err := s.db.Order("domain_name asc").Find(&domains).Error; err != nil {
		return nil, err
	}
	return domains, nil
}

// GetByUUID retrieves a domain by UUID.
func (s *DomainService) GetByUUID(id string) (*models.Domain, error) {
	var domain models.Domain
	if err := s.db.Where("uuid = ?", id).First(&domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDomainNotFound
		}
		return nil, err
	}
	return &domain, nil
}

// Create inserts a new domain, rejecting duplicate names.
func (s *DomainService) Create(domain *models.Domain) error {
	var existing models.Domain
	err := s.db.Where("domain_name = ?", domain.DomainName).First(&existing).Error
	if err == nil {
		return ErrDomainExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if domain.UUID == "" {
		domain.UUID = uuid.NewString()
	}
	if domain.SecurityLevel == "" {
		domain.SecurityLevel = "moderate"
	}
	return s.db.Create(domain).Error
}

// Update applies changed fields to an existing domain.
func (s *DomainService) Update(domain *models.Domain) error {
	return s.db.Save(domain).Error
}

// Delete removes a domain by UUID.
func (s *DomainService) Delete(id string) error {
	res := s.db.Where("uuid = ?", id).Delete(&models.Domain{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDomainNotFound
	}
	return nil
}

// CountActive returns total and active domain counts.
func (s *DomainService) CountActive() (total int64, active int64, err error) {
	if err = s.db.Model(&models.Domain{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.Model(&models.Domain{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}
