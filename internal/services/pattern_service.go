package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatewarden/gatewarden/internal/models"
	"github.com/gatewarden/gatewarden/internal/waf"
)

// PatternService mirrors the compiled signature catalog into the database
// so the rule set is browsable from the admin surface.
type PatternService struct {
	db *gorm.DB
}

// NewPatternService returns a PatternService using the provided DB.
func NewPatternService(db *gorm.DB) *PatternService {
	return &PatternService{db: db}
}

// List returns all stored attack patterns.
func (s *PatternService) List() ([]models.AttackPattern, error) {
	var patterns []models.AttackPattern
	if err := s.db.Order("id asc").Find(&patterns).Error; err != nil {
		return nil, err
	}
	return patterns, nil
}

// Seed inserts one row per catalog signature, skipping regexes already
// present. Safe to run on every boot.
func (s *PatternService) Seed(catalog *waf.Catalog) (int, error) {
	inserted := 0
	for _, cat := range catalog.Categories() {
		for _, sig := range catalog.Signatures(cat) {
			expr := sig.Pattern.String()

			var existing models.AttackPattern
			err := s.db.Where("pattern_regex = ?", expr).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return inserted, err
			}

			row := models.AttackPattern{
				UUID:         uuid.NewString(),
				PatternName:  string(cat),
				PatternRegex: expr,
				Severity:     string(sig.Severity),
				IsActive:     true,
			}
			if err := s.db.Create(&row).Error; err != nil {
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}
