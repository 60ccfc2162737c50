package customfield

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ignite/enquiry-crm/internal/datanorm"
	"github.com/ignite/enquiry-crm/internal/domain"
)

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9_]`)
	repeatedUnders   = regexp.MustCompile(`_{2,}`)
)

// Service validates and stores custom field definitions.
type Service struct {
	repo Repository
}

// NewService creates a custom field service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CleanName lower-cases name, replaces anything outside [a-z0-9_] with an
// underscore, collapses underscore runs and trims them from both ends.
func CleanName(name string) string {
	clean := invalidNameChars.ReplaceAllString(strings.ToLower(name), "_")
	clean = repeatedUnders.ReplaceAllString(clean, "_")
	return strings.Trim(clean, "_")
}

// Create registers a field. The stored key is the cleaned name.
func (s *Service) Create(ctx context.Context, name, label string) (domain.CustomField, error) {
	label = strings.TrimSpace(label)
	if strings.TrimSpace(name) == "" || label == "" {
		return domain.CustomField{}, ErrLabelRequired
	}

	key := CleanName(name)
	if len(key) < 2 {
		return domain.CustomField{}, fmt.Errorf("%w: cleaned name %q is too short", ErrInvalidFieldName, key)
	}
	if datanorm.IsEnquiryField(key) {
		return domain.CustomField{}, fmt.Errorf("%w: %q", ErrReservedName, key)
	}

	f := domain.CustomField{Key: key, Label: label}
	if err := s.repo.Insert(ctx, f); err != nil {
		return domain.CustomField{}, err
	}
	return f, nil
}

// List returns every custom field ordered by key.
func (s *Service) List(ctx context.Context) ([]domain.CustomField, error) {
	fields, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []domain.CustomField{}
	}
	return fields, nil
}

// Delete removes a field by key. Enquiries keep whatever values they already
// hold in followUpInfo.
func (s *Service) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrLabelRequired
	}
	return s.repo.Delete(ctx, key)
}
