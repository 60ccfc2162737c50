package customfield

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// mockRepo is an in-memory repository for testing.
type mockRepo struct {
	mu     sync.RWMutex
	fields map[string]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{fields: make(map[string]string)}
}

func (m *mockRepo) List(_ context.Context) ([]domain.CustomField, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.CustomField
	for k, v := range m.fields {
		out = append(out, domain.CustomField{Key: k, Label: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *mockRepo) Insert(_ context.Context, f domain.CustomField) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[f.Key]; ok {
		return ErrFieldExists
	}
	m.fields[f.Key] = f.Label
	return nil
}

func (m *mockRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[key]; !ok {
		return ErrNotFound
	}
	delete(m.fields, key)
	return nil
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Favourite Colour", "favourite_colour"},
		{"  Lesson--Day!! ", "lesson_day"},
		{"__piano__model__", "piano_model"},
		{"Grade 8", "grade_8"},
		{"Ünïcode", "n_code"},
		{"a", "a"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreate(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	f, err := svc.Create(ctx, "Favourite Colour", "  Favourite colour ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.Key != "favourite_colour" || f.Label != "Favourite colour" {
		t.Errorf("field = %+v", f)
	}

	fields, _ := svc.List(ctx)
	if len(fields) != 1 || fields[0].Key != "favourite_colour" {
		t.Errorf("List = %+v", fields)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name, field, label string
		wantErr            error
	}{
		{"missing label", "colour", " ", ErrLabelRequired},
		{"missing name", "", "Colour", ErrLabelRequired},
		{"too short after cleaning", "!a!", "A", ErrInvalidFieldName},
		{"standard field", "Email", "Email", ErrReservedName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(newMockRepo()).Create(context.Background(), tt.field, tt.label)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreate_Duplicate(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Tutor Name", "Tutor"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "tutor_name", "Tutor again"); !errors.Is(err, ErrFieldExists) {
		t.Errorf("expected ErrFieldExists, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "grade", "Grade"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, "grade"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "grade"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	fields, err := svc.List(ctx)
	if err != nil || fields == nil || len(fields) != 0 {
		t.Errorf("List = %#v, %v", fields, err)
	}
}
