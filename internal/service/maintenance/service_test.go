package maintenance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps records newest first, the order the store returns them in.
type memStore struct {
	mu        sync.Mutex
	records   []domain.Enquiry
	findErr   error
	deleteErr error
}

func (m *memStore) FindAll(_ context.Context) ([]domain.Enquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	return append([]domain.Enquiry(nil), m.records...), nil
}

func (m *memStore) DeleteMany(_ context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []domain.Enquiry
	var n int64
	for _, e := range m.records {
		if drop[e.ID] {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.records = kept
	return n, nil
}

func (m *memStore) ClearEmails(_ context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		for i := range m.records {
			if m.records[i].ID == id {
				m.records[i].Email = ""
				n++
			}
		}
	}
	return n, nil
}

func (m *memStore) ids() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.records))
	for _, e := range m.records {
		out = append(out, e.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type fakeAnalyzer struct {
	tables []string
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(context.Context) ([]string, error) {
	f.calls++
	return f.tables, f.err
}

type recordingSnapshotter struct {
	triggers []string
	err      error
}

func (r *recordingSnapshotter) CreateSnapshot(_ context.Context, trigger string) (*domain.SnapshotResult, error) {
	r.triggers = append(r.triggers, trigger)
	if r.err != nil {
		return nil, r.err
	}
	return &domain.SnapshotResult{Size: "1 KB"}, nil
}

func enq(id int64, first, email, phone string) domain.Enquiry {
	return domain.Enquiry{ID: id, FirstName: first, Email: email, Phone: phone}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ann@example.com", true},
		{"a.b+c@mail.example.com.au", true},
		{"ann@example", false},
		{"ann example@x.com", false},
		{"@example.com", false},
		{"ann@@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.in))
		})
	}
}

func TestClean(t *testing.T) {
	store := &memStore{records: []domain.Enquiry{
		enq(7, "Ann", "ANN@example.com", ""),
		enq(6, "", "", ""),
		enq(5, "Bob", "not-an-email", "0400 111 222"),
		enq(4, "Ann", " ann@example.com", ""),
		enq(3, "Cat", "cat@example.com", ""),
		enq(2, "Ann", "ann@example.com", "0400 000 000"),
		enq(1, "  ", " ", ""),
	}}
	snaps := &recordingSnapshotter{}
	svc := NewService(store, nil, snaps)

	d, err := svc.Clean(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{TriggerCleanup}, snaps.triggers)
	assert.True(t, d.BackupCreated)
	assert.Equal(t, int64(2), d.EmptyRecords)
	assert.Equal(t, int64(1), d.InvalidEmails)
	assert.Equal(t, int64(2), d.DuplicateEntries)
	assert.Equal(t, int64(5), d.TotalCleaned)

	assert.Equal(t, []int64{2, 3, 5}, store.ids(), "the oldest ann@example.com record is kept")
	for _, e := range store.records {
		if e.ID == 5 {
			assert.Empty(t, e.Email)
		}
	}
}

func TestClean_BlankedEmailsAreNotDuplicates(t *testing.T) {
	store := &memStore{records: []domain.Enquiry{
		enq(2, "Ann", "bad@", ""),
		enq(1, "Bob", "bad@", ""),
	}}
	d, err := NewService(store, nil, nil).Clean(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), d.InvalidEmails)
	assert.Zero(t, d.DuplicateEntries)
	assert.False(t, d.BackupCreated)
	assert.Equal(t, []int64{1, 2}, store.ids())
}

func TestClean_SnapshotFailureDoesNotBlock(t *testing.T) {
	store := &memStore{records: []domain.Enquiry{enq(1, "", "", "")}}
	d, err := NewService(store, nil, &recordingSnapshotter{err: errors.New("disk full")}).Clean(context.Background())
	require.NoError(t, err)
	assert.False(t, d.BackupCreated)
	assert.Equal(t, int64(1), d.EmptyRecords)
}

func TestClean_StoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := NewService(&memStore{findErr: boom}, nil, nil).Clean(context.Background())
	assert.ErrorIs(t, err, boom)

	store := &memStore{deleteErr: boom, records: []domain.Enquiry{enq(1, "", "", "")}}
	_, err = NewService(store, nil, nil).Clean(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCheckIntegrity(t *testing.T) {
	store := &memStore{records: []domain.Enquiry{
		enq(4, "Ann", "ann@example.com", ""),
		enq(3, "", "", ""),
		enq(2, "Bob", "bob@", ""),
		enq(1, "Cat", "", "0400 000 000"),
	}}
	snaps := &recordingSnapshotter{}

	d, err := NewService(store, nil, snaps).CheckIntegrity(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, d.TotalEnquiries)
	assert.Equal(t, 2, d.ValidEnquiries)
	assert.Equal(t, 2, d.InvalidEnquiries)
	assert.Equal(t, []string{
		"Enquiry #3: Missing first name",
		"Enquiry #3: Missing both email and phone",
		"Enquiry #2: Invalid email format",
	}, d.Issues)
	assert.Equal(t, "Good", d.Health)
	assert.Empty(t, snaps.triggers, "integrity check is read-only")
	assert.Len(t, store.records, 4)
}

func TestHealthGrade(t *testing.T) {
	assert.Equal(t, "Excellent", healthGrade(0))
	assert.Equal(t, "Good", healthGrade(4))
	assert.Equal(t, "Fair", healthGrade(5))
	assert.Equal(t, "Fair", healthGrade(9))
	assert.Equal(t, "Poor", healthGrade(10))
}

func TestOptimize(t *testing.T) {
	analyzer := &fakeAnalyzer{tables: []string{"enquiries", "backups", "custom_fields"}}
	snaps := &recordingSnapshotter{}

	d, err := NewService(&memStore{}, analyzer, snaps).Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{TriggerOptimize}, snaps.triggers)
	assert.True(t, d.BackupCreated)
	assert.Equal(t, []string{"enquiries", "backups", "custom_fields"}, d.TablesOptimized)

	analyzer.err = errors.New("permission denied")
	_, err = NewService(&memStore{}, analyzer, nil).Optimize(context.Background())
	assert.ErrorIs(t, err, analyzer.err)
}

func TestRun(t *testing.T) {
	store := &memStore{records: []domain.Enquiry{enq(2, "Ann", "a@x.com", ""), enq(1, "Ann", "a@x.com", "")}}
	svc := NewService(store, &fakeAnalyzer{tables: []string{"enquiries"}}, nil)
	ctx := context.Background()

	res, err := svc.Run(ctx, ActionIntegrity)
	require.NoError(t, err)
	assert.Equal(t, "Integrity check completed. Database health: Excellent", res.Message)

	res, err = svc.Run(ctx, ActionClean)
	require.NoError(t, err)
	assert.Equal(t, "Database cleaned successfully! Removed 1 problematic records.", res.Message)
	assert.IsType(t, &CleanDetails{}, res.Details)

	res, err = svc.Run(ctx, ActionOptimize)
	require.NoError(t, err)
	assert.Equal(t, "Database optimized successfully! Processed 1 tables.", res.Message)

	_, err = svc.Run(ctx, "vacuum")
	assert.ErrorIs(t, err, ErrInvalidAction)
}
