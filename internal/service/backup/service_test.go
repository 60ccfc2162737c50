package backup

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEnquiries struct {
	mu         sync.Mutex
	records    []domain.Enquiry
	replaceErr error
	nextID     int64
}

func (m *memEnquiries) FindAll(_ context.Context) ([]domain.Enquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Enquiry(nil), m.records...), nil
}

func (m *memEnquiries) ReplaceAll(_ context.Context, es []domain.Enquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.records = nil
	for _, e := range es {
		m.nextID++
		e.ID = m.nextID
		m.records = append(m.records, e)
	}
	return nil
}

type memBackups struct {
	mu       sync.Mutex
	rows     []*domain.Snapshot
	payloads map[int64][]byte
	lastErr  error
	nextID   int64
}

func newMemBackups() *memBackups { return &memBackups{payloads: map[int64][]byte{}} }

func (m *memBackups) Insert(_ context.Context, s *domain.Snapshot, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.rows = append(m.rows, s)
	m.payloads[s.ID] = payload
	return nil
}

func (m *memBackups) LastCreatedAt(_ context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastErr != nil {
		return time.Time{}, false, m.lastErr
	}
	if len(m.rows) == 0 {
		return time.Time{}, false, nil
	}
	return m.rows[len(m.rows)-1].CreatedAt, true, nil
}

func (m *memBackups) SetArchiveKey(_ context.Context, id int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			r.ArchiveKey = key
			return nil
		}
	}
	return ErrNotFound
}

func (m *memBackups) Prune(_ context.Context, keep int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) <= keep {
		return 0, nil
	}
	drop := m.rows[:len(m.rows)-keep]
	for _, r := range drop {
		delete(m.payloads, r.ID)
	}
	m.rows = m.rows[len(m.rows)-keep:]
	return int64(len(drop)), nil
}

func (m *memBackups) List(_ context.Context) ([]domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Snapshot, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memBackups) Data(_ context.Context, id int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payloads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *memBackups) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			delete(m.payloads, id)
			return nil
		}
	}
	return ErrNotFound
}

type memArchive struct {
	objects map[string][]byte
	err     error
}

func (a *memArchive) Put(_ context.Context, key string, data []byte) error {
	if a.err != nil {
		return a.err
	}
	if a.objects == nil {
		a.objects = map[string][]byte{}
	}
	a.objects[key] = data
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(enq *memEnquiries, repo *memBackups, archive Archive) (*Service, *clock) {
	c := &clock{t: time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)}
	svc := NewService(enq, repo, archive, DefaultOptions())
	svc.now = c.now
	return svc, c
}

func sampleEnquiries() *memEnquiries {
	return &memEnquiries{nextID: 10, records: []domain.Enquiry{
		{ID: 2, FirstName: "Bob", Email: "bob@example.com", State: "Victoria", Status: domain.StatusNew},
		{ID: 1, FirstName: "Ann", Email: "ann@example.com", State: "Queensland", Status: domain.StatusSold},
	}}
}

func TestCreateSnapshot_WritesPayload(t *testing.T) {
	repo := newMemBackups()
	svc, c := newTestService(sampleEnquiries(), repo, nil)

	res, err := svc.CreateSnapshot(context.Background(), "CSV import: 2 records from leads.csv")
	require.NoError(t, err)
	require.NotNil(t, res.Snapshot)
	assert.False(t, res.Skipped)
	assert.Equal(t, domain.SnapshotAuto, res.Snapshot.Type)
	assert.Equal(t, 2, res.Snapshot.EnquiryCount)
	assert.Equal(t, "Complete", res.Snapshot.Status)
	assert.Equal(t, res.Snapshot.SizeDescriptor(), res.Size)

	var payload domain.SnapshotPayload
	require.NoError(t, json.Unmarshal(repo.payloads[res.Snapshot.ID], &payload))
	assert.Equal(t, "1.0", payload.Version)
	assert.Equal(t, "CSV import: 2 records from leads.csv", payload.Trigger)
	assert.True(t, payload.Timestamp.Equal(c.t))
	assert.Len(t, payload.Enquiries, 2)
}

func TestCreateSnapshot_Throttle(t *testing.T) {
	tests := []struct {
		name     string
		trigger  string
		since    time.Duration
		wantSkip bool
	}{
		{"new enquiry inside window", TriggerNewEnquiry, 59 * time.Minute, true},
		{"new enquiry after window", TriggerNewEnquiry, 60 * time.Minute, false},
		{"update inside window", TriggerUpdate, 29 * time.Minute, true},
		{"update after window", TriggerUpdate, 31 * time.Minute, false},
		{"critical ignores window", "Duplicate removal: 3 records", time.Second, false},
		{"unknown trigger always runs", "Data update", time.Second, false},
		{"scheduled always runs", TriggerScheduled, time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemBackups()
			svc, c := newTestService(sampleEnquiries(), repo, nil)

			_, err := svc.CreateManual(context.Background(), "")
			require.NoError(t, err)
			c.advance(tt.since)

			res, err := svc.CreateSnapshot(context.Background(), tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, res.Skipped)
			if tt.wantSkip {
				assert.Equal(t, "Backup not needed at this time", res.Reason)
				assert.Len(t, repo.rows, 1)
			} else {
				assert.Len(t, repo.rows, 2)
			}
		})
	}
}

func TestCreateSnapshot_FirstEverSnapshotNotThrottled(t *testing.T) {
	repo := newMemBackups()
	svc, _ := newTestService(sampleEnquiries(), repo, nil)

	res, err := svc.CreateSnapshot(context.Background(), TriggerNewEnquiry)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
}

func TestCreateSnapshot_LastTimeErrorDefaultsToSnapshot(t *testing.T) {
	repo := newMemBackups()
	repo.lastErr = errors.New("relation backups does not exist")
	svc, _ := newTestService(sampleEnquiries(), repo, nil)

	res, err := svc.CreateSnapshot(context.Background(), TriggerUpdate)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Len(t, repo.rows, 1)
}

func TestCreateSnapshot_PrunesToRetention(t *testing.T) {
	repo := newMemBackups()
	svc, c := newTestService(sampleEnquiries(), repo, nil)
	svc.opts.Retain = 3

	for i := 0; i < 5; i++ {
		_, err := svc.CreateSnapshot(context.Background(), "Database cleanup")
		require.NoError(t, err)
		c.advance(time.Minute)
	}
	list, _ := svc.List(context.Background())
	require.Len(t, list, 3)
	assert.Equal(t, int64(5), list[0].ID)
	assert.Equal(t, int64(3), list[2].ID)
}

func TestCreateManual_DefaultTriggerAndType(t *testing.T) {
	repo := newMemBackups()
	svc, _ := newTestService(sampleEnquiries(), repo, nil)

	res, err := svc.CreateManual(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, domain.SnapshotManual, res.Snapshot.Type)
	assert.Equal(t, TriggerManual, res.Snapshot.Trigger)
}

func TestCreateSnapshot_ArchivesCopy(t *testing.T) {
	archive := &memArchive{}
	repo := newMemBackups()
	svc, _ := newTestService(sampleEnquiries(), repo, archive)

	res, err := svc.CreateSnapshot(context.Background(), "Manual backup")
	require.NoError(t, err)

	require.Len(t, archive.objects, 1)
	key := res.Snapshot.ArchiveKey
	assert.True(t, strings.HasPrefix(key, "snapshots/2024/05/10/1-"), key)
	assert.True(t, strings.HasSuffix(key, ".json"), key)
	assert.Equal(t, repo.payloads[1], archive.objects[key])
	assert.Equal(t, key, repo.rows[0].ArchiveKey)
}

func TestCreateSnapshot_ArchiveFailureIsNotFatal(t *testing.T) {
	svc, _ := newTestService(sampleEnquiries(), newMemBackups(), &memArchive{err: errors.New("AccessDenied")})

	res, err := svc.CreateSnapshot(context.Background(), "Manual backup")
	require.NoError(t, err)
	assert.Empty(t, res.Snapshot.ArchiveKey)
}

func TestRestore(t *testing.T) {
	enq := sampleEnquiries()
	repo := newMemBackups()
	svc, _ := newTestService(enq, repo, nil)
	ctx := context.Background()

	res, err := svc.CreateManual(ctx, "")
	require.NoError(t, err)

	enq.records = enq.records[:1]

	n, err := svc.Restore(ctx, res.Snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, enq.records, 2)
	assert.Equal(t, int64(11), enq.records[0].ID, "restored rows get fresh ids")
	assert.Equal(t, "Bob", enq.records[0].FirstName)

	list, _ := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, TriggerPreRestore, list[0].Trigger)
	assert.Equal(t, 1, list[0].EnquiryCount)
}

func TestRestore_Errors(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService(sampleEnquiries(), newMemBackups(), nil)
	_, err := svc.Restore(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	repo := newMemBackups()
	repo.payloads[7] = []byte("not json")
	repo.rows = append(repo.rows, &domain.Snapshot{ID: 7})
	svc, _ = newTestService(sampleEnquiries(), repo, nil)
	_, err = svc.Restore(ctx, 7)
	assert.ErrorIs(t, err, ErrCorruptPayload)

	enq := sampleEnquiries()
	enq.replaceErr = errors.New("tx aborted")
	repo = newMemBackups()
	svc, _ = newTestService(enq, repo, nil)
	res, err := svc.CreateManual(ctx, "")
	require.NoError(t, err)
	_, err = svc.Restore(ctx, res.Snapshot.ID)
	assert.Error(t, err)
	assert.Len(t, enq.records, 2, "failed restore leaves the store alone")
}

func TestDelete(t *testing.T) {
	repo := newMemBackups()
	svc, _ := newTestService(sampleEnquiries(), repo, nil)
	ctx := context.Background()

	res, err := svc.CreateManual(ctx, "")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, res.Snapshot.ID))
	assert.ErrorIs(t, svc.Delete(ctx, res.Snapshot.ID), ErrNotFound)
	_, err = svc.Data(ctx, res.Snapshot.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 KB", domain.FormatSizeKB(0))
	assert.Equal(t, "1024 KB", domain.FormatSizeKB(1024))
	assert.Equal(t, "1.5 MB", domain.FormatSizeKB(1536))
}
