package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/httpretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c := New(server.URL + "/")
	c.SetHTTPClient(httpretry.NewRetryClient(server.Client(), 2, httpretry.WithDelays(time.Millisecond, 5*time.Millisecond)))
	return c
}

func TestImport_SendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/import", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "leads.csv", header.Filename)
		assert.Equal(t, "email\na@x.com\n", string(data))

		var mappings []domain.FieldMapping
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("mappings")), &mappings))
		assert.Equal(t, "email", mappings[0].TargetField)
		assert.JSONEq(t, `[{"key":"budget","label":"Budget"}]`, r.FormValue("customFields"))

		json.NewEncoder(w).Encode(domain.ImportReport{Imported: 1, TotalRecords: 1, ErrorDetails: []string{}})
	})

	report, err := c.Import(context.Background(), "leads.csv", []byte("email\na@x.com\n"),
		[]domain.FieldMapping{{SourceField: "email", TargetField: "email", IsRequired: true}},
		[]domain.CustomField{{Key: "budget", Label: "Budget"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
}

func TestPreview_OmitsMappings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/import/preview", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.FormValue("mappings"))
		w.Write([]byte(`{"headers":["Email"],"suggestedMappings":[{"sourceField":"Email","targetField":"email","isRequired":true}],"totalRecords":4,"sample":[]}`))
	})

	preview, err := c.Preview(context.Background(), "leads.csv", []byte("Email\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Email"}, preview.Headers)
	assert.Equal(t, 4, preview.TotalRecords)
	assert.Equal(t, "email", preview.SuggestedMappings[0].TargetField)
}

func TestScanDuplicates_DecodesFlattenedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"success":true,"summary":{"totalEnquiries":3,"duplicateGroups":1,"totalDuplicates":2,"uniqueRecords":2,"potentialSavings":1},"duplicateGroups":[{"id":"email_a@x.com","type":"Email Match","count":2,"enquiries":[],"recommended":[{"id":1}]}]}`))
	})

	scan, err := c.ScanDuplicates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, scan.Summary.TotalEnquiries)
	require.Len(t, scan.Groups, 1)
	assert.Equal(t, int64(1), scan.Groups[0].Recommended[0].ID)
}

func TestRemoveDuplicates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"action":"remove","duplicateIds":[4,9]}`, string(body))
		w.Write([]byte(`{"success":true,"removedCount":2,"backupCreated":true,"message":"Successfully removed 2 duplicate entries"}`))
	})

	result, err := c.RemoveDuplicates(context.Background(), []int64{4, 9})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.RemovedCount)
	assert.True(t, result.BackupCreated)
}

func TestRemoveDuplicates_NilIDsSendsEmptyList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"action":"remove","duplicateIds":[]}`, string(body))
		w.Write([]byte(`{"success":true,"removedCount":0}`))
	})

	_, err := c.RemoveDuplicates(context.Background(), nil)
	require.NoError(t, err)
}

func TestBackups(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/admin/backups":
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"trigger":"before migration"}`, string(body))
			w.Write([]byte(`{"success":true,"backup":{"id":7,"type":"Manual","enquiryCount":12,"trigger":"before migration","size":"3 KB"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/backups":
			w.Write([]byte(`{"success":true,"backups":[{"id":7},{"id":6}]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/backups/7/download":
			w.Write([]byte(`{"version":"1.0","enquiries":[]}`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/admin/backups/7/restore":
			w.Write([]byte(`{"success":true,"restoredCount":12}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	snap, err := c.CreateBackup(ctx, "before migration")
	require.NoError(t, err)
	assert.Equal(t, int64(7), snap.ID)
	assert.Equal(t, domain.SnapshotManual, snap.Type)
	assert.Equal(t, 12, snap.EnquiryCount)

	list, err := c.ListBackups(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	data, err := c.DownloadBackup(ctx, 7)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0","enquiries":[]}`, string(data))

	n, err := c.RestoreBackup(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestCreateBackup_EmptyTriggerSendsNoBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.Write([]byte(`{"success":true,"backup":{"id":1}}`))
	})

	_, err := c.CreateBackup(context.Background(), "")
	require.NoError(t, err)
}

func TestMaintenance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/maintenance", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"action":"integrity"}`, string(body))
		w.Write([]byte(`{"success":true,"message":"Integrity check completed. Database health: Excellent","details":{"issues":[]}}`))
	})

	result, err := c.Maintenance(context.Background(), "integrity")
	require.NoError(t, err)
	assert.Equal(t, "Integrity check completed. Database health: Excellent", result.Message)
	assert.JSONEq(t, `{"issues":[]}`, string(result.Details))
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error envelope", http.StatusBadRequest, `{"error":"invalid action or missing duplicateIds"}`, "invalid action or missing duplicateIds"},
		{"plain body", http.StatusNotFound, "404 page not found\n", "404 page not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.ScanDuplicates(context.Background())
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestRetriesUnavailableThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"action":"remove","duplicateIds":[1]}`, string(body), "body must be replayed on retry")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success":true,"removedCount":1}`))
	})

	result, err := c.RemoveDuplicates(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.RemovedCount)
	assert.Equal(t, int32(2), calls.Load())
}
