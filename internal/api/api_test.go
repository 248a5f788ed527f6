package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/record"
	"github.com/roach88/updatelog/internal/testutil"
)

func newTestServer(t *testing.T) (http.Handler, *engine.Engine) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(testutil.NewStore(t),
		engine.WithLogger(logger),
		engine.WithBatchIDs(engine.NewFixedGenerator("batch-1", "batch-2")))
	srv := New(eng, logger, Options{CORSOrigins: []string{"https://updates.example.com"}})
	return srv.Routes(), eng
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seed(t *testing.T, eng *engine.Engine, clients ...string) []record.Record {
	t.Helper()
	out := make([]record.Record, len(clients))
	for i, c := range clients {
		r, err := eng.Create(context.Background(), c, record.Content{Address: c + " HQ"})
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestCreateMeeting(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/meetings", `{"client":"Acme","actions":"call back"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[record.Record](t, rec)
	assert.Equal(t, "Acme", got.Client)
	assert.Equal(t, "call back", got.Actions)
	assert.Equal(t, int64(1), got.GlobalOrder)
	assert.Equal(t, int64(1), got.ClientOrder)
	assert.Equal(t, int64(1), got.ClientFirstAppearance)
}

func TestCreateMeeting_Validation(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing client", `{"actions":"x"}`, "client is required"},
		{"blank client", `{"client":"   ","actions":"x"}`, "client label is empty"},
		{"unknown field", `{"client":"Acme","agenda":"x"}`, "Invalid request body"},
		{"malformed", `{"client":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/meetings", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.True(t, resp.Error)
			assert.Contains(t, resp.Message, tt.want)
		})
	}
}

func TestListMeetings_DisplayOrderAndFilter(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Globex", "Acme Corp", "Globex", "acme labs")

	rec := do(t, h, http.MethodGet, "/api/meetings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]record.Record](t, rec)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{1, 3, 2, 4}, []int64{all[0].GlobalOrder, all[1].GlobalOrder, all[2].GlobalOrder, all[3].GlobalOrder})

	rec = do(t, h, http.MethodGet, "/api/meetings?client=ACME", "")
	require.Equal(t, http.StatusOK, rec.Code)
	filtered := decode[[]record.Record](t, rec)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Acme Corp", filtered[0].Client)
	assert.Equal(t, "acme labs", filtered[1].Client)
}

func TestListGroups(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Globex", "Acme", "Globex")

	rec := do(t, h, http.MethodGet, "/api/groups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]engine.Group](t, rec)
	require.Len(t, groups, 2)
	assert.Equal(t, "Globex", groups[0].Client)
	assert.Len(t, groups[0].Records, 2)
}

func TestGetMeeting(t *testing.T) {
	h, eng := newTestServer(t)
	r := seed(t, eng, "Acme")[0]

	rec := do(t, h, http.MethodGet, "/api/meetings/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, r.ID, decode[record.Record](t, rec).ID)

	rec = do(t, h, http.MethodGet, "/api/meetings/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Meeting not found", decode[ErrorResponse](t, rec).Message)

	rec = do(t, h, http.MethodGet, "/api/meetings/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMeeting_Rename(t *testing.T) {
	h, eng := newTestServer(t)
	recs := seed(t, eng, "Acme", "Acme", "Globex")

	rec := do(t, h, http.MethodPut, "/api/meetings/1", `{"client":"Globex","actions":"moved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[record.Record](t, rec)
	assert.Equal(t, "Globex", got.Client)
	assert.Equal(t, int64(2), got.ClientOrder)
	assert.Equal(t, recs[2].ClientFirstAppearance, got.ClientFirstAppearance)

	rec = do(t, h, http.MethodPut, "/api/meetings/42", `{"client":"Globex"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteMeeting(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Acme")

	rec := do(t, h, http.MethodDelete, "/api/meetings/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[MessageResponse](t, rec).Count)

	rec = do(t, h, http.MethodDelete, "/api/meetings/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkDelete(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Acme", "Acme", "Globex")

	rec := do(t, h, http.MethodPost, "/api/meetings/bulk-delete", `{"meeting_ids":[1,3,77]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[MessageResponse](t, rec).Count)

	rec = do(t, h, http.MethodPost, "/api/meetings/bulk-delete", `{"meeting_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReorder(t *testing.T) {
	h, eng := newTestServer(t)
	recs := seed(t, eng, "Acme", "Acme", "Acme", "Globex")

	rec := do(t, h, http.MethodPost, "/api/meetings/reorder", `{"dragged_id":3,"target_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, decode[MessageResponse](t, rec).Count)

	moved, err := eng.Get(context.Background(), recs[2].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved.ClientOrder)

	rec = do(t, h, http.MethodPost, "/api/meetings/reorder", `{"dragged_id":1,"target_id":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "cannot reorder across clients")

	rec = do(t, h, http.MethodPost, "/api/meetings/reorder", `{"dragged_id":1,"target_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenumber(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Acme", "Acme", "Acme")
	_, err := eng.Delete(context.Background(), 2)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/api/meetings/renumber", `{"client":"Acme"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[MessageResponse](t, rec).Count)

	rec = do(t, h, http.MethodPost, "/api/meetings/renumber", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[MessageResponse](t, rec).Count)
}

func TestClientsAddressesStats(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Globex", "Acme", "Globex")

	rec := do(t, h, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []ClientResponse{{Name: "Globex"}, {Name: "Acme"}}, decode[[]ClientResponse](t, rec))

	rec = do(t, h, http.MethodGet, "/api/clients/Globex/addresses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []AddressResponse{{Address: "Globex HQ"}}, decode[[]AddressResponse](t, rec))

	rec = do(t, h, http.MethodGet, "/api/dashboard/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatsResponse{TotalClients: 2, TotalMeetings: 3}, decode[StatsResponse](t, rec))
}

func upload(t *testing.T, h http.Handler, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestImport(t *testing.T) {
	h, eng := newTestServer(t)

	rec := upload(t, h, "march.csv", "Client,Actions\nAcme,call\n,\nGlobex,visit\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ImportResponse](t, rec)
	assert.Equal(t, "batch-1", resp.BatchID)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, "Successfully imported 2 meetings", resp.Message)

	records, err := eng.List(context.Background(), record.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(3), records[1].GlobalOrder)
}

func TestImport_Errors(t *testing.T) {
	h, _ := newTestServer(t)

	rec := upload(t, h, "notes.txt", "hello")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "unsupported import format")

	rec = do(t, h, http.MethodPost, "/api/import", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCSV(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Globex", "Acme", "Globex")

	rec := do(t, h, http.MethodPost, "/api/export/csv", `{"meeting_ids":[1,2,3]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "attachment; filename=meetings_export.csv", rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "Globex,1,"))
	assert.True(t, strings.HasPrefix(lines[2], "Globex,2,"))
	assert.True(t, strings.HasPrefix(lines[3], "Acme,1,"))
}

func TestExport_Errors(t *testing.T) {
	h, eng := newTestServer(t)
	seed(t, eng, "Acme")

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"no ids", "/api/export/xlsx", `{"meeting_ids":[]}`, http.StatusBadRequest},
		{"unknown ids", "/api/export/xlsx", `{"meeting_ids":[50]}`, http.StatusNotFound},
		{"unknown format", "/api/export/pdf", `{"meeting_ids":[1]}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/meetings", nil)
	req.Header.Set("Origin", "https://updates.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://updates.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
