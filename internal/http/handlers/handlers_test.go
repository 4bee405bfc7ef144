package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/apierr"
	"github.com/yungbote/drawhub-backend/internal/platform/logger"
	"github.com/yungbote/drawhub-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeDrawings struct {
	search     services.SearchQuery
	update     services.UpdateInput
	relFrom    uuid.UUID
	relTo      uuid.UUID
	relType    string
	removedRel uuid.UUID
	getErr     error
	exportBody string
}

func (f *fakeDrawings) Search(_ context.Context, q services.SearchQuery) (*services.SearchResult, error) {
	f.search = q
	return &services.SearchResult{Data: []*types.Drawing{}, Meta: services.PageMeta{Page: 1, Limit: 24}}, nil
}

func (f *fakeDrawings) Get(_ context.Context, id uuid.UUID) (*types.Drawing, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &types.Drawing{ID: id, DrawingNumber: "A-1"}, nil
}

func (f *fakeDrawings) Update(_ context.Context, id uuid.UUID, in services.UpdateInput) (*types.Drawing, error) {
	f.update = in
	return &types.Drawing{ID: id, DrawingNumber: "A-1"}, nil
}

func (f *fakeDrawings) Delete(_ context.Context, id uuid.UUID) (*types.Drawing, error) {
	return &types.Drawing{ID: id}, nil
}

func (f *fakeDrawings) AddRelation(_ context.Context, fromID, toID uuid.UUID, relationType string) (*types.DrawingRelation, error) {
	f.relFrom, f.relTo, f.relType = fromID, toID, relationType
	return &types.DrawingRelation{ID: uuid.New(), FromDrawingID: fromID, ToDrawingID: toID}, nil
}

func (f *fakeDrawings) RemoveRelation(_ context.Context, _ uuid.UUID, relationID uuid.UUID) (*types.DrawingRelation, error) {
	f.removedRel = relationID
	return &types.DrawingRelation{ID: relationID}, nil
}

func (f *fakeDrawings) Export(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, f.exportBody)
	return err
}

type fakeImporter struct{ got []byte }

func (f *fakeImporter) Import(_ context.Context, csv []byte) (*services.ImportResult, error) {
	f.got = csv
	return &services.ImportResult{Updated: 1, NotFound: []string{"X-9"}}, nil
}

type fakeIngest struct {
	up   services.Upload
	opts services.IngestOptions
}

func (f *fakeIngest) CreateFromUpload(_ context.Context, up services.Upload, opts services.IngestOptions) ([]*types.Drawing, error) {
	f.up, f.opts = up, opts
	return []*types.Drawing{{ID: uuid.New(), DrawingNumber: opts.DrawingNumber}}, nil
}

type fakeRevisions struct {
	drawingID     uuid.UUID
	label, reason string
}

func (f *fakeRevisions) Create(_ context.Context, drawingID uuid.UUID, _ services.Upload, label, reason string) (*types.DrawingRevision, error) {
	f.drawingID, f.label, f.reason = drawingID, label, reason
	return &types.DrawingRevision{ID: uuid.New(), DrawingID: drawingID, Revision: label}, nil
}

func (f *fakeRevisions) List(_ context.Context, _ uuid.UUID) ([]*types.DrawingRevision, error) {
	return []*types.DrawingRevision{}, nil
}

type harness struct {
	engine    *gin.Engine
	drawings  *fakeDrawings
	importer  *fakeImporter
	ingest    *fakeIngest
	revisions *fakeRevisions
}

func newHarness(maxBytes int64) *harness {
	h := &harness{
		drawings:  &fakeDrawings{},
		importer:  &fakeImporter{},
		ingest:    &fakeIngest{},
		revisions: &fakeRevisions{},
	}
	log := logger.Nop()
	dh := NewDrawingHandler(log, h.drawings, h.importer, maxBytes)
	uh := NewUploadHandler(log, h.ingest, maxBytes)
	rh := NewRevisionHandler(log, h.revisions, maxBytes)

	r := gin.New()
	g := r.Group("/api/drawings")
	g.GET("", dh.Search)
	g.GET("/export", dh.Export)
	g.POST("/metadata/csv", dh.ImportMetadata)
	g.POST("/upload", uh.Upload)
	g.GET("/:id", dh.Get)
	g.PATCH("/:id", dh.Update)
	g.DELETE("/:id", dh.Delete)
	g.POST("/:id/relations", dh.AddRelation)
	g.DELETE("/:id/relations/:relationId", dh.RemoveRelation)
	g.POST("/:id/revisions", rh.Create)
	g.GET("/:id/revisions", rh.List)
	r.GET("/healthcheck", NewHealthHandler().HealthCheck)
	h.engine = r
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestHealthCheck(t *testing.T) {
	h := newHarness(0)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSearchPassesQueryParams(t *testing.T) {
	h := newHarness(0)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/drawings?q=pump&page=3&limit=50", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.SearchQuery{Q: "pump", Page: 3, Limit: 50}, h.drawings.search)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/api/drawings?page=abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, h.drawings.search.Page)
}

func TestGetRejectsMalformedID(t *testing.T) {
	h := newHarness(0)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/drawings/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", errorCode(t, rec))
}

func TestGetMapsNotFound(t *testing.T) {
	h := newHarness(0)
	h.drawings.getErr = apierr.NotFound("drawing_not_found", "Drawing not found")
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/drawings/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "drawing_not_found", errorCode(t, rec))
}

func TestExportRouteIsNotAnID(t *testing.T) {
	h := newHarness(0)
	h.drawings.exportBody = "\ufeffid,drawingNumber\n"
	rec := h.do(httptest.NewRequest(http.MethodGet, "/api/drawings/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="drawings.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\ufeffid,drawingNumber\n", rec.Body.String())
}

func TestUpdateDecodesPartialBody(t *testing.T) {
	h := newHarness(0)
	body := `{"name":null,"metadata":{"sheet":"2","scale":50,"approved":true,"note":null}}`
	req := httptest.NewRequest(http.MethodPatch, "/api/drawings/"+uuid.NewString(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := h.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	in := h.drawings.update
	assert.Nil(t, in.DrawingNumber)
	require.NotNil(t, in.Name)
	assert.Equal(t, "", *in.Name)
	require.NotNil(t, in.Metadata)
	assert.Equal(t, types.Metadata{"sheet": "2", "scale": "50", "approved": "true", "note": ""}, *in.Metadata)
}

func TestDecodeUpdate(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, in services.UpdateInput)
	}{
		{
			name: "empty object leaves everything nil",
			body: `{}`,
			check: func(t *testing.T, in services.UpdateInput) {
				assert.Nil(t, in.DrawingNumber)
				assert.Nil(t, in.Name)
				assert.Nil(t, in.Metadata)
			},
		},
		{
			name: "drawing number and name",
			body: `{"drawingNumber":"B-2","name":"Bracket"}`,
			check: func(t *testing.T, in services.UpdateInput) {
				require.NotNil(t, in.DrawingNumber)
				assert.Equal(t, "B-2", *in.DrawingNumber)
				require.NotNil(t, in.Name)
				assert.Equal(t, "Bracket", *in.Name)
			},
		},
		{name: "not json", body: `nope`, wantErr: true},
		{name: "metadata array", body: `{"metadata":[1,2]}`, wantErr: true},
		{name: "numeric drawing number", body: `{"drawingNumber":5}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := decodeUpdate(strings.NewReader(tc.body))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, in)
		})
	}
}

func TestUpdateRejectsBadJSON(t *testing.T) {
	h := newHarness(0)
	req := httptest.NewRequest(http.MethodPatch, "/api/drawings/"+uuid.NewString(), strings.NewReader("{"))
	rec := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", errorCode(t, rec))
}

func TestUploadForwardsFormFields(t *testing.T) {
	h := newHarness(0)
	body, ct := multipartBody(t, map[string]string{
		"drawingNumber": "P-100",
		"name":          "Pump",
		"splitPages":    "true",
	}, "pump.pdf", []byte("%PDF-1.7"))
	req := httptest.NewRequest(http.MethodPost, "/api/drawings/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := h.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, services.IngestOptions{DrawingNumber: "P-100", Name: "Pump", Split: true}, h.ingest.opts)
	assert.Equal(t, "pump.pdf", h.ingest.up.Filename)
	assert.Equal(t, []byte("%PDF-1.7"), h.ingest.up.Data)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "P-100", out[0]["drawingNumber"])
}

func TestUploadSplitFlagIsExact(t *testing.T) {
	h := newHarness(0)
	body, ct := multipartBody(t, map[string]string{"splitPages": "yes"}, "a.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/drawings/upload", body)
	req.Header.Set("Content-Type", ct)
	require.Equal(t, http.StatusCreated, h.do(req).Code)
	assert.False(t, h.ingest.opts.Split)
}

func TestUploadRequiresFile(t *testing.T) {
	h := newHarness(0)
	body, ct := multipartBody(t, map[string]string{"drawingNumber": "P-1"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/drawings/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_file", errorCode(t, rec))
}

func TestImportMetadataReturnsSummary(t *testing.T) {
	h := newHarness(0)
	body, ct := multipartBody(t, nil, "meta.csv", []byte("drawingNumber,sheet\nA-1,2\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/drawings/metadata/csv", body)
	req.Header.Set("Content-Type", ct)
	rec := h.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "drawingNumber,sheet\nA-1,2\n", string(h.importer.got))
	assert.JSONEq(t, `{"updated":1,"notFound":["X-9"]}`, rec.Body.String())
}

func TestCreateRevisionForwardsLabelAndReason(t *testing.T) {
	h := newHarness(0)
	id := uuid.New()
	body, ct := multipartBody(t, map[string]string{"revision": "B", "reason": "new hole"}, "b.pdf", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/drawings/"+id.String()+"/revisions", body)
	req.Header.Set("Content-Type", ct)
	rec := h.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, id, h.revisions.drawingID)
	assert.Equal(t, "B", h.revisions.label)
	assert.Equal(t, "new hole", h.revisions.reason)
}

func TestAddRelation(t *testing.T) {
	h := newHarness(0)
	from, to := uuid.New(), uuid.New()
	payload := `{"toDrawingId":"` + to.String() + `","relationType":"PARENT"}`
	req := httptest.NewRequest(http.MethodPost, "/api/drawings/"+from.String()+"/relations", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := h.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, from, h.drawings.relFrom)
	assert.Equal(t, to, h.drawings.relTo)
	assert.Equal(t, "PARENT", h.drawings.relType)
}

func TestAddRelationRejectsBadTarget(t *testing.T) {
	h := newHarness(0)
	req := httptest.NewRequest(http.MethodPost, "/api/drawings/"+uuid.NewString()+"/relations",
		strings.NewReader(`{"toDrawingId":"zzz","relationType":"PARENT"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := h.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", errorCode(t, rec))
}

func TestRemoveRelation(t *testing.T) {
	h := newHarness(0)
	relID := uuid.New()
	rec := h.do(httptest.NewRequest(http.MethodDelete,
		"/api/drawings/"+uuid.NewString()+"/relations/"+relID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, relID, h.drawings.removedRel)
}

func TestMetadataValue(t *testing.T) {
	cases := map[string]string{
		`"text"`:  "text",
		`12.5`:    "12.5",
		`false`:   "false",
		`null`:    "",
		`{"a":1}`: `{"a":1}`,
	}
	for raw, want := range cases {
		assert.Equal(t, want, metadataValue(json.RawMessage(raw)), raw)
	}
}
