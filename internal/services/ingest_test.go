package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/drawhub-backend/internal/catalog/pdfsplit"
	"github.com/yungbote/drawhub-backend/internal/catalog/thumbnail"
	"github.com/yungbote/drawhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/apierr"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
	"github.com/yungbote/drawhub-backend/internal/realtime"
)

func newIngest(t *testing.T, f *fixture, splitter pdfsplit.Splitter, thumbs thumbnail.Generator) *ingestService {
	t.Helper()
	svc := NewIngestService(f.db, testutil.Logger(t), f.drawings, f.store, splitter, thumbs, f.notes).(*ingestService)
	svc.now = func() time.Time { return testEpoch }
	return svc
}

var pdfUpload = Upload{Filename: "Site Plan.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 fake")}

func TestCreateFromUploadSingleDefaults(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{}, nil)

	out, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	d := out[0]
	assert.Equal(t, fmt.Sprintf("DWG-%d", testEpoch.UnixMilli()), d.DrawingNumber)
	assert.Nil(t, d.Name)
	assert.Equal(t, types.StatusCompleted, d.Status)
	assert.Nil(t, d.Revision)
	assert.Empty(t, d.Meta())
	assert.Empty(t, d.Sources())

	keys := f.store.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], fmt.Sprintf("%d-", testEpoch.UnixMilli())), keys[0])
	assert.True(t, strings.HasSuffix(keys[0], "-Site_Plan.pdf"), keys[0])
	assert.Equal(t, "http://blob.test/drawings/"+keys[0], d.FileURL)
	assert.Equal(t, "application/pdf", f.store.contentType(keys[0]))

	stored, err := f.drawings.GetByID(dbcFor(), d.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, d.FileURL, stored.FileURL)

	notes := f.notes.all()
	require.Len(t, notes, 1)
	assert.Equal(t, realtime.SSEEventDrawingCreated, notes[0].Event)
	assert.Equal(t, d.ID, notes[0].ID)
}

func TestCreateFromUploadTrimsSuppliedFields(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{}, nil)

	out, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{DrawingNumber: "  A-100 ", Name: " Ground floor "})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A-100", out[0].DrawingNumber)
	require.NotNil(t, out[0].Name)
	assert.Equal(t, "Ground floor", *out[0].Name)
}

func TestCreateFromUploadSplitsPages(t *testing.T) {
	f := newFixture(t)
	splitter := &fakeSplitter{pages: [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")}}
	svc := newIngest(t, f, splitter, nil)

	out, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{DrawingNumber: "A-1", Name: "Set", Split: true})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 1, splitter.calls)

	for i, d := range out {
		assert.Equal(t, fmt.Sprintf("A-1-%d", i+1), d.DrawingNumber)
		require.NotNil(t, d.Name)
		assert.Equal(t, fmt.Sprintf("Set (%d)", i+1), *d.Name)
		assert.True(t, strings.HasSuffix(d.FileURL, fmt.Sprintf("-Site_Plan_p%d.pdf", i+1)), d.FileURL)
	}
	for _, k := range f.store.keys() {
		assert.Equal(t, "application/pdf", f.store.contentType(k))
	}

	notes := f.notes.all()
	require.Len(t, notes, 3)
	for i, n := range notes {
		assert.Equal(t, out[i].ID, n.ID, "notifications follow page order")
	}

	listed, total, err := f.drawings.Search(dbcFor(), searchAll())
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "A-1-3", listed[0].DrawingNumber, "last page is newest")
}

func TestCreateFromUploadSplitDefaultNumbers(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{pages: [][]byte{[]byte("p1"), []byte("p2")}}, nil)

	out, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{Split: true})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, fmt.Sprintf("DWG-%d-1", testEpoch.UnixMilli()), out[0].DrawingNumber)
	assert.Equal(t, fmt.Sprintf("DWG-%d-2", testEpoch.UnixMilli()), out[1].DrawingNumber)
	assert.Nil(t, out[0].Name)
}

func TestCreateFromUploadSplitIgnoredForNonPDF(t *testing.T) {
	f := newFixture(t)
	splitter := &fakeSplitter{pages: [][]byte{[]byte("p1"), []byte("p2")}}
	svc := newIngest(t, f, splitter, nil)

	png := Upload{Filename: "scan.PNG", ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}
	out, err := svc.CreateFromUpload(context.Background(), png, IngestOptions{DrawingNumber: "S-1", Split: true})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, splitter.calls)
	assert.Equal(t, "S-1", out[0].DrawingNumber)
}

func TestCreateFromUploadSplitDetectsPDFByExtension(t *testing.T) {
	f := newFixture(t)
	splitter := &fakeSplitter{pages: [][]byte{[]byte("p1"), []byte("p2")}}
	svc := newIngest(t, f, splitter, nil)

	up := Upload{Filename: "SET.PDF", ContentType: "application/octet-stream", Data: []byte("%PDF")}
	out, err := svc.CreateFromUpload(context.Background(), up, IngestOptions{Split: true})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, splitter.calls)
}

func TestCreateFromUploadInvalidPDF(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{err: fmt.Errorf("%w: broken xref", pdfsplit.ErrInvalidDocument)}, nil)

	_, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{Split: true})
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "invalid_pdf", ae.Code)
	assert.Empty(t, f.store.keys())
	assert.Zero(t, f.count(t, &types.Drawing{}))
	assert.Empty(t, f.notes.all())
}

func TestCreateFromUploadZeroPages(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{pages: [][]byte{}}, nil)

	out, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{Split: true})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Empty(t, f.store.keys())
	assert.Zero(t, f.count(t, &types.Drawing{}))
}

func TestCreateFromUploadRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{}, nil)

	_, err := svc.CreateFromUpload(context.Background(), Upload{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("x")}, IngestOptions{})
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, "unsupported_file_type", ae.Code)
	assert.Empty(t, f.store.keys())
}

func TestCreateFromUploadUploadFailureRemovesEarlierPages(t *testing.T) {
	f := newFixture(t)
	f.store.failPut = func(key string) bool { return strings.Contains(key, "_p2.pdf") }
	svc := newIngest(t, f, &fakeSplitter{pages: [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")}}, nil)

	_, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{Split: true})
	require.ErrorIs(t, err, errInjected)
	assert.Empty(t, f.store.keys(), "page 1 must be cleaned up")
	assert.Len(t, f.store.deletedURLs(), 1)
	assert.Zero(t, f.count(t, &types.Drawing{}))
	assert.Empty(t, f.notes.all())
}

func TestCreateFromUploadDatabaseFailureRemovesBlobs(t *testing.T) {
	f := newFixture(t)
	failing := &failingDrawingRepo{DrawingRepo: f.drawings, failCreate: true}
	svc := NewIngestService(f.db, testutil.Logger(t), failing, f.store,
		&fakeSplitter{pages: [][]byte{[]byte("p1"), []byte("p2")}}, &fakeThumbs{}, f.notes).(*ingestService)
	svc.now = func() time.Time { return testEpoch }

	_, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{Split: true})
	require.ErrorIs(t, err, errInjected)
	assert.Empty(t, f.store.keys(), "pages and thumbnails must be removed")
	assert.Len(t, f.store.deletedURLs(), 4)
	assert.Zero(t, f.count(t, &types.Drawing{}))
	assert.Empty(t, f.notes.all())
}

func TestCreateFromUploadStoresThumbnail(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{}, &fakeThumbs{})

	out, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{DrawingNumber: "T-1"})
	require.NoError(t, err)
	require.NotNil(t, out[0].ThumbnailURL)

	key, ok := objectstore.KeyFromURL(*out[0].ThumbnailURL, testBucket)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(key, ".thumb.png"))
	assert.Equal(t, "image/png", f.store.contentType(key))
}

func TestCreateFromUploadThumbnailFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	svc := newIngest(t, f, &fakeSplitter{}, &fakeThumbs{fail: true})

	out, err := svc.CreateFromUpload(context.Background(), pdfUpload, IngestOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].ThumbnailURL)
	assert.Len(t, f.store.keys(), 1)
}
