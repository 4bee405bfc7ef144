package csvio

import (
	"bufio"
	"io"
	"strings"

	types "github.com/yungbote/drawhub-backend/internal/domain"
)

// ExportColumns are the fixed leading columns of an export, before metadata keys.
var ExportColumns = []string{"id", "drawingNumber", "name", "status", "createdAt", "updatedAt", "fileUrl"}

// KeyColumn identifies records on import.
const KeyColumn = "drawingNumber"

const isoMillis = "2006-01-02T15:04:05.000Z"

// IsExportColumn reports whether name is one of the fixed export columns (case-insensitive).
func IsExportColumn(name string) bool {
	for _, c := range ExportColumns {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// WriteExport writes a BOM-prefixed snapshot of drawings in the given order.
// Metadata columns are the sorted union of keys across all drawings.
func WriteExport(w io.Writer, drawings []*types.Drawing) error {
	keySet := types.Metadata{}
	metas := make([]types.Metadata, len(drawings))
	for i, d := range drawings {
		metas[i] = d.Meta()
		for k := range metas[i] {
			keySet[k] = ""
		}
	}
	metaKeys := keySet.Keys()

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(utf8BOM); err != nil {
		return err
	}

	header := make([]string, 0, len(ExportColumns)+len(metaKeys))
	header = append(header, ExportColumns...)
	header = append(header, metaKeys...)
	if err := writeRecord(bw, header, false); err != nil {
		return err
	}

	for i, d := range drawings {
		name := ""
		if d.Name != nil {
			name = *d.Name
		}
		rec := []string{
			d.ID.String(),
			d.DrawingNumber,
			name,
			string(d.Status),
			d.CreatedAt.UTC().Format(isoMillis),
			d.UpdatedAt.UTC().Format(isoMillis),
			d.FileURL,
		}
		for _, k := range metaKeys {
			rec = append(rec, metas[i][k])
		}
		if err := writeRecord(bw, rec, true); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string, leadingNewline bool) error {
	if leadingNewline {
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(escapeField(f)); err != nil {
			return err
		}
	}
	return nil
}

func escapeField(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
