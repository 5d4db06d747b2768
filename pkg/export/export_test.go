package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Upcoming Schedules",
		Headers: []string{"Date", "Lecturer"},
		Rows: []map[string]string{
			{"Date": "2024-02-01", "Lecturer": "Ruth Mensah"},
			{"Date": "2024-02-02", "Lecturer": "Paul, Jr."},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := (&CSVExporter{}).Render(sampleDataset())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Lecturer", lines[0])
	assert.Equal(t, `2024-02-02,"Paul, Jr."`, lines[2])
}

func TestCSVExporterBOM(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\ufeff")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestPDFColumnWidths(t *testing.T) {
	e := &PDFExporter{Widths: map[string]float64{"Date": 37}}
	widths := e.columnWidths([]string{"Date", "A", "B"})
	assert.Equal(t, []float64{37, 120, 120}, widths)
}
