package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleDataset() Dataset {
	return Dataset{
		Title:   "Lesson schedule",
		Notes:   []string{"Instructor: Asha Rao"},
		Headers: []string{"session", "date", "time_slots"},
		Rows: []map[string]string{
			{"session": "1", "date": "2024-01-01", "time_slots": "07:00-08:00"},
			{"session": "2", "date": "2024-01-02", "time_slots": "07:00-08:00"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(scheduleDataset())

	require.NoError(t, err)
	assert.Equal(t, "session,date,time_slots\n1,2024-01-01,07:00-08:00\n2,2024-01-02,07:00-08:00\n", string(out))
	assert.Equal(t, "csv", exporter.Extension())
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()

	out, err := exporter.Render(scheduleDataset())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
}

func TestExportersRequireHeaders(t *testing.T) {
	for _, renderer := range []Renderer{NewCSVExporter(), NewPDFExporter()} {
		_, err := renderer.Render(Dataset{})
		assert.Error(t, err)
	}
}
