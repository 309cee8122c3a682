package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChecklistCSV(t *testing.T) {
	out, err := GenerateChecklistCSV(sampleReport(t))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "Section", records[0][0])
	assert.Equal(t, []string{"A: Infrastructure", "A.1", "Hospital has 500 beds", "yes", "Partial", "yes", "'=SUM(A1)", ""}, records[1])
	assert.Equal(t, []string{"A: Infrastructure", "A.2", "Library open 24 hours", "no", "No", "no", "", ""}, records[2])
	assert.Equal(t, "https://e.example/doc", records[3][7])
}
