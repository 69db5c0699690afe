package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
)

const header = "region,date,depth,salinity,temperature,ph,dissolved_oxygen,fish_population,plankton,coral_coverage\n"

func TestReadValidCSV(t *testing.T) {
	input := header +
		"Pacific,2025-01-15,25,35,18,8.1,7,450,120,62\n" +
		"Atlantic,2025-02-20,40,34,14,8.0,8,380,200,31\n"

	records, err := NewReader().Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Pacific", records[0].Region)
	assert.Equal(t, "2025-01-15", records[0].Date)
	assert.Equal(t, 35.0, records[0].Salinity)
	assert.Equal(t, 8.0, records[1].DissolvedOxygen)
	assert.Equal(t, "2025-02", records[1].YearMonth())
}

func TestReadReorderedColumns(t *testing.T) {
	input := "date,region,salinity,depth,temperature,ph,dissolved_oxygen,fish_population,plankton,coral_coverage\n" +
		"2025-01-15,Pacific,35,25,18,8.1,7,450,120,62\n"

	records, err := NewReader().Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Pacific", records[0].Region)
	assert.Equal(t, 25.0, records[0].Depth)
}

func TestReadHeaderOnly(t *testing.T) {
	records, err := NewReader().Read(strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, records, "header with no rows is an empty dataset, not an error")
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode errors.Code
	}{
		{
			name:     "EmptyInput",
			input:    "",
			wantCode: errors.ErrCodeInvalidFormat,
		},
		{
			name:     "MissingColumn",
			input:    "region,date\nPacific,2025-01-15\n",
			wantCode: errors.ErrCodeInvalidFormat,
		},
		{
			name:     "NonNumericField",
			input:    header + "Pacific,2025-01-15,deep,35,18,8.1,7,450,120,62\n",
			wantCode: errors.ErrCodeInvalidRecord,
		},
		{
			name:     "EmptyRegion",
			input:    header + ",2025-01-15,25,35,18,8.1,7,450,120,62\n",
			wantCode: errors.ErrCodeInvalidRecord,
		},
		{
			name:     "ShortDate",
			input:    header + "Pacific,2025,25,35,18,8.1,7,450,120,62\n",
			wantCode: errors.ErrCodeInvalidRecord,
		},
		{
			name:     "NonISODate",
			input:    header + "Pacific,Jan 15 2025,25,35,18,8.1,7,450,120,62\n",
			wantCode: errors.ErrCodeInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader().Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestValidateRecord(t *testing.T) {
	r := NewReader()

	valid := graph.MeasurementRecord{Region: "Pacific", Date: "2025-01-15"}
	assert.NoError(t, r.ValidateRecord(valid))

	badDate := graph.MeasurementRecord{Region: "Pacific", Date: "15/01/2025"}
	err := r.ValidateRecord(badDate)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidDate, errors.GetCode(err))

	noRegion := graph.MeasurementRecord{Region: "", Date: "2025-01-15"}
	err = r.ValidateRecord(noRegion)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRecord, errors.GetCode(err))
}
