package repository

import (
	"testing"

	"masterdata-web/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCodePrefix(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.EntityKind
		group models.EntityGroup
		want  string
	}{
		{
			name:  "item uses stored prefix",
			kind:  models.EntityItem,
			group: models.EntityGroup{Name: "PAPER BOARD", CodePrefix: "PB"},
			want:  "PB",
		},
		{
			name:  "tool ignores stored prefix",
			kind:  models.EntityTool,
			group: models.EntityGroup{Name: "Cutting Dies", CodePrefix: "XX"},
			want:  "CU",
		},
		{
			name:  "tool uppercases the group name",
			kind:  models.EntityTool,
			group: models.EntityGroup{Name: "molds"},
			want:  "MO",
		},
		{
			name:  "tool with single-letter group name",
			kind:  models.EntityTool,
			group: models.EntityGroup{Name: "x"},
			want:  "X",
		},
		{
			name:  "hsn uses stored prefix",
			kind:  models.EntityHSN,
			group: models.EntityGroup{Name: "Raw Material", CodePrefix: "HS"},
			want:  "HS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codePrefix(tt.kind, &tt.group))
		})
	}
}

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "PB00001", formatCode("PB", 1))
	assert.Equal(t, "CU00042", formatCode("CU", 42))
	assert.Equal(t, "HS99999", formatCode("HS", 99999))
	// Sequences past five digits widen instead of truncating.
	assert.Equal(t, "PB100000", formatCode("PB", 100000))
}
