package jurisdiction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/dnc-processor/internal/model"
)

func TestFromFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"TX_list.txt", "TX", true},
		{"/data/uploads/tx.txt", "TX", true},
		{"export_2024_NY.txt", "NY", true},
		{"FL.csv", "FL", true},
		{"list-oh-2024.txt", "OH", true},
		{"numbers.txt", model.UnknownJurisdiction, false},
		{"", model.UnknownJurisdiction, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FromFilename(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFromFilename_ExactBeatsContainment(t *testing.T) {
	// "CALIFORNIA_TX" contains CA first in scan order, but the suffix rule
	// resolves TX before any containment check runs.
	got, _ := FromFilename("california_TX.txt")
	assert.Equal(t, "TX", got)
}

func TestFromFilename_AmbiguousUsesListOrder(t *testing.T) {
	// AZ and CA both appear; AZ is earlier in Codes.
	got, _ := FromFilename("dnc-caz.txt")
	assert.Equal(t, "AZ", got)

	got, _ = FromFilename("list-NYCA.txt")
	assert.Equal(t, "CA", got)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("tx"))
	assert.True(t, Valid(" DC "))
	assert.False(t, Valid("XX"))
	assert.False(t, Valid(""))
}
