// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_RepositoryFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	a, ok := reg.Find("rank-matches")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, a.ImplementationStatus)
	assert.Contains(t, a.ErrorCodes, "INVALID_MATCH_PARAMS")
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadRegistry(path)
	assert.ErrorContains(t, err, "parse registry")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{"ok", []Activity{{ID: "a", TaskType: "a"}, {ID: "b", TaskType: "b"}}, ""},
		{"missing task type", []Activity{{ID: "a"}}, "required"},
		{"duplicate", []Activity{{ID: "a", TaskType: "x"}, {ID: "b", TaskType: "x"}}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&ActivityRegistry{Activities: tt.activities}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDiff(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "a", TaskType: "a", ImplementationStatus: StatusCompleted},
		{ID: "b", TaskType: "b", ImplementationStatus: StatusCompleted},
		{ID: "c", TaskType: "c", ImplementationStatus: StatusPlanned},
	}}

	missing, unregistered := reg.Diff([]string{"a", "z"})
	assert.Equal(t, []string{"b"}, missing)
	assert.Equal(t, []string{"z"}, unregistered)
}
