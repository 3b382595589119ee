package repofetch_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/assay/apps/server/internal/repofetch"
)

func TestEntry_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		entry repofetch.Entry
		want  string
	}{
		{"empty dir keeps children", repofetch.Dir("src", nil), `{"name":"src","type":"dir","children":[]}`},
		{"zero-value dir keeps children", repofetch.Entry{Name: "src", Type: repofetch.TypeDir}, `{"name":"src","type":"dir","children":[]}`},
		{"empty file keeps content", repofetch.File("empty.txt", ""), `{"name":"empty.txt","type":"file","content":""}`},
		{"placeholder file", repofetch.Entry{Name: "logo.png", Type: repofetch.TypeFile, Placeholder: true},
			`{"name":"logo.png","type":"file","content":"","placeholder":true}`},
		{"nested", repofetch.Dir("a", []repofetch.Entry{repofetch.File("x.go", "package x"), repofetch.Dir("b", nil)}),
			`{"name":"a","type":"dir","children":[{"name":"x.go","type":"file","content":"package x"},{"name":"b","type":"dir","children":[]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.entry)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestItem_IgnoresListingExtras(t *testing.T) {
	var items []repofetch.Item
	err := json.Unmarshal([]byte(`[{"name":"a.go","path":"src/a.go","type":"file","url":"u","sha":"abc","content":"ignored"}]`), &items)

	require.NoError(t, err)
	assert.Equal(t, []repofetch.Item{{Name: "a.go", Type: repofetch.TypeFile, URL: "u"}}, items)
}
