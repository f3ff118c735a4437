package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredStrings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "intro", false},
		{"valid with spaces", "  intro  ", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	validators := map[string]func(string) error{
		"Section":     Section,
		"CommentText": CommentText,
		"Reason":      Reason,
		"SessionID":   SessionID,
	}

	for fn, validate := range validators {
		for _, tt := range tests {
			t.Run(fn+"/"+tt.name, func(t *testing.T) {
				err := validate(tt.input)
				assert.Equal(t, tt.wantErr, err != nil, "%s(%q) error = %v, wantErr %v", fn, tt.input, err, tt.wantErr)
			})
		}
	}
}

func TestComment(t *testing.T) {
	require.NoError(t, Comment("intro", "tighten the opening"))

	err := Comment(" ", "")
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "section", fieldErrs[0].Field)
	assert.Equal(t, "section identifier is required", fieldErrs[0].Err.Error())
	assert.Equal(t, "text", fieldErrs[1].Field)
	assert.Equal(t, "comment text is required", fieldErrs[1].Err.Error())
}
