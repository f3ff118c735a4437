package signoff

import (
	"encoding/json"
	"testing"

	"github.com/colonyops/signoff/internal/core/bundle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	b := &bundle.Bundle{
		Type:        bundle.TypeBlog,
		Frontmatter: map[string]any{"title": "T", "date": "2024-01-15", "summary": "S"},
		Content:     "",
	}

	cp := Evaluate(b)
	assert.Equal(t, Checkpoints{Frontmatter: true, Structure: false, Images: true, Comments: true}, cp)
	assert.False(t, cp.ValidationPassed())
	assert.False(t, cp.AllPassed())
}

func TestCombine(t *testing.T) {
	passing := Checkpoints{Frontmatter: true, Structure: true, Images: true}

	tests := []struct {
		name        string
		cp          Checkpoints
		pending     int
		wantApprove bool
		wantValid   bool
		wantErrs    []string
	}{
		{
			name:        "all passing",
			cp:          passing,
			wantApprove: true,
			wantValid:   true,
			wantErrs:    []string{},
		},
		{
			name:      "pending comments",
			cp:        passing,
			pending:   2,
			wantValid: true,
			wantErrs:  []string{MsgCommentsPending},
		},
		{
			name:     "structure failed",
			cp:       Checkpoints{Frontmatter: true, Images: true},
			wantErrs: []string{MsgStructureFailed},
		},
		{
			name:     "everything failed",
			pending:  1,
			wantErrs: []string{MsgFrontmatterFailed, MsgStructureFailed, MsgImagesFailed, MsgCommentsPending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Metadata{Checkpoints: tt.cp, ValidationWarnings: []string{"w"}}
			st := Combine(m, tt.pending)

			assert.Equal(t, tt.wantApprove, st.CanApprove)
			assert.Equal(t, tt.wantValid, st.ValidationPassed)
			assert.Equal(t, tt.pending, st.PendingComments)
			assert.Equal(t, tt.pending == 0, st.Checkpoints.Comments)
			assert.Equal(t, tt.wantErrs, st.ValidationErrors)
			assert.Equal(t, []string{"w"}, st.ValidationWarnings)
		})
	}
}

func TestCombine_JSONArrays(t *testing.T) {
	st := Combine(Metadata{Checkpoints: Checkpoints{Frontmatter: true, Structure: true, Images: true}}, 0)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"validationErrors":[]`)
	assert.Contains(t, string(data), `"validationWarnings":[]`)
}

func TestStatus_Err(t *testing.T) {
	assert.NoError(t, Status{CanApprove: true}.Err())

	err := Status{ValidationPassed: true, PendingComments: 1}.Err()
	require.ErrorIs(t, err, ErrApprovalBlocked)
	assert.Equal(t, "cannot approve session: 1 pending comment(s) must be resolved", err.Error())

	err = Status{PendingComments: 3}.Err()
	assert.Equal(t, "cannot approve session: validation checkpoints must pass. 3 pending comment(s) must be resolved", err.Error())
}
