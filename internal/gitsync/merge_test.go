package gitsync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mergeFixture wires the happy-path endpoints; tests override behavior per
// handler through the returned knobs.
type mergeKnobs struct {
	draft      bool
	mergeable  any
	merged     bool
	deleteCode int
}

func mergeFixture(t *testing.T, knobs mergeKnobs) *fakeGitHub {
	t.Helper()
	f := newFakeGitHub(t)
	f.handle("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{prJSON(7, "feature", knobs.draft, nil)})
	})
	f.handle("GET /repos/owner/repo/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, prJSON(7, "feature", knobs.draft, knobs.mergeable))
	})
	f.handle("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "markPullRequestReadyForReview")
		assert.Contains(t, string(body), "PR_node7")
		f.logOp("ready")
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"markPullRequestReadyForReview": map[string]any{
					"pullRequest": map[string]any{"isDraft": false},
				},
			},
		})
	})
	f.handle("PUT /repos/owner/repo/pulls/{number}/merge", func(w http.ResponseWriter, r *http.Request) {
		f.logOp("merge")
		writeJSON(w, http.StatusOK, map[string]any{"merged": knobs.merged, "message": "done", "sha": "mergesha"})
	})
	f.handle("DELETE /repos/owner/repo/git/refs/{ref...}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "heads/feature", r.PathValue("ref"))
		f.logOp("delete")
		code := knobs.deleteCode
		if code == 0 {
			code = http.StatusNoContent
		}
		if code == http.StatusNoContent {
			w.WriteHeader(code)
			return
		}
		writeJSON(w, code, map[string]any{"message": "cannot delete"})
	})
	return f
}

func TestMergeBranchDraft(t *testing.T) {
	f := mergeFixture(t, mergeKnobs{draft: true, mergeable: true, merged: true})

	svc := f.service(Config{})
	result, err := svc.MergeBranch(context.Background(), "feature")
	require.NoError(t, err)
	assert.True(t, result.Merged)
	assert.Equal(t, 7, result.PullRequest)
	assert.Empty(t, result.Warning)
	assert.Contains(t, result.Message, "#7")

	// The draft must be promoted before the merge, and the branch deleted
	// after it.
	assert.Equal(t, []string{"ready", "merge", "delete"}, f.opsLog())
}

func TestMergeBranchNonDraftSkipsPromotion(t *testing.T) {
	f := mergeFixture(t, mergeKnobs{draft: false, mergeable: true, merged: true})

	svc := f.service(Config{})
	result, err := svc.MergeBranch(context.Background(), "feature")
	require.NoError(t, err)
	assert.True(t, result.Merged)
	assert.Equal(t, 0, f.count("POST /graphql"))
	assert.Equal(t, []string{"merge", "delete"}, f.opsLog())
}

func TestMergeBranchNotMergeable(t *testing.T) {
	f := mergeFixture(t, mergeKnobs{draft: false, mergeable: false})

	svc := f.service(Config{})
	_, err := svc.MergeBranch(context.Background(), "feature")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotMergeable))
	assert.Equal(t, 0, f.count("PUT /repos/owner/repo/pulls/{number}/merge"))
}

func TestMergeBranchMergeableUnknown(t *testing.T) {
	// GitHub has not finished computing mergeability; the field is absent.
	f := mergeFixture(t, mergeKnobs{draft: false, mergeable: nil})

	svc := f.service(Config{})
	_, err := svc.MergeBranch(context.Background(), "feature")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotMergeable))
	assert.Equal(t, 0, f.count("PUT /repos/owner/repo/pulls/{number}/merge"))
}

func TestMergeBranchNoPullRequest(t *testing.T) {
	f := newFakeGitHub(t)
	f.handle("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})

	svc := f.service(Config{})
	_, err := svc.MergeBranch(context.Background(), "feature")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPullRequest))
}

func TestMergeBranchDeleteFailureIsWarning(t *testing.T) {
	f := mergeFixture(t, mergeKnobs{draft: false, mergeable: true, merged: true, deleteCode: http.StatusUnprocessableEntity})

	svc := f.service(Config{})
	result, err := svc.MergeBranch(context.Background(), "feature")
	require.NoError(t, err)
	assert.True(t, result.Merged)
	assert.NotEmpty(t, result.Warning)
	assert.Contains(t, result.Warning, "feature")
}

func TestMergeBranchUnconfirmedMerge(t *testing.T) {
	f := mergeFixture(t, mergeKnobs{draft: false, mergeable: true, merged: false})

	svc := f.service(Config{})
	_, err := svc.MergeBranch(context.Background(), "feature")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotMergeable))
	// No deletion after an unconfirmed merge.
	assert.False(t, strings.Contains(strings.Join(f.opsLog(), ","), "delete"))
}

func TestMergeBranchSendsMergeMessage(t *testing.T) {
	f := newFakeGitHub(t)
	f.handle("GET /repos/owner/repo/pulls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{prJSON(7, "feature", false, nil)})
	})
	f.handle("GET /repos/owner/repo/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, prJSON(7, "feature", false, true))
	})
	f.handle("PUT /repos/owner/repo/pulls/{number}/merge", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CommitMessage string `json:"commit_message"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.CommitMessage, "feature")
		writeJSON(w, http.StatusOK, map[string]any{"merged": true})
	})
	f.handle("DELETE /repos/owner/repo/git/refs/{ref...}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	svc := f.service(Config{})
	_, err := svc.MergeBranch(context.Background(), "feature")
	require.NoError(t, err)
}
