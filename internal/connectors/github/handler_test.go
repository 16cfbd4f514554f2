package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
)

func newTagFixture() driven.TagRepository {
	sources := memory.NewSourceStore()
	return memory.NewTagStore(sources, memory.NewEmbeddingStore(sources))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, SourceTypeIssue,
		kindOf("https://api.github.com/repos/owner/repo/issues/42"))
	// Comment URLs also contain /issues/ and must win.
	assert.Equal(t, SourceTypeComment,
		kindOf("https://api.github.com/repos/owner/repo/issues/comments/99"))
	assert.Equal(t, "",
		kindOf("https://api.github.com/repos/owner/repo/pulls/7"))
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := splitRepo("golang/go")
	require.NoError(t, err)
	assert.Equal(t, "golang", owner)
	assert.Equal(t, "go", repo)

	// Surrounding slashes are tolerated.
	owner, repo, err = splitRepo("/golang/go/")
	require.NoError(t, err)
	assert.Equal(t, "golang", owner)
	assert.Equal(t, "go", repo)

	for _, bad := range []string{"", "golang", "golang/go/extra", "/go", "golang/"} {
		_, _, err := splitRepo(bad)
		assert.Error(t, err, "root %q", bad)
	}
}

func TestRepoFromURI(t *testing.T) {
	owner, repo, err := repoFromURI("https://api.github.com/repos/golang/go/issues/1")
	require.NoError(t, err)
	assert.Equal(t, "golang", owner)
	assert.Equal(t, "go", repo)

	_, _, err = repoFromURI("https://api.github.com/users/golang")
	assert.Error(t, err)
}

func TestNew_TokenSelectsAuthenticatedClient(t *testing.T) {
	sources := newTagFixture()

	plain := New(sources, "")
	require.NotNil(t, plain.client)

	authed := New(sources, "ghp_token")
	require.NotNil(t, authed.client)
	assert.Equal(t, []string{SourceTypeIssue, SourceTypeComment}, authed.SourceTypes())
	assert.Equal(t, HandlerName, authed.Name())
}
