package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"pluginsync/internal/domain"
)

func TestBuildRequirements_KeepsInsertionOrder(t *testing.T) {
	set, err := BuildRequirements(reqs("git", "4.0", "credentials", "2.6.1", "matrix-auth", "3.1"))
	require.NoError(t, err)

	ids := make([]string, 0, set.Len())
	for _, req := range set.Requirements() {
		ids = append(ids, req.ID)
	}
	require.Equal(t, []string{"git", "credentials", "matrix-auth"}, ids)

	v, ok := set.MinVersion("credentials")
	require.True(t, ok)
	require.Equal(t, "2.6.1", v.String())
}

func TestBuildRequirements_DuplicateLastWins(t *testing.T) {
	set, err := BuildRequirements(reqs("git", "4.0", "ssh", "1.0", "git", "5.1"))
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	v, _ := set.MinVersion("git")
	require.Equal(t, "5.1", v.String())
	require.Equal(t, "git", set.Requirements()[0].ID)
	require.Equal(t, []string{"git"}, set.DuplicateIDs())
}

func TestBuildRequirementsStrict_RejectsDuplicates(t *testing.T) {
	_, err := BuildRequirementsStrict(reqs("git", "4.0", "git", "5.1"))
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrDuplicateIdentifier))
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeInvalidArgument, code)
}

func TestBuildRequirements_InvalidVersionAbortsAll(t *testing.T) {
	set, err := BuildRequirements(reqs("git", "4.0", "ssh", "latest"))
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrInvalidVersionFormat))
	require.Contains(t, err.Error(), "required[1] ssh")
	require.Zero(t, set.Len())
}

func TestBuildRequirements_Empty(t *testing.T) {
	set, err := BuildRequirements(nil)
	require.NoError(t, err)
	require.Zero(t, set.Len())
	require.Empty(t, set.Requirements())
}
