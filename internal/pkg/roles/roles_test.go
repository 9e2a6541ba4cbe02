package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClaim_ShapeInvariant(t *testing.T) {
	t.Parallel()

	// Every shape the backend has been observed to send must resolve to
	// the same ADMIN membership.
	admitted := []interface{}{
		"ADMIN",
		"ROLE_ADMIN",
		"admin",
		" role_admin ",
		"ROLE_USER,ROLE_ADMIN",
		[]string{"ADMIN"},
		[]string{"ROLE_ADMIN"},
		[]string{"user", "Admin"},
		[]interface{}{"ROLE_ADMIN"},
	}
	for _, claim := range admitted {
		set := FromClaim(claim)
		assert.True(t, set.Has("ADMIN"), "claim %#v should grant ADMIN", claim)
		assert.True(t, set.Has("ROLE_ADMIN"), "claim %#v should grant ROLE_ADMIN", claim)
	}

	denied := []interface{}{
		"",
		nil,
		[]string{},
		[]interface{}{},
		42,
		map[string]interface{}{"role": "ADMIN"},
		"USER",
	}
	for _, claim := range denied {
		set := FromClaim(claim)
		assert.False(t, set.Has("ADMIN"), "claim %#v should not grant ADMIN", claim)
	}
}

func TestFromClaim_Canonicalization(t *testing.T) {
	t.Parallel()

	set := FromClaim(" admin , USER,, user ")
	require.Len(t, set, 2) // ADMIN, USER and nothing else after dedup/trim
	assert.True(t, set.Has("user"))
	assert.True(t, set.Has("ROLE_USER"))

	// Mixed non-string entries are skipped, not fatal.
	set = FromClaim([]interface{}{"ADMIN", 7, nil})
	assert.True(t, set.IsAdmin())
}

func TestSet_Has_EmptyQuery(t *testing.T) {
	t.Parallel()

	set := FromClaim("ADMIN")
	assert.False(t, set.Has(""))
	assert.False(t, set.Has("   "))
}

func TestSet_HasAny(t *testing.T) {
	t.Parallel()

	set := FromClaim([]string{"ROLE_RECRUITER"})
	assert.True(t, set.HasAny("ADMIN", "RECRUITER"))
	assert.False(t, set.HasAny("ADMIN", "USER"))
}
