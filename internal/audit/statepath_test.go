package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		ok   bool
		want StatePath
	}{
		{
			name: "review record",
			path: "default/2024/03/Review/4a7d1ed414474e4033ac29ccb8653d9b.patch",
			ok:   true,
			want: StatePath{
				Profile: "default",
				Year:    "2024",
				Month:   "03",
				State:   StateReview,
				Base:    "4a7d1ed414474e4033ac29ccb8653d9b.patch",
			},
		},
		{
			name: "approved record",
			path: "payments/2023/11/Approved/abc123.patch",
			ok:   true,
			want: StatePath{
				Profile: "payments",
				Year:    "2023",
				Month:   "11",
				State:   StateApproved,
				Base:    "abc123.patch",
			},
		},
		{
			name: "concerns record with lowercase dir",
			path: "default/2024/03/concerns/abc123.patch",
			ok:   true,
			want: StatePath{
				Profile: "default",
				Year:    "2024",
				Month:   "03",
				State:   StateConcerns,
				Base:    "abc123.patch",
			},
		},
		{
			name: "locked record",
			path: "Locked/jdoe/abc123.patch",
			ok:   true,
			want: StatePath{
				State: StateLocked,
				User:  "jdoe",
				Base:  "abc123.patch",
			},
		},
		{name: "resignation list", path: "Resigned/jdoe", ok: false},
		{name: "config file", path: ".code-review/profiles/default/selection.yaml", ok: false},
		{name: "source checkout", path: "source/main.go", ok: false},
		{name: "comment file", path: "default/2024/03/Comments/abc123/20240301T120000Z-r@x.com.txt", ok: false},
		{name: "patch outside state dir", path: "default/2024/03/Shipped/abc123.patch", ok: false},
		{name: "too few segments", path: "default/Review/abc123.patch", ok: false},
		{name: "locked without user", path: "Locked/abc123.patch", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, ok := ParsePath(tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				require.NotNil(t, sp)
				assert.Equal(t, tt.want, *sp)
			}
		})
	}
}

func TestStatePathRoundTrip(t *testing.T) {
	paths := []string{
		"default/2024/03/Review/abc123.patch",
		"payments/2023/11/Approved/def456.patch",
		"Locked/jdoe/abc123.patch",
	}
	for _, p := range paths {
		sp, ok := ParsePath(p)
		require.True(t, ok, p)
		assert.Equal(t, p, sp.Path())
	}
}

func TestStatePathFor(t *testing.T) {
	sp, ok := ParsePath("default/2024/03/Review/abc123.patch")
	require.True(t, ok)

	locked, err := sp.For(StateLocked, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "Locked/jdoe/abc123.patch", locked)

	approved, err := sp.For(StateApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "default/2024/03/Approved/abc123.patch", approved)

	_, err = sp.For(StateLocked, "")
	assert.Error(t, err, "lock needs a user")

	_, err = sp.For(StateComment, "")
	assert.Error(t, err, "comment is not path-encoded")

	fromLock, ok := ParsePath("Locked/jdoe/abc123.patch")
	require.True(t, ok)
	_, err = fromLock.For(StateApproved, "")
	assert.Error(t, err, "locked path alone cannot compute a profile path")
}

func TestSelectDate(t *testing.T) {
	sp, ok := ParsePath("default/2024/03/Review/abc123.patch")
	require.True(t, ok)
	assert.Equal(t, "2024-03", sp.SelectDate())
	assert.Equal(t, "abc123", sp.SHA1())

	locked, ok := ParsePath("Locked/jdoe/abc123.patch")
	require.True(t, ok)
	assert.Empty(t, locked.SelectDate())
}

func TestReviewPathFor(t *testing.T) {
	selected := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	got := ReviewPathFor("default", selected, "abc123")
	assert.Equal(t, "default/2024/03/Review/abc123.patch", got)
}

func TestReviewPathFromSelectDate(t *testing.T) {
	got, err := ReviewPathFromSelectDate("payments", "2023-11", "def456")
	require.NoError(t, err)
	assert.Equal(t, "payments/2023/11/Review/def456.patch", got)

	_, err = ReviewPathFromSelectDate("payments", "late 2023", "def456")
	assert.Error(t, err)
}

func TestCommentPath(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	got := CommentPath("default", "2024-03", "abc123", when, "reviewer@example.com")
	assert.Equal(t,
		"default/2024/03/Comments/abc123/20240301T123045Z-reviewer@example.com.txt", got)
}

func TestResignedPath(t *testing.T) {
	assert.Equal(t, "Resigned/jdoe", ResignedPath("jdoe"))
}
