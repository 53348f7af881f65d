package itemuri

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	refs := []*ItemUri{
		New(uuid.MustParse("7b4f3a90-12cd-4c6e-9d0a-3f4b8c21e5aa"), "en", 1, "master"),
		New(uuid.MustParse("7b4f3a90-12cd-4c6e-9d0a-3f4b8c21e5aa"), "da-DK", VersionLatest, "web"),
		New(uuid.New(), "", 42, "master"),
	}
	for _, ref := range refs {
		parsed := Parse(ref.String())
		require.NotNil(t, parsed, "token %q should parse", ref.String())
		assert.Equal(t, ref, parsed)
	}
}

func TestParseMalformed(t *testing.T) {
	tokens := []string{
		"",
		"item://",
		"item:///7b4f3a90-12cd-4c6e-9d0a-3f4b8c21e5aa",
		"item://master/not-a-uuid?lang=en&ver=1",
		"item://master/7b4f3a90-12cd-4c6e-9d0a-3f4b8c21e5aa?lang=en&ver=x",
		"item://master/7b4f3a90-12cd-4c6e-9d0a-3f4b8c21e5aa?lang=en&ver=-1",
		"https://master/7b4f3a90-12cd-4c6e-9d0a-3f4b8c21e5aa",
		"item://master",
		"7b4f3a90-12cd-4c6e-9d0a-3f4b8c21e5aa",
	}
	for _, token := range tokens {
		assert.Nil(t, Parse(token), "token %q must not parse", token)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	ref := New(uuid.New(), "en", 2, "master")
	parsed, err := ParseQuery(ref.Query())
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
}

func TestParseQueryMissingReference(t *testing.T) {
	cases := []url.Values{
		{},
		{ParamID: {"nope"}, ParamDatabase: {"master"}},
		{ParamID: {uuid.New().String()}},
		{ParamID: {uuid.New().String()}, ParamDatabase: {"master"}, ParamVersion: {"x"}},
	}
	for _, values := range cases {
		_, err := ParseQuery(values)
		assert.ErrorIs(t, err, ErrNoItemReference)
	}
}

func TestParseQueryDefaultsToLatest(t *testing.T) {
	values := url.Values{
		ParamID:       {uuid.New().String()},
		ParamDatabase: {"master"},
		ParamLanguage: {"en"},
	}
	ref, err := ParseQuery(values)
	require.NoError(t, err)
	assert.Equal(t, VersionLatest, ref.Version)
}

func TestSameItem(t *testing.T) {
	id := uuid.New()
	a := New(id, "en", 1, "master")
	b := New(id, "da-DK", 7, "master")
	c := New(id, "en", 1, "web")

	assert.True(t, a.SameItem(b))
	assert.False(t, a.SameItem(c))
	assert.False(t, a.SameItem(nil))
	assert.False(t, (*ItemUri)(nil).SameItem(a))
}
