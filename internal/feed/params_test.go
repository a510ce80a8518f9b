package feed

import (
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	p, err := ParseParams(url.Values{"limit": {"10"}, "page": {"2"}, "subredditName": {"golang"}})
	require.NoError(t, err)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 2, p.Page)
	require.NotNil(t, p.SubredditName)
	assert.Equal(t, "golang", *p.SubredditName)

	p, err = ParseParams(url.Values{"limit": {"10"}, "page": {"1"}})
	require.NoError(t, err)
	assert.Nil(t, p.SubredditName)
}

func TestParseParams_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		q     url.Values
		field string
	}{
		{"missing limit", url.Values{"page": {"1"}}, ParamLimit},
		{"missing page", url.Values{"limit": {"10"}}, ParamPage},
		{"non numeric limit", url.Values{"limit": {"ten"}, "page": {"1"}}, ParamLimit},
		{"non numeric page", url.Values{"limit": {"10"}, "page": {"1.5"}}, ParamPage},
		{"zero limit", url.Values{"limit": {"0"}, "page": {"1"}}, ParamLimit},
		{"negative limit", url.Values{"limit": {"-3"}, "page": {"1"}}, ParamLimit},
		{"zero page", url.Values{"limit": {"10"}, "page": {"0"}}, ParamPage},
		{"empty community", url.Values{"limit": {"10"}, "page": {"1"}, "subredditName": {""}}, ParamSubredditName},
		{"offset overflow", url.Values{"limit": {"4"}, "page": {"4611686018427387904"}}, ParamPage},
		{"offset wraps positive", url.Values{"limit": {"4"}, "page": {"4611686018427387910"}}, ParamPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.False(t, errors.Is(err, ErrStoreUnavailable))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParams_PageRequest(t *testing.T) {
	assert.Equal(t, PageRequest{Limit: 10, Index: 0}, Params{Limit: 10, Page: 1}.PageRequest())
	assert.Equal(t, 0, Params{Limit: 10, Page: 1}.PageRequest().Offset())
	assert.Equal(t, 10, Params{Limit: 10, Page: 2}.PageRequest().Offset())
	assert.Equal(t, 40, Params{Limit: 20, Page: 3}.PageRequest().Offset())
}

func TestParams_EncodeRoundTrip(t *testing.T) {
	name := "rust"
	in := Params{Limit: 5, Page: 3, SubredditName: &name}
	out, err := ParseParams(in.Encode())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	assert.NotContains(t, Params{Limit: 5, Page: 1}.Encode(), ParamSubredditName)
}

func TestPageRequest_Validate(t *testing.T) {
	assert.NoError(t, PageRequest{Limit: 1, Index: 0}.Validate(50))
	assert.NoError(t, PageRequest{Limit: 500, Index: 3}.Validate(0))
	assert.ErrorIs(t, PageRequest{Limit: 51, Index: 0}.Validate(50), ErrValidation)
	assert.ErrorIs(t, PageRequest{Limit: 0, Index: 0}.Validate(50), ErrValidation)
	assert.ErrorIs(t, PageRequest{Limit: 10, Index: -1}.Validate(50), ErrValidation)

	// offset 必须能用 int 表示，否则翻页会跳回别的页
	assert.NoError(t, PageRequest{Limit: 4, Index: math.MaxInt / 4}.Validate(0))
	err := PageRequest{Limit: 4, Index: math.MaxInt/4 + 1}.Validate(0)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ParamPage, verr.Field)
	assert.ErrorIs(t, PageRequest{Limit: 50, Index: math.MaxInt / 10}.Validate(50), ErrValidation)
}
