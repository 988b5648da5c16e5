package objectstore

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listSorted drives a PageBuilder the way a provider does: ascending keys
// starting at Start().
func listSorted(keys []string, in *ListInput) *ListPage {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	b := NewPageBuilder(in)
	for _, k := range sorted {
		if k < b.Start() {
			continue
		}
		if !b.Add(k, &Object{Key: k}) {
			break
		}
	}
	return b.Page()
}

func rowNames(p *ListPage) []string {
	names := make([]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		if r.IsPrefix() {
			names = append(names, r.Prefix)
		} else {
			names = append(names, r.Key)
		}
	}
	return names
}

func TestPageBuilder_DelimiterGroupsSubdirectories(t *testing.T) {
	keys := []string{"folder/sub/x.txt", "folder/y.txt", "other.txt", "folder/sub/z.txt"}

	page := listSorted(keys, &ListInput{Prefix: "folder/", Delimiter: "/"})

	assert.Equal(t, []string{"folder/sub/", "folder/y.txt"}, rowNames(page))
	assert.True(t, page.Rows[0].IsPrefix())
	assert.False(t, page.IsTruncated)
}

func TestPageBuilder_NoDelimiterIsFlat(t *testing.T) {
	keys := []string{"folder/sub/x.txt", "folder/y.txt", "other.txt"}

	page := listSorted(keys, &ListInput{Prefix: "folder/"})

	assert.Equal(t, []string{"folder/sub/x.txt", "folder/y.txt"}, rowNames(page))
}

func TestPageBuilder_MarkerAtPrefixIsAnObject(t *testing.T) {
	keys := []string{"folder/", "folder/a.txt"}

	page := listSorted(keys, &ListInput{Prefix: "folder/", Delimiter: "/"})

	assert.Equal(t, []string{"folder/", "folder/a.txt"}, rowNames(page))
	assert.False(t, page.Rows[0].IsPrefix())
}

func TestPageBuilder_Pagination(t *testing.T) {
	keys := []string{"a/1", "a/2", "b", "c/1", "c/2", "d"}

	in := &ListInput{Delimiter: "/", MaxKeys: 2}
	first := listSorted(keys, in)
	require.True(t, first.IsTruncated)
	assert.Equal(t, []string{"a/", "b"}, rowNames(first))
	assert.Equal(t, "b", first.NextContinuationToken)

	in.ContinuationToken = first.NextContinuationToken
	second := listSorted(keys, in)
	assert.Equal(t, []string{"c/", "d"}, rowNames(second))
	assert.False(t, second.IsTruncated)
	assert.Empty(t, second.NextContinuationToken)
}

func TestPageBuilder_ResumeAfterCommonPrefix(t *testing.T) {
	keys := []string{"a/1", "a/2", "b"}

	page := listSorted(keys, &ListInput{Delimiter: "/", ContinuationToken: "a/"})

	assert.Equal(t, []string{"b"}, rowNames(page))
}

func TestPageBuilder_ExactPageIsNotTruncated(t *testing.T) {
	page := listSorted([]string{"x", "y"}, &ListInput{MaxKeys: 2})

	assert.Equal(t, []string{"x", "y"}, rowNames(page))
	assert.False(t, page.IsTruncated)
}

func TestPageBuilder_StopsPastPrefix(t *testing.T) {
	b := NewPageBuilder(&ListInput{Prefix: "m/"})

	assert.True(t, b.Add("m/1", &Object{Key: "m/1"}))
	assert.False(t, b.Add("n", &Object{Key: "n"}))
	assert.False(t, b.Add("m/2", &Object{Key: "m/2"}), "builder stays closed")
}

func TestPageBuilder_Start(t *testing.T) {
	assert.Equal(t, "p/", NewPageBuilder(&ListInput{Prefix: "p/"}).Start())
	assert.Equal(t, "p/x", NewPageBuilder(&ListInput{Prefix: "p/", ContinuationToken: "p/x"}).Start())
}

func TestETagOf(t *testing.T) {
	assert.Equal(t, `"d41d8cd98f00b204e9800998ecf8427e"`, ETagOf(nil))
}
