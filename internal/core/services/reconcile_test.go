package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

func fetched(typeName string, ids ...int64) domain.FetchResult {
	res := domain.FetchResult{Endpoint: domain.Endpoint{TypeName: typeName}}
	for _, id := range ids {
		res.Entities = append(res.Entities, domain.RawEntity{ID: id})
	}
	return res
}

func TestComputeDeletions(t *testing.T) {
	tests := []struct {
		name     string
		existing domain.Snapshot
		fetched  []domain.FetchResult
		want     map[string][]domain.NodeRef
	}{
		{
			name:     "removed entry is deleted",
			existing: domain.Snapshot{"TYPE_A": {{SourceID: 1, ID: "x"}, {SourceID: 2, ID: "y"}}},
			fetched:  []domain.FetchResult{fetched("TYPE_A", 1)},
			want:     map[string][]domain.NodeRef{"TYPE_A": {{SourceID: 2, ID: "y"}}},
		},
		{
			name:     "all present",
			existing: domain.Snapshot{"TYPE_A": {{SourceID: 1, ID: "x"}}},
			fetched:  []domain.FetchResult{fetched("TYPE_A", 1, 2)},
			want:     map[string][]domain.NodeRef{},
		},
		{
			name:     "configured type with no entities deletes everything",
			existing: domain.Snapshot{"TYPE_A": {{SourceID: 1, ID: "x"}, {SourceID: 2, ID: "y"}}},
			fetched:  []domain.FetchResult{fetched("TYPE_A")},
			want:     map[string][]domain.NodeRef{"TYPE_A": {{SourceID: 1, ID: "x"}, {SourceID: 2, ID: "y"}}},
		},
		{
			name: "unconfigured types are untouched",
			existing: domain.Snapshot{
				"TYPE_A":               {{SourceID: 1, ID: "x"}},
				"TYPE_B":               {{SourceID: 7, ID: "z"}},
				"COMPONENT_SHARED_SEO": {{SourceID: 3, ID: "c"}},
			},
			fetched: []domain.FetchResult{fetched("TYPE_A", 1)},
			want:    map[string][]domain.NodeRef{},
		},
		{
			name:     "empty snapshot",
			existing: domain.Snapshot{},
			fetched:  []domain.FetchResult{fetched("TYPE_A", 1)},
			want:     map[string][]domain.NodeRef{},
		},
		{
			name:     "two endpoints sharing a type are merged",
			existing: domain.Snapshot{"TYPE_A": {{SourceID: 1, ID: "x"}, {SourceID: 2, ID: "y"}}},
			fetched:  []domain.FetchResult{fetched("TYPE_A", 1), fetched("TYPE_A", 2)},
			want:     map[string][]domain.NodeRef{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDeletions(tt.existing, tt.fetched))
		})
	}
}

func TestSortedTypes(t *testing.T) {
	got := sortedTypes(map[string][]domain.NodeRef{"TYPE_B": nil, "TYPE_A": nil})
	assert.Equal(t, []string{"TYPE_A", "TYPE_B"}, got)
}

func TestOwnership_Stale(t *testing.T) {
	stored := []*domain.Node{
		{ID: "entry", Kind: domain.NodeKindEntry},
		{ID: "body", ParentID: "entry", Kind: domain.NodeKindRichText},
		{ID: "seo", ParentID: "entry", Kind: domain.NodeKindComponent},
		{ID: "seo-json", ParentID: "seo", Kind: domain.NodeKindJSON},
		{ID: "old-block", ParentID: "entry", Kind: domain.NodeKindComponent},
		{ID: "old-block-text", ParentID: "old-block", Kind: domain.NodeKindRichText},
		{ID: "legacy-stub", ParentID: "entry", Kind: domain.NodeKindRelation},
		{ID: "other", ParentID: "elsewhere", Kind: domain.NodeKindComponent},
	}
	owned := IndexOwnership(stored)

	tests := []struct {
		name string
		keep []string
		want []string
	}{
		{
			name: "everything rebuilt",
			keep: []string{"entry", "body", "seo", "seo-json", "old-block", "old-block-text"},
			want: nil,
		},
		{
			name: "subtree reported once at its top",
			keep: []string{"entry", "body", "seo", "seo-json"},
			want: []string{"old-block"},
		},
		{
			name: "descends into kept children",
			keep: []string{"entry", "seo", "old-block", "old-block-text"},
			want: []string{"body", "seo-json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep := make(map[string]struct{}, len(tt.keep))
			for _, id := range tt.keep {
				keep[id] = struct{}{}
			}
			assert.ElementsMatch(t, tt.want, owned.Stale("entry", keep))
		})
	}
}

func TestIndexOwnership_SkipsRelationStubs(t *testing.T) {
	owned := IndexOwnership([]*domain.Node{
		{ID: "stub", ParentID: "entry", Kind: domain.NodeKindRelation},
		{ID: "text", ParentID: "entry", Kind: domain.NodeKindRichText},
	})
	assert.Equal(t, []string{"text"}, owned["entry"])
}

func TestReferenced(t *testing.T) {
	refs := Referenced([]*domain.Node{
		{ID: "a", Content: map[string]any{
			"author_link": "w1",
			"tags_link":   []any{"t1", "t2"},
			"title":       "not-a-link",
			"cover":       map[string]any{"localFile_link": "f1"},
		}},
		{ID: "b", Content: map[string]any{"blocks_link": []string{"c1"}}},
		{ID: "c"},
	})

	assert.Len(t, refs, 4)
	for _, id := range []string{"w1", "t1", "t2", "c1"} {
		assert.Contains(t, refs, id)
	}
	assert.NotContains(t, refs, "not-a-link")
}
