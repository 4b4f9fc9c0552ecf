package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/strapisync/internal/core/domain"
)

// ComputeDeletions returns, per entry type, the previously stored nodes
// whose upstream record was not returned by this run's full fetch.
//
// Only types served by one of the fetched endpoints are diffed. Snapshot
// types outside this run's configuration (other sources, components,
// rich-text and JSON children) are never pruned here; owned children go
// with their parent when the sink deletes it.
func ComputeDeletions(existing domain.Snapshot, fetched []domain.FetchResult) map[string][]domain.NodeRef {
	fresh := make(map[string]map[int64]struct{}, len(fetched))
	for _, res := range fetched {
		ids, ok := fresh[res.Endpoint.TypeName]
		if !ok {
			ids = make(map[int64]struct{}, len(res.Entities))
			fresh[res.Endpoint.TypeName] = ids
		}
		for _, e := range res.Entities {
			ids[e.ID] = struct{}{}
		}
	}

	deletions := make(map[string][]domain.NodeRef)
	for typeName, refs := range existing {
		ids, configured := fresh[typeName]
		if !configured {
			continue
		}
		for _, ref := range refs {
			if _, ok := ids[ref.SourceID]; !ok {
				deletions[typeName] = append(deletions[typeName], ref)
			}
		}
	}
	return deletions
}

// Ownership maps a stored node id to the ids of the nodes it owns.
// Relation stubs are references, never owned, and are left out.
type Ownership map[string][]string

// IndexOwnership builds the ownership tree of previously stored nodes.
func IndexOwnership(nodes []*domain.Node) Ownership {
	idx := make(Ownership)
	for _, n := range nodes {
		if n.ParentID == "" || n.Kind == domain.NodeKindRelation {
			continue
		}
		idx[n.ParentID] = append(idx[n.ParentID], n.ID)
	}
	for _, ids := range idx {
		sort.Strings(ids)
	}
	return idx
}

// Stale returns the stored descendants of root that are absent from keep,
// the node set root was just rebuilt with. Only the top node of each stale
// subtree is returned; deleting it removes the rest.
func (o Ownership) Stale(root string, keep map[string]struct{}) []string {
	var stale []string
	queue := append([]string(nil), o[root]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
			continue
		}
		queue = append(queue, o[id]...)
	}
	return stale
}

// Referenced collects every node id linked from the content of nodes.
func Referenced(nodes []*domain.Node) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, n := range nodes {
		for key, v := range n.Content {
			if !strings.HasSuffix(key, domain.LinkKey("")) {
				continue
			}
			switch val := v.(type) {
			case string:
				refs[val] = struct{}{}
			case []any:
				for _, item := range val {
					if id, ok := item.(string); ok {
						refs[id] = struct{}{}
					}
				}
			case []string:
				for _, id := range val {
					refs[id] = struct{}{}
				}
			}
		}
	}
	return refs
}

// sortedTypes returns the keys of a deletion map in a stable order for logging.
func sortedTypes(m map[string][]domain.NodeRef) []string {
	types := make([]string, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
