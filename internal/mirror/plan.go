package mirror

import (
	"path"
	"sort"
	"strings"
)

// PlanOptions controls reconciliation
type PlanOptions struct {
	// PurgeStale enables deletion of remote objects with no local counterpart
	PurgeStale bool
	// OwnerEmail is the service account identity; only objects it exclusively
	// owns are ever deleted
	OwnerEmail string
}

// BuildPlan reconciles the local file list against the remote index. Every
// local file becomes an upload; content is always transferred, existing
// remote files are rewritten in place. With PurgeStale enabled, owned remote
// files without a local counterpart, owned orphans, and owned folders left
// empty by those removals are planned for deletion. The output root itself is
// never deleted.
func BuildPlan(local []LocalEntry, idx *RemoteIndex, opts PlanOptions) *Plan {
	plan := &Plan{}

	localSet := make(map[string]struct{}, len(local))
	for _, entry := range local {
		localSet[entry.RelPath] = struct{}{}

		parentRel := path.Dir(entry.RelPath)
		if parentRel == "." {
			parentRel = ""
		}
		upload := Upload{
			Entry:         entry,
			ParentRelPath: parentRel,
			Name:          path.Base(entry.RelPath),
		}
		if node, ok := idx.Lookup(entry.RelPath); ok && node.Kind == KindFile {
			upload.ExistingID = node.ID
		}
		plan.Uploads = append(plan.Uploads, upload)
	}

	if !opts.PurgeStale {
		return plan
	}

	// Folders on the path to any upload destination must survive cleanup
	keepDirs := map[string]struct{}{"": {}}
	for _, upload := range plan.Uploads {
		dir := upload.ParentRelPath
		for dir != "" {
			keepDirs[dir] = struct{}{}
			dir = parentOf(dir)
		}
	}

	deletedIDs := make(map[string]struct{})

	var staleFiles, orphanFiles []*RemoteNode
	for _, node := range idx.Nodes() {
		if node.Kind != KindFile {
			continue
		}
		if _, present := localSet[node.RelPath]; present {
			continue
		}
		if node.OwnedBy(opts.OwnerEmail) {
			staleFiles = append(staleFiles, node)
		}
	}
	var orphanFolders []*RemoteNode
	for _, node := range idx.Orphans() {
		if !node.OwnedBy(opts.OwnerEmail) {
			continue
		}
		if node.Kind == KindFolder {
			orphanFolders = append(orphanFolders, node)
		} else {
			orphanFiles = append(orphanFiles, node)
		}
	}

	sortByPath(staleFiles)
	sortByPath(orphanFiles)

	for _, node := range staleFiles {
		plan.Deletions = append(plan.Deletions, Deletion{Node: node, Reason: ReasonStale})
		deletedIDs[node.ID] = struct{}{}
	}
	for _, node := range orphanFiles {
		plan.Deletions = append(plan.Deletions, Deletion{Node: node, Reason: ReasonOrphan})
		deletedIDs[node.ID] = struct{}{}
	}

	// Deleting an orphan folder removes its contents with it
	sortDeepestFirst(orphanFolders)
	for _, node := range orphanFolders {
		plan.Deletions = append(plan.Deletions, Deletion{Node: node, Reason: ReasonOrphan})
		deletedIDs[node.ID] = struct{}{}
	}

	// Children of each folder, counting orphans, so emptiness checks see
	// everything that is actually inside
	childrenOf := make(map[string][]*RemoteNode)
	for _, node := range idx.Nodes() {
		childrenOf[node.ParentID] = append(childrenOf[node.ParentID], node)
	}
	for _, node := range idx.Orphans() {
		childrenOf[node.ParentID] = append(childrenOf[node.ParentID], node)
	}

	var folders []*RemoteNode
	for _, node := range idx.Nodes() {
		if node.Kind == KindFolder {
			folders = append(folders, node)
		}
	}
	// Deepest first, so a parent emptied by its child's removal cascades
	// within the same pass
	sortDeepestFirst(folders)

	for _, folder := range folders {
		if _, keep := keepDirs[folder.RelPath]; keep {
			continue
		}
		if !folder.OwnedBy(opts.OwnerEmail) {
			continue
		}
		empty := true
		for _, child := range childrenOf[folder.ID] {
			if _, gone := deletedIDs[child.ID]; !gone {
				empty = false
				break
			}
		}
		if !empty {
			continue
		}
		plan.Deletions = append(plan.Deletions, Deletion{Node: folder, Reason: ReasonEmptyFolder})
		deletedIDs[folder.ID] = struct{}{}
	}

	return plan
}

func parentOf(relPath string) string {
	parent := path.Dir(relPath)
	if parent == "." {
		return ""
	}
	return parent
}

func sortByPath(nodes []*RemoteNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].RelPath < nodes[j].RelPath
	})
}

func sortDeepestFirst(nodes []*RemoteNode) {
	sort.Slice(nodes, func(i, j int) bool {
		di, dj := pathDepth(nodes[i].RelPath), pathDepth(nodes[j].RelPath)
		if di != dj {
			return di > dj
		}
		return nodes[i].RelPath < nodes[j].RelPath
	})
}

func pathDepth(relPath string) int {
	if relPath == "" {
		return 0
	}
	return strings.Count(relPath, "/") + 1
}
