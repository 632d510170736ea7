package mirror

import (
	"time"
)

// LocalEntry is a regular file found under the input directory
type LocalEntry struct {
	// RelPath is the slash-separated path relative to the input root
	RelPath string
	// AbsPath is the absolute filesystem path
	AbsPath string
	Size    int64
	ModTime time.Time
}

// NodeKind distinguishes files from folders in the remote tree
type NodeKind int

const (
	KindFile NodeKind = iota
	KindFolder
)

func (k NodeKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// RemoteNode is one object in the remote tree under the output root.
// When several siblings share a name, the first one listed is canonical and
// keeps the path; the rest are orphans.
type RemoteNode struct {
	ID       string
	Name     string
	ParentID string
	// RelPath is the slash-separated path relative to the output root.
	// Orphans carry the path they would have owned.
	RelPath string
	Kind    NodeKind
	Owners  []string
	Orphan  bool
}

// OwnedBy reports whether the node is exclusively owned by the given account.
// Nodes with shared or unknown ownership are never considered owned.
func (n *RemoteNode) OwnedBy(email string) bool {
	return len(n.Owners) == 1 && n.Owners[0] == email
}

// RemoteIndex is a snapshot of the remote tree rooted at the output folder
type RemoteIndex struct {
	// RootID is the Drive ID of the output root folder
	RootID  string
	byPath  map[string]*RemoteNode
	byID    map[string]*RemoteNode
	orphans []*RemoteNode
}

// NewRemoteIndex creates an empty index for the given output root
func NewRemoteIndex(rootID string) *RemoteIndex {
	return &RemoteIndex{
		RootID: rootID,
		byPath: make(map[string]*RemoteNode),
		byID:   make(map[string]*RemoteNode),
	}
}

// Add inserts a node, marking it as orphan when its path is already taken
func (idx *RemoteIndex) Add(node *RemoteNode) {
	if _, taken := idx.byPath[node.RelPath]; taken {
		node.Orphan = true
		idx.orphans = append(idx.orphans, node)
	} else {
		idx.byPath[node.RelPath] = node
	}
	idx.byID[node.ID] = node
}

// Lookup returns the canonical node at a relative path
func (idx *RemoteIndex) Lookup(relPath string) (*RemoteNode, bool) {
	node, ok := idx.byPath[relPath]
	return node, ok
}

// ByID returns the node with the given Drive ID
func (idx *RemoteIndex) ByID(id string) (*RemoteNode, bool) {
	node, ok := idx.byID[id]
	return node, ok
}

// Nodes returns all canonical nodes, in no particular order
func (idx *RemoteIndex) Nodes() []*RemoteNode {
	nodes := make([]*RemoteNode, 0, len(idx.byPath))
	for _, node := range idx.byPath {
		nodes = append(nodes, node)
	}
	return nodes
}

// Orphans returns nodes that lost the race for their path
func (idx *RemoteIndex) Orphans() []*RemoteNode {
	return idx.orphans
}

// Len returns the number of indexed nodes including orphans
func (idx *RemoteIndex) Len() int {
	return len(idx.byID)
}

// Upload is one planned file transfer
type Upload struct {
	Entry LocalEntry
	// ParentRelPath is the destination folder path relative to the output root ("" for the root)
	ParentRelPath string
	Name          string
	// ExistingID is set when a canonical remote file already occupies the path;
	// the transfer then updates content in place instead of creating a duplicate.
	ExistingID string
}

// DeleteReason explains why a remote object is planned for deletion
type DeleteReason string

const (
	ReasonStale       DeleteReason = "stale"
	ReasonOrphan      DeleteReason = "orphan"
	ReasonEmptyFolder DeleteReason = "empty-folder"
)

// Deletion is one planned remote removal
type Deletion struct {
	Node   *RemoteNode
	Reason DeleteReason
}

// Plan is the reconciliation outcome for one run. Deletions are ordered so
// that files come before folders and deeper folders before their parents.
type Plan struct {
	Uploads   []Upload
	Deletions []Deletion
}

// ItemResult records the outcome of a single executed action
type ItemResult struct {
	Action  string `json:"action"`
	RelPath string `json:"relPath"`
	ID      string `json:"id,omitempty"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Report summarizes one mirror run
type Report struct {
	RunID          string       `json:"runId"`
	DryRun         bool         `json:"dryRun"`
	StartedAt      time.Time    `json:"startedAt"`
	FinishedAt     time.Time    `json:"finishedAt"`
	Uploaded       int          `json:"uploaded"`
	Updated        int          `json:"updated"`
	Deleted        int          `json:"deleted"`
	FoldersCreated int          `json:"foldersCreated"`
	Failed         int          `json:"failed"`
	Items          []ItemResult `json:"items"`
}
