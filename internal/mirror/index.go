package mirror

import (
	"context"
	"path"

	"github.com/gdmirror/gdmirror/internal/drive"
	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
)

// BuildIndex lists the remote tree under the output root breadth-first.
// Among siblings sharing a name the first one listed becomes the canonical
// node for that path; the rest are recorded as orphans and not descended,
// since deleting an orphan folder removes its contents with it.
func BuildIndex(ctx context.Context, store drive.Store, reqCtx *types.RequestContext, rootID string, logger logging.Logger) (*RemoteIndex, error) {
	idx := NewRemoteIndex(rootID)

	type queueItem struct {
		id      string
		relPath string
	}
	queue := []queueItem{{id: rootID, relPath: ""}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		children, err := store.ListChildren(ctx, reqCtx, item.id)
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			rel := child.Name
			if item.relPath != "" {
				rel = path.Join(item.relPath, child.Name)
			}

			node := &RemoteNode{
				ID:       child.ID,
				Name:     child.Name,
				ParentID: item.id,
				RelPath:  rel,
				Kind:     KindFile,
				Owners:   child.Owners,
			}
			if child.IsFolder() {
				node.Kind = KindFolder
			}
			idx.Add(node)

			if node.Kind == KindFolder {
				if node.Orphan {
					logger.Warn("Duplicate remote folder",
						logging.F("path", rel),
						logging.F("id", child.ID),
					)
					continue
				}
				queue = append(queue, queueItem{id: child.ID, relPath: rel})
			} else if node.Orphan {
				logger.Warn("Duplicate remote file",
					logging.F("path", rel),
					logging.F("id", child.ID),
				)
			}
		}
	}

	logger.Debug("Remote index built",
		logging.F("nodes", idx.Len()),
		logging.F("orphans", len(idx.Orphans())),
	)
	return idx, nil
}
