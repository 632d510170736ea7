package mirror

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/gdmirror/gdmirror/internal/drive"
	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
)

// Resolver maps relative folder paths to Drive folder IDs, creating missing
// folders on demand. The cache is seeded from the remote index so existing
// folders are reused rather than duplicated.
type Resolver struct {
	store   drive.Store
	reqCtx  *types.RequestContext
	logger  logging.Logger
	cache   map[string]string
	created []string
}

// NewResolver creates a resolver rooted at the output folder, seeded with
// every canonical folder already present in the index.
func NewResolver(store drive.Store, reqCtx *types.RequestContext, idx *RemoteIndex, logger logging.Logger) *Resolver {
	cache := map[string]string{"": idx.RootID}
	for _, node := range idx.Nodes() {
		if node.Kind == KindFolder {
			cache[node.RelPath] = node.ID
		}
	}
	return &Resolver{
		store:  store,
		reqCtx: reqCtx,
		logger: logger,
		cache:  cache,
	}
}

// Ensure returns the folder ID for a relative directory path, creating the
// folder chain as needed. Repeated calls for the same path are idempotent.
func (r *Resolver) Ensure(ctx context.Context, relPath string) (string, error) {
	if relPath == "" || relPath == "." {
		return r.cache[""], nil
	}
	if id, ok := r.cache[relPath]; ok {
		return id, nil
	}

	parent := path.Dir(relPath)
	if parent == "." {
		parent = ""
	}
	parentID, err := r.Ensure(ctx, parent)
	if err != nil {
		return "", err
	}

	name := path.Base(relPath)
	folder, err := r.store.CreateFolder(ctx, r.reqCtx, name, parentID)
	if err != nil {
		return "", err
	}
	r.logger.Info("Created remote folder",
		logging.F("path", relPath),
		logging.F("id", folder.ID),
	)
	r.cache[relPath] = folder.ID
	r.created = append(r.created, folder.ID)
	return folder.ID, nil
}

// Created returns the IDs of folders materialized during this run
func (r *Resolver) Created() []string {
	return r.created
}

// ResolveOutputRoot resolves a slash-separated output path under the target
// folder, walking it segment by segment and creating the segments that do not
// exist. With an empty path the target itself is the output root. The count
// reports how many folders were created, or would be created in dry-run mode;
// a dry run returns an empty ID as soon as a segment is missing.
func ResolveOutputRoot(ctx context.Context, store drive.Store, reqCtx *types.RequestContext, targetID, outputPath string, dryRun bool) (string, int, error) {
	if targetID == "" {
		return "", 0, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"target folder id required").Build())
	}
	segments := splitOutputPath(outputPath)
	if len(segments) == 0 {
		return targetID, 0, nil
	}

	parentID := targetID
	created := 0
	for i, segment := range segments {
		// Once a segment has been created the rest of the chain cannot exist
		if created == 0 {
			children, err := store.ListChildren(ctx, reqCtx, parentID)
			if err != nil {
				return "", 0, err
			}
			existing := ""
			for _, child := range children {
				if child.IsFolder() && child.Name == segment {
					existing = child.ID
					break
				}
			}
			if existing != "" {
				parentID = existing
				continue
			}
			if dryRun {
				return "", len(segments) - i, nil
			}
		}
		folder, err := store.CreateFolder(ctx, reqCtx, segment, parentID)
		if err != nil {
			return "", created, fmt.Errorf("failed to create output folder %q: %w",
				strings.Join(segments[:i+1], "/"), err)
		}
		parentID = folder.ID
		created++
	}
	return parentID, created, nil
}

// splitOutputPath breaks a slash-separated output path into folder names,
// dropping empty and "." segments.
func splitOutputPath(outputPath string) []string {
	var segments []string
	for _, part := range strings.Split(outputPath, "/") {
		if part == "" || part == "." {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}
