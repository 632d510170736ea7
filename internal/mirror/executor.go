package mirror

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gdmirror/gdmirror/internal/drive"
	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExecOptions controls plan execution
type ExecOptions struct {
	// Concurrency bounds the number of parallel file transfers
	Concurrency int
	// DryRun reports planned actions without touching the remote
	DryRun bool
}

// Executor applies a reconciliation plan against the remote store
type Executor struct {
	store    drive.Store
	resolver *Resolver
	reqCtx   *types.RequestContext
	logger   logging.Logger
}

// NewExecutor creates an executor bound to one run's request context
func NewExecutor(store drive.Store, resolver *Resolver, reqCtx *types.RequestContext, logger logging.Logger) *Executor {
	return &Executor{
		store:    store,
		resolver: resolver,
		reqCtx:   reqCtx,
		logger:   logger,
	}
}

// Apply executes the plan: folders are materialized first, then file
// transfers run concurrently, then deletions run sequentially in plan order.
// Individual failures are recorded per item and do not stop the run; a
// partial-failure error is returned alongside the report when any item failed.
func (e *Executor) Apply(ctx context.Context, plan *Plan, opts ExecOptions) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		report.FinishedAt = time.Now().UTC()
	}()

	if opts.DryRun {
		for _, upload := range plan.Uploads {
			report.Items = append(report.Items, ItemResult{
				Action:  uploadAction(upload),
				RelPath: upload.Entry.RelPath,
				ID:      upload.ExistingID,
				OK:      true,
			})
			countUpload(report, upload)
		}
		for _, deletion := range plan.Deletions {
			report.Items = append(report.Items, ItemResult{
				Action:  "delete",
				RelPath: deletion.Node.RelPath,
				ID:      deletion.Node.ID,
				OK:      true,
			})
			report.Deleted++
		}
		return report, nil
	}

	if err := e.materializeFolders(ctx, plan); err != nil {
		return report, err
	}
	report.FoldersCreated = len(e.resolver.Created())

	e.runUploads(ctx, plan.Uploads, opts.Concurrency, report)
	if ctx.Err() != nil {
		return report, cancelledError()
	}

	for _, deletion := range plan.Deletions {
		if ctx.Err() != nil {
			return report, cancelledError()
		}
		item := ItemResult{
			Action:  "delete",
			RelPath: deletion.Node.RelPath,
			ID:      deletion.Node.ID,
		}
		if err := e.store.DeleteObject(ctx, e.reqCtx, deletion.Node.ID); err != nil {
			item.Error = err.Error()
			report.Failed++
			e.logger.Error("Delete failed",
				logging.F("path", deletion.Node.RelPath),
				logging.F("id", deletion.Node.ID),
				logging.F("reason", string(deletion.Reason)),
				logging.F("error", err.Error()),
			)
		} else {
			item.OK = true
			report.Deleted++
			e.logger.Info("Deleted remote object",
				logging.F("path", deletion.Node.RelPath),
				logging.F("kind", deletion.Node.Kind.String()),
				logging.F("reason", string(deletion.Reason)),
			)
		}
		report.Items = append(report.Items, item)
	}

	if report.Failed > 0 {
		return report, utils.NewAppError(utils.NewCLIError(utils.ErrCodePartialFailure,
			fmt.Sprintf("%d of %d actions failed", report.Failed, len(report.Items))).
			WithContext("runId", report.RunID).
			Build())
	}
	return report, nil
}

// materializeFolders ensures every upload destination exists, shallowest first
func (e *Executor) materializeFolders(ctx context.Context, plan *Plan) error {
	seen := make(map[string]struct{})
	var dirs []string
	for _, upload := range plan.Uploads {
		if _, ok := seen[upload.ParentRelPath]; ok {
			continue
		}
		seen[upload.ParentRelPath] = struct{}{}
		dirs = append(dirs, upload.ParentRelPath)
	}
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := pathDepth(dirs[i]), pathDepth(dirs[j])
		if di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})
	for _, dir := range dirs {
		if _, err := e.resolver.Ensure(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runUploads(ctx context.Context, uploads []Upload, concurrency int, report *Report) {
	if concurrency <= 0 {
		concurrency = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, upload := range uploads {
		upload := upload
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			item := ItemResult{
				Action:  uploadAction(upload),
				RelPath: upload.Entry.RelPath,
			}

			obj, err := e.transfer(gctx, upload)
			if err != nil {
				item.Error = err.Error()
				e.logger.Error("Transfer failed",
					logging.F("path", upload.Entry.RelPath),
					logging.F("error", err.Error()),
				)
			} else {
				item.ID = obj.ID
				item.OK = true
				e.logger.Info("Transferred file",
					logging.F("path", upload.Entry.RelPath),
					logging.F("id", obj.ID),
					logging.F("size", upload.Entry.Size),
				)
			}

			mu.Lock()
			report.Items = append(report.Items, item)
			if item.OK {
				countUpload(report, upload)
			} else {
				report.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Executor) transfer(ctx context.Context, upload Upload) (drive.Object, error) {
	if upload.ExistingID != "" {
		return e.store.UpdateFile(ctx, e.reqCtx, upload.ExistingID, upload.Entry.AbsPath)
	}
	parentID, err := e.resolver.Ensure(ctx, upload.ParentRelPath)
	if err != nil {
		return drive.Object{}, err
	}
	return e.store.UploadFile(ctx, e.reqCtx, upload.Entry.AbsPath, upload.Name, parentID)
}

func uploadAction(upload Upload) string {
	if upload.ExistingID != "" {
		return "update"
	}
	return "upload"
}

func countUpload(report *Report, upload Upload) {
	if upload.ExistingID != "" {
		report.Updated++
	} else {
		report.Uploaded++
	}
}

func cancelledError() error {
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeCancelled, "operation cancelled").Build())
}
