package drive

import (
	"context"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gdmirror/gdmirror/internal/api"
	"github.com/gdmirror/gdmirror/internal/types"
	"github.com/gdmirror/gdmirror/internal/utils"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// Object is the subset of Drive file metadata the mirror engine cares about.
type Object struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
	Owners   []string
}

// IsFolder reports whether the object is a Drive folder
func (o Object) IsFolder() bool {
	return o.MimeType == utils.MimeTypeFolder
}

// Store abstracts the Drive operations used by the mirror engine
type Store interface {
	// ListChildren returns all non-trashed children of a folder, across all pages
	ListChildren(ctx context.Context, reqCtx *types.RequestContext, parentID string) ([]Object, error)
	// CreateFolder creates a folder under the given parent
	CreateFolder(ctx context.Context, reqCtx *types.RequestContext, name, parentID string) (Object, error)
	// UploadFile creates a new file under the given parent from local content
	UploadFile(ctx context.Context, reqCtx *types.RequestContext, localPath, name, parentID string) (Object, error)
	// UpdateFile replaces the content of an existing file in place
	UpdateFile(ctx context.Context, reqCtx *types.RequestContext, fileID, localPath string) (Object, error)
	// DeleteObject permanently deletes a file or folder by ID
	DeleteObject(ctx context.Context, reqCtx *types.RequestContext, fileID string) error
}

const objectFields = "id,name,mimeType,size,owners(emailAddress)"

// DriveStore implements Store against the Drive v3 API
type DriveStore struct {
	client *api.Client
}

// NewStore creates a Drive-backed store
func NewStore(client *api.Client) *DriveStore {
	return &DriveStore{client: client}
}

func (s *DriveStore) ListChildren(ctx context.Context, reqCtx *types.RequestContext, parentID string) ([]Object, error) {
	query := "'" + parentID + "' in parents and trashed = false"
	call := s.client.Service().Files.List().Q(query).
		PageSize(1000).
		Fields(googleapi.Field("nextPageToken,files(" + objectFields + ")"))

	var results []Object
	for {
		list, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drivev3.FileList, error) {
			return call.Do()
		})
		if err != nil {
			return nil, err
		}
		for _, f := range list.Files {
			results = append(results, fromAPI(f))
		}
		if list.NextPageToken == "" {
			break
		}
		call = call.PageToken(list.NextPageToken)
	}
	return results, nil
}

func (s *DriveStore) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, name, parentID string) (Object, error) {
	folder := &drivev3.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
		Parents:  []string{parentID},
	}
	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drivev3.File, error) {
		return s.client.Service().Files.Create(folder).
			Fields(objectFields).
			Do()
	})
	if err != nil {
		return Object{}, err
	}
	return fromAPI(result), nil
}

func (s *DriveStore) UploadFile(ctx context.Context, reqCtx *types.RequestContext, localPath, name, parentID string) (Object, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return Object{}, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	metadata := &drivev3.File{
		Name:    name,
		Parents: []string{parentID},
	}
	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drivev3.File, error) {
		if _, err := file.Seek(0, 0); err != nil {
			return nil, err
		}
		return s.client.Service().Files.Create(metadata).
			Media(file, googleapi.ContentType(detectMimeType(localPath)), googleapi.ChunkSize(utils.UploadChunkSize)).
			Fields(objectFields).
			Do()
	})
	if err != nil {
		return Object{}, err
	}
	return fromAPI(result), nil
}

func (s *DriveStore) UpdateFile(ctx context.Context, reqCtx *types.RequestContext, fileID, localPath string) (Object, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return Object{}, fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drivev3.File, error) {
		if _, err := file.Seek(0, 0); err != nil {
			return nil, err
		}
		return s.client.Service().Files.Update(fileID, &drivev3.File{}).
			Media(file, googleapi.ContentType(detectMimeType(localPath)), googleapi.ChunkSize(utils.UploadChunkSize)).
			Fields(objectFields).
			Do()
	})
	if err != nil {
		return Object{}, err
	}
	return fromAPI(result), nil
}

func (s *DriveStore) DeleteObject(ctx context.Context, reqCtx *types.RequestContext, fileID string) error {
	reqCtx.InvolvedFileIDs = append(reqCtx.InvolvedFileIDs, fileID)
	_, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (struct{}, error) {
		return struct{}{}, s.client.Service().Files.Delete(fileID).Do()
	})
	return err
}

// detectMimeType sniffs content type from the file, falling back to a generic binary type
func detectMimeType(localPath string) string {
	mt, err := mimetype.DetectFile(localPath)
	if err != nil {
		return utils.MimeTypeDefault
	}
	return mt.String()
}

func fromAPI(f *drivev3.File) Object {
	obj := Object{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     f.Size,
	}
	for _, owner := range f.Owners {
		if owner != nil && owner.EmailAddress != "" {
			obj.Owners = append(obj.Owners, owner.EmailAddress)
		}
	}
	return obj
}
