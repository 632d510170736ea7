package mirror

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdmirror/gdmirror/internal/drive"
	"github.com/gdmirror/gdmirror/internal/types"
)

type folderCall struct {
	Name     string
	ParentID string
	ID       string
}

type uploadCall struct {
	LocalPath string
	Name      string
	ParentID  string
	ID        string
}

// fakeStore is an in-memory drive.Store for exercising the mirror engine
type fakeStore struct {
	mu       sync.Mutex
	listings map[string][]drive.Object

	nextID  int
	folders []folderCall
	uploads []uploadCall
	updates []string
	deleted []string

	failDelete map[string]bool
	failUpload map[string]bool
	listErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings:   make(map[string][]drive.Object),
		failDelete: make(map[string]bool),
		failUpload: make(map[string]bool),
	}
}

func (s *fakeStore) addChild(parentID string, obj drive.Object) {
	s.listings[parentID] = append(s.listings[parentID], obj)
}

func (s *fakeStore) ListChildren(ctx context.Context, reqCtx *types.RequestContext, parentID string) ([]drive.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listings[parentID], nil
}

func (s *fakeStore) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, name, parentID string) (drive.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("folder-%d", s.nextID)
	s.folders = append(s.folders, folderCall{Name: name, ParentID: parentID, ID: id})
	return drive.Object{ID: id, Name: name, MimeType: "application/vnd.google-apps.folder"}, nil
}

func (s *fakeStore) UploadFile(ctx context.Context, reqCtx *types.RequestContext, localPath, name, parentID string) (drive.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload[name] {
		return drive.Object{}, fmt.Errorf("upload failed for %s", name)
	}
	s.nextID++
	id := fmt.Sprintf("file-%d", s.nextID)
	s.uploads = append(s.uploads, uploadCall{LocalPath: localPath, Name: name, ParentID: parentID, ID: id})
	return drive.Object{ID: id, Name: name}, nil
}

func (s *fakeStore) UpdateFile(ctx context.Context, reqCtx *types.RequestContext, fileID, localPath string) (drive.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, fileID)
	return drive.Object{ID: fileID}, nil
}

func (s *fakeStore) DeleteObject(ctx context.Context, reqCtx *types.RequestContext, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[fileID] {
		return fmt.Errorf("delete failed for %s", fileID)
	}
	s.deleted = append(s.deleted, fileID)
	return nil
}
