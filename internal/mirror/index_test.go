package mirror

import (
	"context"
	"testing"

	"github.com/gdmirror/gdmirror/internal/drive"
	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
)

const folderMime = "application/vnd.google-apps.folder"

func remoteFile(id, name string) drive.Object {
	return drive.Object{ID: id, Name: name, Owners: []string{ownerEmail}}
}

func remoteFolder(id, name string) drive.Object {
	return drive.Object{ID: id, Name: name, MimeType: folderMime, Owners: []string{ownerEmail}}
}

func TestBuildIndexWalksTree(t *testing.T) {
	store := newFakeStore()
	store.addChild("root", remoteFolder("fA", "A"))
	store.addChild("root", remoteFile("1", "top.pdf"))
	store.addChild("fA", remoteFile("2", "a.pdf"))

	idx, err := BuildIndex(context.Background(), store, &types.RequestContext{}, "root", logging.NewNoOpLogger())
	if err != nil {
		t.Fatal(err)
	}

	if idx.Len() != 3 {
		t.Fatalf("indexed %d nodes, want 3", idx.Len())
	}
	node, ok := idx.Lookup("A/a.pdf")
	if !ok {
		t.Fatal("A/a.pdf not indexed")
	}
	if node.ID != "2" || node.ParentID != "fA" || node.Kind != KindFile {
		t.Errorf("unexpected node: %+v", node)
	}
	if folderNode, _ := idx.Lookup("A"); folderNode.Kind != KindFolder {
		t.Error("A should be a folder")
	}
}

func TestBuildIndexFirstSeenWins(t *testing.T) {
	store := newFakeStore()
	store.addChild("root", remoteFile("1", "dup.pdf"))
	store.addChild("root", remoteFile("2", "dup.pdf"))

	idx, err := BuildIndex(context.Background(), store, &types.RequestContext{}, "root", logging.NewNoOpLogger())
	if err != nil {
		t.Fatal(err)
	}

	node, _ := idx.Lookup("dup.pdf")
	if node.ID != "1" {
		t.Errorf("canonical node = %s, want 1", node.ID)
	}
	orphans := idx.Orphans()
	if len(orphans) != 1 || orphans[0].ID != "2" || !orphans[0].Orphan {
		t.Errorf("unexpected orphans: %+v", orphans)
	}
}

func TestBuildIndexOrphanFolderNotDescended(t *testing.T) {
	store := newFakeStore()
	store.addChild("root", remoteFolder("fA1", "A"))
	store.addChild("root", remoteFolder("fA2", "A"))
	store.addChild("fA1", remoteFile("1", "canonical.pdf"))
	store.addChild("fA2", remoteFile("2", "hidden.pdf"))

	idx, err := BuildIndex(context.Background(), store, &types.RequestContext{}, "root", logging.NewNoOpLogger())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := idx.Lookup("A/canonical.pdf"); !ok {
		t.Error("canonical folder contents should be indexed")
	}
	if _, ok := idx.ByID("2"); ok {
		t.Error("orphan folder contents must not be indexed")
	}
}

func TestBuildIndexEmptyRoot(t *testing.T) {
	idx, err := BuildIndex(context.Background(), newFakeStore(), &types.RequestContext{}, "root", logging.NewNoOpLogger())
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 0 {
		t.Errorf("expected empty index, got %d nodes", idx.Len())
	}
}
