package mirror

import (
	"context"
	"testing"

	"github.com/gdmirror/gdmirror/internal/logging"
	"github.com/gdmirror/gdmirror/internal/types"
)

func TestResolverReusesIndexedFolders(t *testing.T) {
	store := newFakeStore()
	idx := NewRemoteIndex("root")
	idx.Add(folder("fA", "A", "root", ownerEmail))

	r := NewResolver(store, &types.RequestContext{}, idx, logging.NewNoOpLogger())

	id, err := r.Ensure(context.Background(), "A")
	if err != nil {
		t.Fatal(err)
	}
	if id != "fA" {
		t.Errorf("id = %q, want fA", id)
	}
	if len(store.folders) != 0 {
		t.Errorf("no folders should be created, got %d", len(store.folders))
	}
}

func TestResolverCreatesChainOnce(t *testing.T) {
	store := newFakeStore()
	idx := NewRemoteIndex("root")
	r := NewResolver(store, &types.RequestContext{}, idx, logging.NewNoOpLogger())

	ctx := context.Background()
	first, err := r.Ensure(ctx, "a/b/c")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Ensure(ctx, "a/b/c")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Ensure not idempotent: %q vs %q", first, second)
	}
	if len(store.folders) != 3 {
		t.Fatalf("expected 3 folder creations, got %d", len(store.folders))
	}
	if store.folders[0].Name != "a" || store.folders[0].ParentID != "root" {
		t.Errorf("first creation = %+v", store.folders[0])
	}
	if store.folders[2].Name != "c" || store.folders[2].ParentID != store.folders[1].ID {
		t.Errorf("chain broken: %+v", store.folders)
	}
	if len(r.Created()) != 3 {
		t.Errorf("created count = %d", len(r.Created()))
	}
}

func TestResolverRootPath(t *testing.T) {
	r := NewResolver(newFakeStore(), &types.RequestContext{}, NewRemoteIndex("root"), logging.NewNoOpLogger())
	for _, rel := range []string{"", "."} {
		id, err := r.Ensure(context.Background(), rel)
		if err != nil {
			t.Fatal(err)
		}
		if id != "root" {
			t.Errorf("Ensure(%q) = %q, want root", rel, id)
		}
	}
}

func TestResolveOutputRootFindsExisting(t *testing.T) {
	store := newFakeStore()
	store.addChild("target", remoteFolder("out1", "reports"))
	store.addChild("target", remoteFile("x", "reports")) // same name, not a folder

	id, created, err := ResolveOutputRoot(context.Background(), store, &types.RequestContext{}, "target", "reports", false)
	if err != nil {
		t.Fatal(err)
	}
	if id != "out1" || created != 0 {
		t.Errorf("got id=%q created=%d, want out1/0", id, created)
	}
}

func TestResolveOutputRootCreatesMissing(t *testing.T) {
	store := newFakeStore()
	id, created, err := ResolveOutputRoot(context.Background(), store, &types.RequestContext{}, "target", "reports", false)
	if err != nil {
		t.Fatal(err)
	}
	if created != 1 || id == "" {
		t.Errorf("got id=%q created=%d", id, created)
	}
	if len(store.folders) != 1 || store.folders[0].ParentID != "target" {
		t.Errorf("unexpected creations: %+v", store.folders)
	}
}

func TestResolveOutputRootNestedPath(t *testing.T) {
	store := newFakeStore()
	id, created, err := ResolveOutputRoot(context.Background(), store, &types.RequestContext{}, "target", "reports/2026", false)
	if err != nil {
		t.Fatal(err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	if len(store.folders) != 2 {
		t.Fatalf("expected 2 folder creations, got %d", len(store.folders))
	}
	if store.folders[0].Name != "reports" || store.folders[0].ParentID != "target" {
		t.Errorf("first creation = %+v", store.folders[0])
	}
	if store.folders[1].Name != "2026" || store.folders[1].ParentID != store.folders[0].ID {
		t.Errorf("second creation = %+v", store.folders[1])
	}
	if id != store.folders[1].ID {
		t.Errorf("id = %q, want deepest folder %q", id, store.folders[1].ID)
	}
}

func TestResolveOutputRootNestedPartiallyExisting(t *testing.T) {
	store := newFakeStore()
	store.addChild("target", remoteFolder("rep", "reports"))

	id, created, err := ResolveOutputRoot(context.Background(), store, &types.RequestContext{}, "target", "reports/2026/08", false)
	if err != nil {
		t.Fatal(err)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
	if len(store.folders) != 2 || store.folders[0].Name != "2026" || store.folders[0].ParentID != "rep" {
		t.Fatalf("creations: %+v", store.folders)
	}
	if store.folders[1].Name != "08" || store.folders[1].ParentID != store.folders[0].ID {
		t.Errorf("second creation = %+v", store.folders[1])
	}
	if id != store.folders[1].ID {
		t.Errorf("id = %q, want %q", id, store.folders[1].ID)
	}
}

func TestResolveOutputRootNestedFullyExisting(t *testing.T) {
	store := newFakeStore()
	store.addChild("target", remoteFolder("rep", "reports"))
	store.addChild("rep", remoteFolder("y2026", "2026"))

	id, created, err := ResolveOutputRoot(context.Background(), store, &types.RequestContext{}, "target", "reports/2026", false)
	if err != nil {
		t.Fatal(err)
	}
	if id != "y2026" || created != 0 {
		t.Errorf("got id=%q created=%d, want y2026/0", id, created)
	}
	if len(store.folders) != 0 {
		t.Errorf("no folders should be created, got %+v", store.folders)
	}
}

func TestResolveOutputRootDryRun(t *testing.T) {
	store := newFakeStore()
	store.addChild("target", remoteFolder("rep", "reports"))

	id, created, err := ResolveOutputRoot(context.Background(), store, &types.RequestContext{}, "target", "reports/2026/08", true)
	if err != nil {
		t.Fatal(err)
	}
	if id != "" || created != 2 {
		t.Errorf("got id=%q created=%d, want empty/2", id, created)
	}
	if len(store.folders) != 0 {
		t.Error("dry run must not create folders")
	}
}

func TestResolveOutputRootEmptyPath(t *testing.T) {
	id, created, err := ResolveOutputRoot(context.Background(), newFakeStore(), &types.RequestContext{}, "target", "", false)
	if err != nil {
		t.Fatal(err)
	}
	if id != "target" || created != 0 {
		t.Errorf("got id=%q created=%d, want target/0", id, created)
	}
}

func TestResolveOutputRootRequiresTarget(t *testing.T) {
	_, _, err := ResolveOutputRoot(context.Background(), newFakeStore(), &types.RequestContext{}, "", "reports", false)
	if err == nil {
		t.Fatal("expected error for missing target")
	}
}
