package markov

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates a file-backed SQLite database with the chain schema
// applied. It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}
	return db
}

func TestStoreLoadRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	orig := NewText(2).TrainText("one fish two fish. red fish blue fish. one fish two fish.")
	if err := StoreChain(ctx, db, "fish", orig.Chain); err != nil {
		t.Fatalf("StoreChain() failed: %v", err)
	}

	loaded, err := LoadChain(ctx, db, "fish")
	if err != nil {
		t.Fatalf("LoadChain() failed: %v", err)
	}
	if !loaded.Equal(orig.Chain) {
		t.Error("loaded chain does not equal the stored chain")
	}
	if loaded.Order() != 2 {
		t.Errorf("loaded chain has order %d, want 2", loaded.Order())
	}
}

func TestLoadMissingModel(t *testing.T) {
	db := setupTestDB(t)

	_, err := LoadChain(context.Background(), db, "nope")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("LoadChain of a missing model returned %v, want ErrModelNotFound", err)
	}
}

func TestStoreReplacesModel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := NewText(1).TrainText("old data.")
	if err := StoreChain(ctx, db, "m", first.Chain); err != nil {
		t.Fatalf("StoreChain() failed: %v", err)
	}

	second := NewText(2).TrainText("entirely new data, with more of it.")
	if err := StoreChain(ctx, db, "m", second.Chain); err != nil {
		t.Fatalf("StoreChain() replace failed: %v", err)
	}

	loaded, err := LoadChain(ctx, db, "m")
	if err != nil {
		t.Fatalf("LoadChain() failed: %v", err)
	}
	if loaded.Order() != 2 {
		t.Errorf("replaced model has order %d, want 2", loaded.Order())
	}
	if !loaded.Equal(second.Chain) {
		t.Error("replacing a model should drop the old chain entirely")
	}
}

func TestStoreMultipleModels(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := NewText(1).TrainText("model a text.")
	b := NewText(3).TrainText("model b text, which differs.")
	if err := StoreChain(ctx, db, "a", a.Chain); err != nil {
		t.Fatalf("StoreChain(a) failed: %v", err)
	}
	if err := StoreChain(ctx, db, "b", b.Chain); err != nil {
		t.Fatalf("StoreChain(b) failed: %v", err)
	}

	models, err := ModelInfos(ctx, db)
	if err != nil {
		t.Fatalf("ModelInfos() failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models["a"].Order != 1 || models["b"].Order != 3 {
		t.Errorf("model orders = %d/%d, want 1/3", models["a"].Order, models["b"].Order)
	}

	loadedA, err := LoadChain(ctx, db, "a")
	if err != nil {
		t.Fatalf("LoadChain(a) failed: %v", err)
	}
	if !loadedA.Equal(a.Chain) {
		t.Error("model a was corrupted by storing model b")
	}
}
