package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/redlens/redlens/internal/seed"
	"github.com/redlens/redlens/internal/store"
)

func TestRunSeedsExpectedKeyspace(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	profile := seed.Profile{Users: 50, Products: 10, RandSeed: 42}
	if err := seed.Run(ctx, st, profile); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if st.Len() != 60 {
		t.Errorf("expected 60 keys, got %d", st.Len())
	}

	user, err := st.GetFields(ctx, "user:usr_00000001")
	if err != nil {
		t.Fatalf("GetFields: %v", err)
	}
	for _, field := range []string{"id", "name", "email", "role", "prefs", "created_at"} {
		if user[field] == "" {
			t.Errorf("user missing field %q: %v", field, user)
		}
	}

	product, err := st.GetFields(ctx, "product:prod_0010")
	if err != nil {
		t.Fatalf("GetFields: %v", err)
	}
	if product["title"] == "" || product["price"] == "" {
		t.Errorf("product incomplete: %v", product)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	ctx := context.Background()
	profile := seed.Profile{Users: 20, Products: 5, RandSeed: 42}

	a := store.NewMemoryStore()
	b := store.NewMemoryStore()
	if err := seed.Run(ctx, a, profile); err != nil {
		t.Fatal(err)
	}
	if err := seed.Run(ctx, b, profile); err != nil {
		t.Fatal(err)
	}

	ua, _ := a.GetFields(ctx, "user:usr_00000007")
	ub, _ := b.GetFields(ctx, "user:usr_00000007")
	if ua["name"] != ub["name"] || ua["email"] != ub["email"] {
		t.Errorf("re-seeding diverged: %v vs %v", ua, ub)
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("users: 123\nproducts: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := seed.LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Users != 123 || p.Products != 7 {
		t.Errorf("unexpected profile: %+v", p)
	}
	if p.RandSeed != seed.DefaultProfile().RandSeed {
		t.Errorf("missing seed should default, got %d", p.RandSeed)
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := seed.LoadProfile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing profile file")
	}
}
