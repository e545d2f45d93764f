package journal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/ulc-deck/internal/infrastructure/config"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/database"
	"github.com/nerrad567/ulc-deck/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Path: ":memory:", BusyTimeout: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreateFillsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := &Entry{Kind: "intent", Channel: "lvc", Slot: "ctx-1", Name: "tap", Detail: "toggle_lights"}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !strings.HasPrefix(e.ID, "evt-") || len(e.ID) != 12 {
		t.Errorf("ID = %q, want evt-xxxxxxxx", e.ID)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	res, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 1 {
		t.Fatalf("Total=%d len=%d, want 1/1", res.Total, len(res.Entries))
	}
	got := res.Entries[0]
	if got.ID != e.ID || got.Kind != "intent" || got.Channel != "lvc" || got.Slot != "ctx-1" ||
		got.Name != "tap" || got.Detail != "toggle_lights" {
		t.Errorf("entry = %+v", got)
	}
	if !got.CreatedAt.Equal(e.CreatedAt.UTC()) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
	}
}

func TestCreateRequiresKind(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Create(context.Background(), &Entry{}); !errors.Is(err, ErrNoKind) {
		t.Errorf("Create() error = %v, want ErrNoKind", err)
	}
}

func TestListFiltersAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seed := []Entry{
		{Kind: "edge", Channel: "ulc", Name: "connect", CreatedAt: base},
		{Kind: "intent", Channel: "ulc", Name: "press", CreatedAt: base.Add(500 * time.Millisecond)},
		{Kind: "intent", Channel: "lvc", Name: "tap", CreatedAt: base.Add(time.Second)},
		{Kind: "edge", Channel: "lvc", Name: "disconnect", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all newest first", Filter{}, []string{"disconnect", "tap", "press", "connect"}},
		{"by kind", Filter{Kind: "intent"}, []string{"tap", "press"}},
		{"by channel", Filter{Channel: "lvc"}, []string{"disconnect", "tap"}},
		{"kind and channel", Filter{Kind: "edge", Channel: "ulc"}, []string{"connect"}},
		{"paged", Filter{Limit: 2, Offset: 1}, []string{"tap", "press"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var names []string
			for _, e := range res.Entries {
				names = append(names, e.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") {
				t.Errorf("names = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestListClampsLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		res, err := repo.List(ctx, Filter{Limit: tt.in, Offset: -1})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if res.Limit != tt.want || res.Offset != 0 {
			t.Errorf("Limit %d -> %d offset %d, want %d offset 0", tt.in, res.Limit, res.Offset, tt.want)
		}
		if res.Entries == nil {
			t.Error("Entries is nil, want empty slice")
		}
	}
}
