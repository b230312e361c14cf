package tester

import (
	"context"
	"fmt"
	"testing"

	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/store"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB opens a private in-memory sqlite database with every table migrated.
// The database lives until the test finishes.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	// a single connection keeps the shared in-memory database free of table locks
	sqlDB.SetMaxOpenConns(1)

	if err = model.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// TestStore returns a GormStore over a fresh TestDB.
func TestStore(t testing.TB) *store.GormStore {
	t.Helper()
	return store.NewGormStore(TestDB(t))
}

// Fixture is a small staging topology: one site with staging enabled, its
// enabled servers, and a node on that site.
type Fixture struct {
	Site    *model.Site
	Servers []*model.Server
	Node    *model.Node
}

// Seed creates a site with staging enabled, n enabled servers, one disabled
// server, and a node with document id 100 on the site.
func Seed(t testing.TB, s store.Store, n int) *Fixture {
	t.Helper()
	ctx := context.Background()

	site := &model.Site{Name: "corporate", DisplayName: "Corporate", StagingEnabled: true}
	must(t, s.CreateSite(ctx, site))

	f := &Fixture{Site: site}
	for i := 0; i < n; i++ {
		server := &model.Server{Name: fmt.Sprintf("target-%d", i+1), SiteID: site.ID, Enabled: true}
		must(t, s.CreateServer(ctx, server))
		f.Servers = append(f.Servers, server)
	}

	must(t, s.CreateServer(ctx, &model.Server{Name: "disabled", SiteID: site.ID}))

	node := &model.Node{SiteID: site.ID, SiteName: site.Name, AliasPath: "/news/launch", DocumentID: 100}
	must(t, s.CreateNode(ctx, node))
	f.Node = node

	return f
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}
