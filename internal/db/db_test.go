package db

import (
	"strings"
	"testing"

	"github.com/systemhause/hause/internal/config"
	"github.com/systemhause/hause/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all tables migrated.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DBConfig
		want string
	}{
		{
			name: "default local",
			cfg:  config.DBConfig{Host: "127.0.0.1", Port: 3306, User: "root", Database: "systemhause_meridian"},
			want: "root@tcp(127.0.0.1:3306)/systemhause_meridian?charset=utf8mb4&parseTime=true&loc=Local",
		},
		{
			name: "custom host and port",
			cfg:  config.DBConfig{Host: "10.0.0.5", Port: 3307, User: "root", Database: "systemhause_test"},
			want: "root@tcp(10.0.0.5:3307)/systemhause_test?charset=utf8mb4&parseTime=true&loc=Local",
		},
		{
			name: "credentials from config",
			cfg:  config.DBConfig{Host: "db.internal", Port: 3306, User: "hause", Password: "s3cret", Database: "systemhause"},
			want: "hause:s3cret@tcp(db.internal:3306)/systemhause?charset=utf8mb4&parseTime=true&loc=Local",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.cfg)
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDSN_ParseTimeFlag(t *testing.T) {
	dsn := DSN(config.DBConfig{Host: "localhost", Port: 3306, User: "root", Database: "test"})
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("DSN missing parseTime=true: %s", dsn)
	}
	if !strings.Contains(dsn, "loc=Local") {
		t.Errorf("DSN missing loc=Local: %s", dsn)
	}
}

func TestAllModels_Count(t *testing.T) {
	m := AllModels()
	if len(m) != 9 {
		t.Errorf("AllModels() returned %d models, want 9", len(m))
	}
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"properties", "inspections", "issues", "correction_requests", "inspectors", "builders", "activities"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %q not created", table)
		}
	}
}

func TestGenerateID_Format(t *testing.T) {
	id, err := GenerateID("prop")
	if err != nil {
		t.Fatalf("GenerateID() error: %v", err)
	}
	if !strings.HasPrefix(id, "prop-") {
		t.Errorf("ID %q missing prop- prefix", id)
	}
	// prop- (5 chars) + 5 hex chars = 10 total
	if len(id) != 10 {
		t.Errorf("ID length = %d, want 10; id = %q", len(id), id)
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateID("insp")
		if err != nil {
			t.Fatalf("GenerateID() iteration %d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID %q on iteration %d", id, i)
		}
		seen[id] = true
	}
}

func TestSeedInspectors_InsertsRows(t *testing.T) {
	db := testDB(t)

	err := SeedInspectors(db, []config.InspectorConfig{
		{Name: "Mike Johnson", Phone: "555-0101", Email: "mike@test", ServiceAreas: []string{"Willow Creek"}},
		{Name: "Sarah Williams", Phone: "555-0102", Email: "sarah@test"},
	})
	if err != nil {
		t.Fatalf("SeedInspectors() error: %v", err)
	}

	var rows []models.Inspector
	if err := db.Order("name ASC").Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d inspectors, want 2", len(rows))
	}
	if rows[0].Name != "Mike Johnson" {
		t.Errorf("Name = %q, want %q", rows[0].Name, "Mike Johnson")
	}
	if !strings.Contains(rows[0].ServiceAreas, "Willow Creek") {
		t.Errorf("ServiceAreas = %q, want to contain %q", rows[0].ServiceAreas, "Willow Creek")
	}
	if !rows[0].Active {
		t.Error("seeded inspector should be active")
	}
}

func TestSeedInspectors_UpsertByName(t *testing.T) {
	db := testDB(t)

	if err := SeedInspectors(db, []config.InspectorConfig{{Name: "Mike Johnson", Phone: "555-0101"}}); err != nil {
		t.Fatal(err)
	}
	if err := SeedInspectors(db, []config.InspectorConfig{{Name: "Mike Johnson", Phone: "555-9999"}}); err != nil {
		t.Fatal(err)
	}

	var rows []models.Inspector
	if err := db.Where("name = ?", "Mike Johnson").Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows after re-seed, want 1", len(rows))
	}
	if rows[0].Phone != "555-9999" {
		t.Errorf("Phone = %q, want %q (updated)", rows[0].Phone, "555-9999")
	}
}

func TestSeedBuilders_InsertsRows(t *testing.T) {
	db := testDB(t)

	err := SeedBuilders(db, []config.BuilderConfig{
		{Name: "David Chen", Company: "Meridian Homes", Communities: []string{"Willow Creek", "Oak Ridge"}},
	})
	if err != nil {
		t.Fatalf("SeedBuilders() error: %v", err)
	}

	var b models.Builder
	if err := db.Where("name = ?", "David Chen").First(&b).Error; err != nil {
		t.Fatal(err)
	}
	if b.Company != "Meridian Homes" {
		t.Errorf("Company = %q, want %q", b.Company, "Meridian Homes")
	}
	if !strings.Contains(b.Communities, "Oak Ridge") {
		t.Errorf("Communities = %q, want to contain %q", b.Communities, "Oak Ridge")
	}
}

func TestSeedInspectors_EmptySlice(t *testing.T) {
	err := SeedInspectors(nil, []config.InspectorConfig{})
	if err != nil {
		t.Errorf("SeedInspectors(nil, []) = %v, want nil", err)
	}
}

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    string
		wantErr bool
	}{
		{
			name:  "nil returns empty",
			input: nil,
			want:  "",
		},
		{
			name:  "string slice",
			input: []string{"Willow Creek", "Oak Ridge"},
			want:  `["Willow Creek","Oak Ridge"]`,
		},
		{
			name:  "empty slice",
			input: []string{},
			want:  `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalJSON(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("marshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("marshalJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnect_Error(t *testing.T) {
	// Port 1 is unlikely to have a MySQL server; expect connection error.
	_, err := Connect(config.DBConfig{Host: "127.0.0.1", Port: 1, User: "root", Database: "nonexistent"})
	if err == nil {
		t.Fatal("expected error connecting to invalid port")
	}
	if !strings.Contains(err.Error(), "db: connect to") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "db: connect to")
	}
}
