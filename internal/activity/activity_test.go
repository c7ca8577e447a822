package activity

import (
	"testing"

	"github.com/systemhause/hause/internal/db"
	"github.com/systemhause/hause/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func TestRecordAndForProperty(t *testing.T) {
	gdb := testDB(t)

	Record(gdb, "prop-00001", KindPropertyRegistered, "admin", "property registered", "")
	Record(gdb, "prop-00001", KindInspectionScheduled, "admin", "pre-rock scheduled", "")
	Record(gdb, "prop-00002", KindPropertyRegistered, "admin", "property registered", "")

	entries, err := ForProperty(gdb, "prop-00001", 0)
	if err != nil {
		t.Fatalf("ForProperty(): %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Newest first.
	if entries[0].Kind != KindInspectionScheduled {
		t.Errorf("entries[0].Kind = %s, want %s", entries[0].Kind, KindInspectionScheduled)
	}
	if entries[1].Kind != KindPropertyRegistered {
		t.Errorf("entries[1].Kind = %s, want %s", entries[1].Kind, KindPropertyRegistered)
	}
}

func TestRecentAcrossProperties(t *testing.T) {
	gdb := testDB(t)

	Record(gdb, "prop-00001", KindPropertyRegistered, "admin", "registered", "")
	Record(gdb, "prop-00002", KindPropertyRegistered, "admin", "registered", "")
	Record(gdb, "prop-00001", KindInspectionPassed, "insp", "pre-rock passed", "")

	entries, err := Recent(gdb, 0)
	if err != nil {
		t.Fatalf("Recent(): %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].Kind != KindInspectionPassed {
		t.Errorf("entries[0].Kind = %s, want %s", entries[0].Kind, KindInspectionPassed)
	}
}

func TestRecentLimit(t *testing.T) {
	gdb := testDB(t)

	for i := 0; i < 5; i++ {
		Record(gdb, "prop-00001", KindDocumentAdded, "admin", "doc added", "")
	}

	entries, err := Recent(gdb, 2)
	if err != nil {
		t.Fatalf("Recent(): %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestRecordFailureIsSwallowed(t *testing.T) {
	gdb := testDB(t)

	// Drop the table so the insert fails. Record must not panic.
	if err := gdb.Migrator().DropTable(&models.Activity{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	Record(gdb, "prop-00001", KindPropertyRegistered, "admin", "registered", "")
}
