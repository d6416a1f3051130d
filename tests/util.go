package testutil

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/classreport/core"
	"github.com/trezcool/classreport/core/report"
	"github.com/trezcool/classreport/storage/database"
)

// PrepareDB opens a fresh, migrated sqlite database that is closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	conf := &core.Config{
		Database: core.DatabaseConfig{
			Engine: database.EngineSQLite,
			Path:   filepath.Join(t.TempDir(), "test.db"),
		},
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})
	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Logger is a core.Logger writing to the test log.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger {
	return &Logger{t: t}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s: %s %s", level, msg, fmt.Sprint(args...))
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.t.Helper()
	l.t.Fatalf("FATAL: %s %s", msg, fmt.Sprint(args...))
}

// StaticSource serves fixed raw group blocks.
type StaticSource []report.RawGroup

func (src StaticSource) RawGroups() ([]report.RawGroup, error) {
	return src, nil
}

const (
	AcmeGroup = "Acme Lv3"
	BetaGroup = "Beta Lv2"
)

// Groups are two small groups sharing the student "Jane".
var Groups = StaticSource{
	{Name: AcmeGroup, Data: "Acme - Lv3,DAY 1,DAY 2\nDate:,01/05,03/05\nAvance:,Unit 1,Unit 2\n80% attendance min to pass\nJane,x,20\nTom,-,x"},
	{Name: BetaGroup, Data: "Beta - Lv2,DAY 1\nDate:,02/05\nJane,x\nLea,5 min late"},
}

// NewStore returns a report.Store over Groups.
func NewStore(t *testing.T) *report.Store {
	return report.NewStore(Groups, report.NewParser(report.Options{}), NewLogger(t))
}
