package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-logr/logr"
	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

const schema = `
CREATE TABLE frames (
	tick   INTEGER,
	time   REAL,
	id     INTEGER,
	x      REAL,
	y      REAL,
	vx     REAL,
	vy     REAL,
	mass   REAL,
	radius REAL);
`

const indices = `
CREATE INDEX idx_tick ON frames (tick, id);
CREATE INDEX idx_id ON frames (id);
`

const (
	insertFrame = `INSERT INTO frames VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
	queryTick   = `SELECT tick, time, id, x, y, vx, vy, radius FROM frames WHERE tick = ? ORDER BY id ASC;`
	queryTicks  = `SELECT COUNT(DISTINCT tick) FROM frames;`
)

var ErrDatabaseExists = errors.New("storage: database file already exists")

// SQLiteRecorder logs every observed tick into a frames table, one
// transaction per tick. Observation errors are kept and reported by Err and
// Close, since OnTick cannot return them.
type SQLiteRecorder struct {
	mu   sync.Mutex
	db   *sql.DB
	stmt *sql.Stmt
	err  error
	log  logr.Logger
}

// OpenSQLite creates a new database at filename. An existing file is never
// overwritten.
func OpenSQLite(filename string, log logr.Logger) (*SQLiteRecorder, error) {
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseExists, filename)
	}

	db, err := sql.Open("sqlite3", "file:"+filename+"?_journal_mode=OFF&_synchronous=OFF")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	stmt, err := db.Prepare(insertFrame)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRecorder{db: db, stmt: stmt, log: log}, nil
}

func (r *SQLiteRecorder) OnTick(snap sim.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := r.write(snap); err != nil {
		r.err = fmt.Errorf("storage: tick %d: %w", snap.Tick, err)
		r.log.Error(err, "sqlite frame write failed", "tick", snap.Tick)
	}
}

func (r *SQLiteRecorder) write(snap sim.Snapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(r.stmt)
	for _, b := range snap.Bodies {
		_, err = stmt.Exec(
			snap.Tick,
			snap.Elapsed,
			uint64(b.ID),
			b.Position.X,
			b.Position.Y,
			b.Velocity.X(),
			b.Velocity.Y(),
			b.Mass,
			b.Radius)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Frame reads back the bodies recorded at tick, ordered by ID.
func (r *SQLiteRecorder) Frame(tick uint64) ([]Frame, error) {
	rows, err := r.db.Query(queryTick, tick)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		var id uint64
		if err := rows.Scan(&f.Tick, &f.Time, &id, &f.X, &f.Y, &f.VX, &f.VY, &f.Radius); err != nil {
			return nil, err
		}
		f.ID = physics.BodyID(id)
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// Ticks counts the distinct ticks recorded.
func (r *SQLiteRecorder) Ticks() (int, error) {
	var n int
	err := r.db.QueryRow(queryTicks).Scan(&n)
	return n, err
}

// Close builds the lookup indices and closes the database, returning the
// first observation error if any.
func (r *SQLiteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, idxErr := r.db.Exec(indices)
	return errors.Join(r.err, idxErr, r.stmt.Close(), r.db.Close())
}

var (
	_ sim.Observer = (*SQLiteRecorder)(nil)
	_ sim.Observer = (*Recorder)(nil)
)
