// Package store is the local chat database: thread previews and per-user
// inbox settings persisted in SQLite so the inbox survives restarts.
//
// A Store starts cold. Initialize kicks off opening and migrating the
// database in the background; Ready reports whether that finished. The
// readiness gate in cmd polls Ready before the inbox is hydrated.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// ErrNotReady is returned by data methods before initialization completes.
var ErrNotReady = errors.New("store is not ready")

const memory = ":memory:"

// Preview is the persisted form of an inbox row.
type Preview struct {
	ThreadID string
	Kind     string
	Title    string
	LastBody string
	LastTs   int64
	Unread   int
}

type Option = func(s *Store)

func WithFile(file string) Option {
	if file == "" {
		panic("file can't be blank")
	}
	return func(s *Store) {
		s.file = file
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// Store is the SQLite-backed chat database.
type Store struct {
	file string
	log  zerolog.Logger

	once  sync.Once
	ready atomic.Bool
	db    *sql.DB
}

// New returns an uninitialized Store. Defaults to an in-memory database.
func New(options ...Option) *Store {
	s := &Store{
		file: memory,
		log:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Initialize opens and migrates the database in the background. It is
// idempotent and returns immediately; completion is observable via Ready.
func (s *Store) Initialize() {
	s.once.Do(func() {
		go func() {
			db, err := open(s.file)
			if err != nil {
				s.log.Error().Err(err).Str("file", s.file).Msg("open chat database")
				return
			}
			if err := setup(db); err != nil {
				s.log.Error().Err(err).Msg("migrate chat database")
				db.Close()
				return
			}
			s.db = db
			s.ready.Store(true)
		}()
	})
}

// Ready reports whether the database is open and migrated.
func (s *Store) Ready() bool {
	return s.ready.Load()
}

func (s *Store) handle() (*sql.DB, error) {
	if !s.ready.Load() {
		return nil, ErrNotReady
	}
	return s.db, nil
}

// Close closes the underlying database. The store stays not ready forever
// afterwards; it is not reusable.
func (s *Store) Close() error {
	if !s.ready.Swap(false) {
		return nil
	}
	return s.db.Close()
}

// UpsertPreview inserts or replaces the preview of one thread in one
// user's inbox.
func (s *Store) UpsertPreview(nick string, p Preview) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`
		insert into preview (nick, thread_id, kind, title, last_body, last_ts, unread)
		values (:nick, :thread_id, :kind, :title, :last_body, :last_ts, :unread)
		on conflict (nick, thread_id) do update set
			kind = excluded.kind,
			title = excluded.title,
			last_body = excluded.last_body,
			last_ts = excluded.last_ts,
			unread = excluded.unread
		`,
		sql.Named("nick", nick),
		sql.Named("thread_id", p.ThreadID),
		sql.Named("kind", p.Kind),
		sql.Named("title", p.Title),
		sql.Named("last_body", p.LastBody),
		sql.Named("last_ts", p.LastTs),
		sql.Named("unread", p.Unread),
	)
	return err
}

// MarkRead zeroes the unread counter of one thread.
func (s *Store) MarkRead(nick, threadID string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`update preview set unread = 0 where nick = :nick and thread_id = :thread_id`,
		sql.Named("nick", nick),
		sql.Named("thread_id", threadID),
	)
	return err
}

// DeletePreview removes one thread from one user's inbox.
func (s *Store) DeletePreview(nick, threadID string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`delete from preview where nick = :nick and thread_id = :thread_id`,
		sql.Named("nick", nick),
		sql.Named("thread_id", threadID),
	)
	return err
}

// Previews returns all previews of one user's inbox, newest first.
func (s *Store) Previews(nick string) ([]Preview, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`
		select thread_id, kind, title, last_body, last_ts, unread
		from preview where nick = :nick
		order by last_ts desc
		`,
		sql.Named("nick", nick),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Preview
	for rows.Next() {
		var p Preview
		if err := rows.Scan(&p.ThreadID, &p.Kind, &p.Title, &p.LastBody, &p.LastTs, &p.Unread); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllPreviews returns every persisted preview grouped by nick. Used once,
// to hydrate the in-memory inbox after the readiness gate opens.
func (s *Store) AllPreviews() (map[string][]Preview, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`select nick, thread_id, kind, title, last_body, last_ts, unread from preview`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]Preview{}
	for rows.Next() {
		var nick string
		var p Preview
		if err := rows.Scan(&nick, &p.ThreadID, &p.Kind, &p.Title, &p.LastBody, &p.LastTs, &p.Unread); err != nil {
			return nil, err
		}
		out[nick] = append(out[nick], p)
	}
	return out, rows.Err()
}

// SetMuted persists one user's inbox mute toggle.
func (s *Store) SetMuted(nick string, muted bool) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	m := 0
	if muted {
		m = 1
	}
	_, err = db.Exec(
		`
		insert into settings (nick, muted) values (:nick, :muted)
		on conflict (nick) do update set muted = excluded.muted
		`,
		sql.Named("nick", nick),
		sql.Named("muted", m),
	)
	return err
}

// Muted returns the set of users whose inbox is muted.
func (s *Store) Muted() (map[string]bool, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`select nick from settings where muted = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var nick string
		if err := rows.Scan(&nick); err != nil {
			return nil, err
		}
		out[nick] = true
	}
	return out, rows.Err()
}

func open(file string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY on concurrent writes.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func setup(db *sql.DB) error {
	_, err := db.Exec(
		`
		create table if not exists preview (
			nick text not null,
			thread_id text not null,
			kind text not null,
			title text not null,
			last_body text not null,
			last_ts integer not null,
			unread integer not null,
			primary key (nick, thread_id)
		);

		create table if not exists settings (
			nick text primary key,
			muted integer not null default 0
		);
		`,
	)
	return err
}
