package store

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var nowFn = time.Now

// Provider hands out the database backing a session. Demo mode keeps one
// in-memory database per session; persistent mode shares a single one.
type Provider interface {
	// DB returns the session's database, creating and seeding it on first
	// access in demo mode.
	DB(ctx context.Context, sessionID string) (*sql.DB, error)
	// Teardown clears the shift and maintenance collections for one
	// session and reports how many rows went away.
	Teardown(ctx context.Context, sessionID string) (shifts, items int64, err error)
	// TeardownAll clears every session.
	TeardownAll(ctx context.Context) (shifts, items int64, err error)
	Health(ctx context.Context) map[string]any
	Close()
}

type sessionDB struct {
	db         *sql.DB
	lastAccess time.Time
}

// DemoProvider maps each session ID to its own in-memory SQLite database,
// created and seeded on first access. Isolation between sessions is
// structural: no query ever crosses database handles. The map lock covers
// only handle lookup, creation, and teardown, never query execution.
type DemoProvider struct {
	mu       sync.RWMutex
	sessions map[string]*sessionDB

	redis   *redis.Client
	idleTTL time.Duration
	done    chan struct{}
}

func NewDemoProvider(redisClient *redis.Client, idleTTL time.Duration) *DemoProvider {
	p := &DemoProvider{
		sessions: map[string]*sessionDB{},
		redis:    redisClient,
		idleTTL:  idleTTL,
		done:     make(chan struct{}),
	}
	if idleTTL > 0 {
		go p.sweepLoop()
	}
	return p
}

func (p *DemoProvider) DB(ctx context.Context, sessionID string) (*sql.DB, error) {
	p.mu.RLock()
	entry, ok := p.sessions[sessionID]
	p.mu.RUnlock()
	if ok {
		p.touch(ctx, sessionID, entry)
		return entry.db, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok := p.sessions[sessionID]; ok {
		p.touch(ctx, sessionID, entry)
		return entry.db, nil
	}

	db, err := openMemoryDB(sessionID)
	if err != nil {
		return nil, err
	}
	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if err := SeedDemoData(ctx, db, nowFn().UTC()); err != nil {
		db.Close()
		return nil, err
	}

	entry = &sessionDB{db: db, lastAccess: nowFn()}
	p.sessions[sessionID] = entry
	p.touchRedis(ctx, sessionID)
	return db, nil
}

func (p *DemoProvider) touch(ctx context.Context, sessionID string, entry *sessionDB) {
	p.mu.Lock()
	entry.lastAccess = nowFn()
	p.mu.Unlock()
	p.touchRedis(ctx, sessionID)
}

// touchRedis refreshes the session-activity key when a registry is
// configured. Best effort: a registry outage never fails a request.
func (p *DemoProvider) touchRedis(ctx context.Context, sessionID string) {
	if p.redis == nil || p.idleTTL <= 0 {
		return
	}
	if err := p.redis.Set(ctx, activityKey(sessionID), 1, p.idleTTL).Err(); err != nil {
		log.Printf("session registry set error: %v", err)
	}
}

func (p *DemoProvider) Teardown(ctx context.Context, sessionID string) (int64, int64, error) {
	p.mu.RLock()
	entry, ok := p.sessions[sessionID]
	p.mu.RUnlock()
	if !ok {
		return 0, 0, nil
	}
	return clearCollections(ctx, entry.db)
}

func (p *DemoProvider) TeardownAll(ctx context.Context) (int64, int64, error) {
	p.mu.RLock()
	dbs := make([]*sql.DB, 0, len(p.sessions))
	for _, entry := range p.sessions {
		dbs = append(dbs, entry.db)
	}
	p.mu.RUnlock()

	var shifts, items int64
	for _, db := range dbs {
		s, m, err := clearCollections(ctx, db)
		if err != nil {
			return shifts, items, err
		}
		shifts += s
		items += m
	}
	return shifts, items, nil
}

// SweepIdle drops sessions whose databases have not been touched within
// the idle TTL. With a Redis registry configured the TTL key is the
// source of truth; otherwise the in-process timestamp is.
func (p *DemoProvider) SweepIdle(ctx context.Context) {
	cutoff := nowFn().Add(-p.idleTTL)

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, entry := range p.sessions {
		idle := entry.lastAccess.Before(cutoff)
		if p.redis != nil {
			n, err := p.redis.Exists(ctx, activityKey(id)).Result()
			if err == nil {
				idle = n == 0
			}
		}
		if idle {
			entry.db.Close()
			delete(p.sessions, id)
		}
	}
}

func (p *DemoProvider) sweepLoop() {
	ticker := time.NewTicker(p.idleTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.SweepIdle(context.Background())
		case <-p.done:
			return
		}
	}
}

func (p *DemoProvider) Health(ctx context.Context) map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return map[string]any{
		"status":          "ok",
		"mode":            "demo",
		"active_sessions": len(p.sessions),
	}
}

func (p *DemoProvider) SessionCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}

func (p *DemoProvider) Close() {
	if p.idleTTL > 0 {
		close(p.done)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, entry := range p.sessions {
		entry.db.Close()
		delete(p.sessions, id)
	}
}

// SingleProvider serves one shared database to every caller, for running
// against a persistent Postgres instead of throwaway demo sessions.
type SingleProvider struct {
	db *sql.DB
}

func NewSingleProvider(ctx context.Context, db *sql.DB) (*SingleProvider, error) {
	if err := applySchema(ctx, db); err != nil {
		return nil, err
	}
	return &SingleProvider{db: db}, nil
}

func (p *SingleProvider) DB(_ context.Context, _ string) (*sql.DB, error) {
	return p.db, nil
}

func (p *SingleProvider) Teardown(ctx context.Context, _ string) (int64, int64, error) {
	return clearCollections(ctx, p.db)
}

func (p *SingleProvider) TeardownAll(ctx context.Context) (int64, int64, error) {
	return clearCollections(ctx, p.db)
}

func (p *SingleProvider) Health(ctx context.Context) map[string]any {
	if err := p.db.PingContext(ctx); err != nil {
		return map[string]any{"status": "error", "mode": "persistent", "error": err.Error()}
	}
	return map[string]any{"status": "ok", "mode": "persistent"}
}

func (p *SingleProvider) Close() {
	p.db.Close()
}

// ConnectPostgres opens the shared persistent database through the pgx
// database/sql driver.
func ConnectPostgres(url string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openMemoryDB creates a fresh in-memory SQLite database for one session.
// The single pooled connection keeps the memory database alive and
// serializes writes within the session.
func openMemoryDB(sessionID string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+sessionID+"?mode=memory&cache=shared")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

// clearCollections removes every shift and maintenance row in one
// transaction, so a concurrent read sees either the old rows or none.
func clearCollections(ctx context.Context, db *sql.DB) (int64, int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM shifts`)
	if err != nil {
		return 0, 0, err
	}
	shifts, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM maintenance_items`)
	if err != nil {
		return 0, 0, err
	}
	items, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return shifts, items, nil
}

func activityKey(sessionID string) string {
	return "lastmile:session:" + sessionID
}
