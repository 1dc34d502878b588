// Package offlinedb persiste la cola local de eventos pendientes en SQLite.
// Es estado de una sola sesión en disco local: sobrevive reinicios del proceso
// y nunca se comparte entre instancias.
package offlinedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/puntoventa-api/internal/application/offline"
)

var _ offline.Store = (*Store)(nil)

// Store almacén SQLite de la cola offline. WAL para que una escritura del
// POS no bloquee la lectura del drenado.
type Store struct {
	db *sql.DB
}

// New abre (o crea) la base local. Usar ":memory:" en tests.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio de cola offline: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("abrir cola offline: %w", err)
	}
	// Una sola conexión: la cola es de una sesión y SQLite serializa igual.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrar cola offline: %w", err)
	}
	return s, nil
}

// Close cierra la base local.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pending_events (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		enqueued_at TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_pending_events_enqueued_at
		ON pending_events(enqueued_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append persiste un evento pendiente.
func (s *Store) Append(ev *offline.Event) error {
	_, err := s.db.Exec(`
		INSERT INTO pending_events (id, kind, payload, enqueued_at, attempts, last_error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Kind, string(ev.Payload), ev.EnqueuedAt.UTC().Format(time.RFC3339Nano),
		ev.Attempts, ev.LastError,
	)
	if err != nil {
		return fmt.Errorf("insert evento pendiente: %w", err)
	}
	return nil
}

// List devuelve los eventos pendientes en orden de encolado (FIFO).
func (s *Store) List() ([]*offline.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, payload, enqueued_at, attempts, last_error
		FROM pending_events ORDER BY enqueued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listar eventos pendientes: %w", err)
	}
	defer rows.Close()
	var events []*offline.Event
	for rows.Next() {
		var ev offline.Event
		var payload, enqueuedAt string
		if err := rows.Scan(&ev.ID, &ev.Kind, &payload, &enqueuedAt, &ev.Attempts, &ev.LastError); err != nil {
			return nil, fmt.Errorf("scan evento pendiente: %w", err)
		}
		ev.Payload = []byte(payload)
		if t, err := time.Parse(time.RFC3339Nano, enqueuedAt); err == nil {
			ev.EnqueuedAt = t
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// Remove saca un evento de la cola (ya sincronizado).
func (s *Store) Remove(id string) error {
	_, err := s.db.Exec(`DELETE FROM pending_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("borrar evento pendiente: %w", err)
	}
	return nil
}

// MarkFailed registra un intento fallido sin sacar el evento de la cola.
func (s *Store) MarkFailed(id string, attempts int, lastError string) error {
	_, err := s.db.Exec(`
		UPDATE pending_events SET attempts = ?, last_error = ? WHERE id = ?`,
		attempts, lastError, id,
	)
	if err != nil {
		return fmt.Errorf("marcar evento fallido: %w", err)
	}
	return nil
}

// Count devuelve cuántos eventos siguen pendientes.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM pending_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("contar eventos pendientes: %w", err)
	}
	return n, nil
}
