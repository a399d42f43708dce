// ============================
// File: internal/store/store.go
// ============================

// Package store persists token records and balances in SQLite.
// Движок вызывает Save внутри commit-фазы под замком токена, поэтому
// запись токена и изменённые балансы применяются одной транзакцией.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rovshanmuradov/launchpad/internal/engine"
)

// Store — SQLite-хранилище состояния движка.
type Store struct {
	db *sql.DB
}

// Open открывает базу по пути и накатывает схему.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tokens (
		id             INTEGER PRIMARY KEY,
		creator        TEXT NOT NULL,
		name           TEXT NOT NULL,
		symbol         TEXT NOT NULL,
		metadata_uri   TEXT NOT NULL DEFAULT '',
		virtual_base   INTEGER NOT NULL,
		virtual_tokens INTEGER NOT NULL,
		bonding_supply INTEGER NOT NULL,
		real_reserve   INTEGER NOT NULL DEFAULT 0,
		tokens_sold    INTEGER NOT NULL DEFAULT 0,
		total_burned   INTEGER NOT NULL DEFAULT 0,
		volume         INTEGER NOT NULL DEFAULT 0,
		status         INTEGER NOT NULL DEFAULT 0,
		created_at     INTEGER NOT NULL,
		graduated_at   INTEGER NOT NULL DEFAULT 0,
		pool_ref       TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS balances (
		token_id INTEGER NOT NULL,
		owner    TEXT NOT NULL,
		amount   INTEGER NOT NULL,
		PRIMARY KEY (token_id, owner)
	);

	CREATE INDEX IF NOT EXISTS idx_tokens_creator ON tokens(creator);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save пишет запись токена и изменённые балансы одной транзакцией.
func (s *Store) Save(ctx context.Context, tok engine.Token, changed map[string]uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var graduatedAt int64
	if !tok.GraduatedAt.IsZero() {
		graduatedAt = tok.GraduatedAt.Unix()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO tokens (id, creator, name, symbol, metadata_uri,
			virtual_base, virtual_tokens, bonding_supply,
			real_reserve, tokens_sold, total_burned, volume,
			status, created_at, graduated_at, pool_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			real_reserve = excluded.real_reserve,
			tokens_sold  = excluded.tokens_sold,
			total_burned = excluded.total_burned,
			volume       = excluded.volume,
			status       = excluded.status,
			graduated_at = excluded.graduated_at,
			pool_ref     = excluded.pool_ref`,
		tok.ID, tok.Creator, tok.Name, tok.Symbol, tok.MetadataURI,
		tok.Curve.VirtualBase, tok.Curve.VirtualTokens, tok.Curve.BondingSupply,
		tok.Curve.RealReserve, tok.Curve.TokensSold, tok.TotalBurned, tok.Volume,
		tok.Status, tok.CreatedAt.Unix(), graduatedAt, tok.PoolRef)
	if err != nil {
		return fmt.Errorf("upsert token %d: %w", tok.ID, err)
	}

	for owner, amount := range changed {
		if amount == 0 {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM balances WHERE token_id = ? AND owner = ?`, tok.ID, owner)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO balances (token_id, owner, amount) VALUES (?, ?, ?)
				ON CONFLICT(token_id, owner) DO UPDATE SET amount = excluded.amount`,
				tok.ID, owner, amount)
		}
		if err != nil {
			return fmt.Errorf("upsert balance %d/%s: %w", tok.ID, owner, err)
		}
	}

	return tx.Commit()
}

// LoadTokens читает все записи и балансы для восстановления при старте.
func (s *Store) LoadTokens(ctx context.Context) ([]engine.Token, map[uint64]map[string]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, creator, name, symbol, metadata_uri,
			virtual_base, virtual_tokens, bonding_supply,
			real_reserve, tokens_sold, total_burned, volume,
			status, created_at, graduated_at, pool_ref
		FROM tokens ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []engine.Token
	for rows.Next() {
		var tok engine.Token
		var createdAt, graduatedAt int64
		var status uint8
		if err := rows.Scan(&tok.ID, &tok.Creator, &tok.Name, &tok.Symbol, &tok.MetadataURI,
			&tok.Curve.VirtualBase, &tok.Curve.VirtualTokens, &tok.Curve.BondingSupply,
			&tok.Curve.RealReserve, &tok.Curve.TokensSold, &tok.TotalBurned, &tok.Volume,
			&status, &createdAt, &graduatedAt, &tok.PoolRef); err != nil {
			return nil, nil, fmt.Errorf("scan token: %w", err)
		}
		tok.Status = engine.Status(status)
		tok.CreatedAt = time.Unix(createdAt, 0).UTC()
		if graduatedAt != 0 {
			tok.GraduatedAt = time.Unix(graduatedAt, 0).UTC()
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	balances := make(map[uint64]map[string]uint64)
	brows, err := s.db.QueryContext(ctx, `SELECT token_id, owner, amount FROM balances`)
	if err != nil {
		return nil, nil, fmt.Errorf("query balances: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var tokenID, amount uint64
		var owner string
		if err := brows.Scan(&tokenID, &owner, &amount); err != nil {
			return nil, nil, fmt.Errorf("scan balance: %w", err)
		}
		if balances[tokenID] == nil {
			balances[tokenID] = make(map[string]uint64)
		}
		balances[tokenID][owner] = amount
	}
	if err := brows.Err(); err != nil {
		return nil, nil, err
	}

	return tokens, balances, nil
}

// Close закрывает базу.
func (s *Store) Close() error {
	return s.db.Close()
}
