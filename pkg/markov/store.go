package markov

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	// boundaryTokenID is the reserved vocabulary row for the boundary marker.
	boundaryTokenID = 0
	// boundaryTokenText is the reserved spelling of the boundary marker row.
	// Real tokens always receive IDs >= 1, so this spelling never collides.
	boundaryTokenText = "<B>"
)

// ErrModelNotFound is returned by LoadChain when the database holds no model
// with the requested name.
var ErrModelNotFound = errors.New("markov: model not found")

// ModelInfo holds the metadata of one chain stored in a database: its row ID,
// name and order.
type ModelInfo struct {
	Id    int
	Name  string
	Order int
}

// SetupSchema initializes the tables and the reserved boundary vocabulary row
// in the provided database. It is idempotent and safe to call on an
// already-initialized database.
func SetupSchema(db *sql.DB) error {
	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS markov_vocabulary (
    token_id INTEGER PRIMARY KEY,
    token_text TEXT NOT NULL UNIQUE
);
`
		schemaPrefixes = `
CREATE TABLE IF NOT EXISTS markov_prefixes (
    prefix_id INTEGER PRIMARY KEY,
    prefix_text TEXT NOT NULL UNIQUE
);
`
		schemaModels = `
CREATE TABLE IF NOT EXISTS markov_models (
    model_id INTEGER PRIMARY KEY,
    model_name TEXT NOT NULL UNIQUE,
    model_order INTEGER NOT NULL
);
`
		schemaChains = `
CREATE TABLE IF NOT EXISTS markov_chains (
    model_id INTEGER NOT NULL,
    prefix_id INTEGER NOT NULL,
    next_token_id INTEGER NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (model_id, prefix_id, next_token_id)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	for _, schema := range []string{schemaVocab, schemaPrefixes, schemaModels, schemaChains} {
		if _, err = tx.Exec(schema); err != nil {
			return fmt.Errorf("could not create schema: %w", err)
		}
	}

	if _, err = tx.Exec(
		`INSERT OR IGNORE INTO markov_vocabulary (token_id, token_text) VALUES (?, ?);`,
		boundaryTokenID, boundaryTokenText,
	); err != nil {
		return fmt.Errorf("could not insert boundary token: %w", err)
	}

	return tx.Commit()
}

// ModelInfos retrieves metadata for all models in the database, keyed by
// model name.
func ModelInfos(ctx context.Context, db *sql.DB) (map[string]ModelInfo, error) {
	rows, err := db.QueryContext(ctx, `SELECT model_id, model_name, model_order FROM markov_models;`)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	models := make(map[string]ModelInfo)
	for rows.Next() {
		var model ModelInfo
		if err = rows.Scan(&model.Id, &model.Name, &model.Order); err != nil {
			return nil, err
		}
		models[model.Name] = model
	}
	return models, rows.Err()
}

// GetModelInfo retrieves the metadata of a single model by name. It returns
// ErrModelNotFound if no such model exists.
func GetModelInfo(ctx context.Context, db *sql.DB, name string) (ModelInfo, error) {
	var model ModelInfo
	model.Name = name
	err := db.QueryRowContext(ctx,
		`SELECT model_id, model_order FROM markov_models WHERE model_name = ?;`, name,
	).Scan(&model.Id, &model.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return ModelInfo{}, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	if err != nil {
		return ModelInfo{}, err
	}
	return model, nil
}

// StoreChain writes a chain into the database under the given model name,
// replacing any chain previously stored under that name. The whole write is
// one transaction.
func StoreChain(ctx context.Context, db *sql.DB, name string, c *Chain[string]) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	var modelID int
	if err = tx.QueryRowContext(ctx,
		`INSERT INTO markov_models (model_name, model_order) VALUES (?, ?)
		 ON CONFLICT(model_name) DO UPDATE SET model_order = excluded.model_order
		 RETURNING model_id;`,
		name, c.Order(),
	).Scan(&modelID); err != nil {
		return fmt.Errorf("could not upsert model %q: %w", name, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM markov_chains WHERE model_id = ?;`, modelID); err != nil {
		return fmt.Errorf("could not clear chains for model %q: %w", name, err)
	}

	stmtVocab, err := tx.PrepareContext(ctx,
		`INSERT INTO markov_vocabulary (token_text) VALUES (?)
		 ON CONFLICT(token_text) DO UPDATE SET token_text = excluded.token_text
		 RETURNING token_id;`)
	if err != nil {
		return fmt.Errorf("could not prepare vocabulary insert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtVocab)

	stmtPrefix, err := tx.PrepareContext(ctx,
		`INSERT INTO markov_prefixes (prefix_text) VALUES (?)
		 ON CONFLICT(prefix_text) DO UPDATE SET prefix_text = excluded.prefix_text
		 RETURNING prefix_id;`)
	if err != nil {
		return fmt.Errorf("could not prepare prefix insert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtPrefix)

	stmtChain, err := tx.PrepareContext(ctx,
		`INSERT INTO markov_chains (model_id, prefix_id, next_token_id, frequency) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("could not prepare chain insert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtChain)

	// Intern IDs are chain-local; map them to database vocabulary rows.
	idMap := make(map[int]int, len(c.tokens))
	idMap[boundaryID] = boundaryTokenID
	for id := 1; id < len(c.tokens); id++ {
		var dbID int
		if err = stmtVocab.QueryRowContext(ctx, c.tokens[id]).Scan(&dbID); err != nil {
			return fmt.Errorf("could not insert token %q: %w", c.tokens[id], err)
		}
		idMap[id] = dbID
	}

	window := make([]int, c.order)
	for _, key := range c.keys {
		for i, id := range parseKey(key) {
			window[i] = idMap[id]
		}
		var prefixID int
		if err = stmtPrefix.QueryRowContext(ctx, nodeKey(window)).Scan(&prefixID); err != nil {
			return fmt.Errorf("could not insert prefix %q: %w", nodeKey(window), err)
		}
		for next, weight := range c.links[key] {
			if _, err = stmtChain.ExecContext(ctx, modelID, prefixID, idMap[next], weight); err != nil {
				return fmt.Errorf("could not insert chain link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// LoadChain reads the named model out of the database and rebuilds it as an
// in-memory chain. Rows that do not form a well-formed chain of the model's
// order are reported as an error, not repaired.
func LoadChain(ctx context.Context, db *sql.DB, name string) (*Chain[string], error) {
	info, err := GetModelInfo(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if info.Order < 1 {
		return nil, fmt.Errorf("markov: model %q has invalid order %d", name, info.Order)
	}

	vocab := make(map[int]string)
	rows, err := db.QueryContext(ctx, `SELECT token_id, token_text FROM markov_vocabulary;`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id int
		var text string
		if err = rows.Scan(&id, &text); err != nil {
			_ = rows.Close()
			return nil, err
		}
		vocab[id] = text
	}
	_ = rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	c := New[string](info.Order)
	window := make([]int, info.Order)

	chainRows, err := db.QueryContext(ctx,
		`SELECT p.prefix_text, ch.next_token_id, ch.frequency
		 FROM markov_chains ch JOIN markov_prefixes p ON p.prefix_id = ch.prefix_id
		 WHERE ch.model_id = ?;`, info.Id)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(chainRows)

	localID := func(dbID int) (int, error) {
		if dbID == boundaryTokenID {
			return boundaryID, nil
		}
		text, ok := vocab[dbID]
		if !ok {
			return 0, fmt.Errorf("markov: model %q references unknown token id %d", name, dbID)
		}
		return c.intern(text), nil
	}

	for chainRows.Next() {
		var prefixText string
		var nextDB int
		var freq uint32
		if err = chainRows.Scan(&prefixText, &nextDB, &freq); err != nil {
			return nil, err
		}
		dbWindow := parseKey(prefixText)
		if len(dbWindow) != info.Order {
			return nil, fmt.Errorf("markov: model %q has a prefix of width %d, order is %d", name, len(dbWindow), info.Order)
		}
		for i, dbID := range dbWindow {
			if window[i], err = localID(dbID); err != nil {
				return nil, err
			}
		}
		next, err := localID(nextDB)
		if err != nil {
			return nil, err
		}
		c.bump(window, next, freq)
	}
	if err = chainRows.Err(); err != nil {
		return nil, err
	}

	return c, nil
}
