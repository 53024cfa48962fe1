package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE chapters (
	number       INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	english_name TEXT NOT NULL,
	translated   INTEGER NOT NULL
);
CREATE TABLE verses (
	chapter    INTEGER NOT NULL REFERENCES chapters(number),
	verse      INTEGER NOT NULL,
	text       TEXT,
	invocation INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (chapter, verse)
);
`

// WriteSQLite writes doc to a new SQLite database at path, replacing any existing file
func WriteSQLite(ctx context.Context, path string, doc *Document) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove existing %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := insertAll(ctx, tx, doc); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, doc *Document) error {
	meta := [][2]string{
		{"source", doc.Meta.Source},
		{"generation", doc.Meta.Generation},
		{"digest", doc.Meta.Digest},
		{"dialect", doc.Meta.Dialect},
		{"exported_at", doc.Meta.ExportedAt.Format(time.RFC3339)},
	}
	for i, c := range doc.Meta.Unshifted {
		meta = append(meta, [2]string{"unshifted_chapter_" + strconv.Itoa(i), strconv.Itoa(c)})
	}
	for _, kv := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			return fmt.Errorf("insert meta %s: %w", kv[0], err)
		}
	}

	chapterStmt, err := tx.PrepareContext(ctx, "INSERT INTO chapters (number, name, english_name, translated) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare chapters: %w", err)
	}
	defer chapterStmt.Close()

	verseStmt, err := tx.PrepareContext(ctx, "INSERT INTO verses (chapter, verse, text, invocation) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare verses: %w", err)
	}
	defer verseStmt.Close()

	for _, ch := range doc.Chapters {
		if _, err := chapterStmt.ExecContext(ctx, ch.Number, ch.Name, ch.EnglishName, ch.Translated); err != nil {
			return fmt.Errorf("insert chapter %d: %w", ch.Number, err)
		}
		for _, v := range ch.Verses {
			var text sql.NullString
			if v.Text != nil {
				text = sql.NullString{String: *v.Text, Valid: true}
			}
			invocation := 0
			if v.Invocation {
				invocation = 1
			}
			if _, err := verseStmt.ExecContext(ctx, ch.Number, v.Verse, text, invocation); err != nil {
				return fmt.Errorf("insert verse %d:%d: %w", ch.Number, v.Verse, err)
			}
		}
	}
	return nil
}
