package relational

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/driftwell/discoveryengine/internal/segment"
	"github.com/driftwell/discoveryengine/internal/vocabulary"
)

var _ vocabulary.Store = (*DB)(nil)

func vocabTableFor(seg segment.Name) (table string, orderByOrderIndex bool, err error) {
	switch seg {
	case segment.Location:
		return "locations", false, nil
	case segment.FundingStage:
		return "funding_stages", true, nil
	case segment.Industries:
		return "industries", false, nil
	case segment.TargetMarkets:
		return "target_markets", false, nil
	case segment.BusinessModels:
		return "business_models", false, nil
	case segment.RevenueModels:
		return "revenue_models", false, nil
	default:
		return "", false, fmt.Errorf("relational: segment %q has no vocabulary table", seg)
	}
}

// List implements vocabulary.Store.
func (db *DB) List(ctx context.Context, seg segment.Name) ([]vocabulary.Entry, error) {
	table, byOrder, err := vocabTableFor(seg)
	if err != nil {
		return nil, err
	}

	orderBy := "name"
	if byOrder {
		orderBy = "order_index"
	}

	hasOrderIndex := seg == segment.FundingStage
	selectCols := "name, synonyms"
	if hasOrderIndex {
		selectCols = "name, '', order_index"
	}

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", selectCols, table, orderBy))
	if err != nil {
		return nil, fmt.Errorf("relational: list %s: %w", seg, err)
	}
	defer rows.Close()

	var out []vocabulary.Entry
	for rows.Next() {
		var e vocabulary.Entry
		var synonymsCSV string
		if hasOrderIndex {
			if err := rows.Scan(&e.Name, &synonymsCSV, &e.OrderIndex); err != nil {
				return nil, err
			}
		} else {
			if err := rows.Scan(&e.Name, &synonymsCSV); err != nil {
				return nil, err
			}
		}
		if synonymsCSV != "" {
			e.Synonyms = strings.Split(synonymsCSV, ",")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExactMatch implements vocabulary.Store.
func (db *DB) ExactMatch(ctx context.Context, seg segment.Name, raw string) (string, bool, error) {
	table, _, err := vocabTableFor(seg)
	if err != nil {
		return "", false, err
	}

	row := db.conn.QueryRowContext(ctx,
		fmt.Sprintf("SELECT name FROM %s WHERE lower(name) = lower(?)", table), raw)

	var canonical string
	switch err := row.Scan(&canonical); err {
	case nil:
		return canonical, true, nil
	default:
		if strings.Contains(err.Error(), "no rows") {
			return "", false, nil
		}
		return "", false, err
	}
}

// RecordUnknown implements vocabulary.Store. It upserts by (rawValue,
// segment), incrementing count and refreshing last_seen (spec §3, §4.4).
func (db *DB) RecordUnknown(ctx context.Context, seg segment.Name, rawValue string) error {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO llm_extractions (raw_value, segment, count, first_seen, last_seen, status, matched_to)
		VALUES (?, ?, 1, ?, ?, 'pending', '')
		ON CONFLICT(raw_value, segment) DO UPDATE SET
			count = count + 1,
			last_seen = excluded.last_seen
	`, rawValue, string(seg), now, now)
	if err != nil {
		return fmt.Errorf("relational: record unknown %q/%q: %w", rawValue, seg, err)
	}
	return nil
}

// ListUnknownExtractions returns the append-only log, newest first. Backs the
// minimal admin collaborator surface (SPEC_FULL.md §12).
func (db *DB) ListUnknownExtractions(ctx context.Context) ([]vocabulary.UnknownExtraction, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT raw_value, segment, count, first_seen, last_seen, status, matched_to
		FROM llm_extractions
		ORDER BY last_seen DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vocabulary.UnknownExtraction
	for rows.Next() {
		var u vocabulary.UnknownExtraction
		var seg, status string
		if err := rows.Scan(&u.RawValue, &seg, &u.Count, &u.FirstSeen, &u.LastSeen, &status, &u.MatchedTo); err != nil {
			return nil, err
		}
		u.Segment = segment.Name(seg)
		u.Status = vocabulary.UnknownExtractionStatus(status)
		out = append(out, u)
	}
	return out, rows.Err()
}
