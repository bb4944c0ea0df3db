package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/examlens/internal/kind"
)

func (r *eventRepo) AppendSolveSession(ctx context.Context, data SolveSessionData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO solve_sessions
		(sequence, timestamp, group_id, subject, kind, legacy_kind, expected, decoded, invalid,
		 count_mismatch, status, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.GroupID, data.Subject, data.Kind, data.LegacyKind,
		data.Expected, data.Decoded, data.Invalid, data.CountMismatch(),
		data.Status, data.ErrorMessage, data.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("save solve session: %w", err)
	}
	return nil
}

// QuerySolveSessions reads stored kind labels through the alias normalizer,
// so rows written under an older label scheme group with current ones. The
// Kind filter applies to the normalized label.
func (r *eventRepo) QuerySolveSessions(ctx context.Context, opts QueryOpts) ([]SolveSessionRecord, error) {
	where, args := whereClause(opts)
	q := `SELECT id, sequence, timestamp, group_id, subject, kind, legacy_kind, expected, decoded,
		invalid, count_mismatch, status, error_message, duration_ms
		FROM solve_sessions` + where + ` ORDER BY sequence DESC`
	if opts.Limit > 0 && opts.Kind == "" {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query solve sessions: %w", err)
	}
	defer rows.Close()

	var out []SolveSessionRecord
	for rows.Next() {
		var rec SolveSessionRecord
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.GroupID, &rec.Subject,
			&rec.Kind, &rec.LegacyKind, &rec.Expected, &rec.Decoded, &rec.Invalid,
			&rec.Mismatch, &rec.Status, &rec.ErrorMessage, &rec.DurationMs); err != nil {
			return nil, fmt.Errorf("scan solve session: %w", err)
		}
		k := storedKind(rec.Kind, rec.LegacyKind)
		rec.Kind, rec.LegacyKind = string(k), string(kind.ToLegacy(k))
		if opts.Kind != "" && rec.Kind != opts.Kind {
			continue
		}
		out = append(out, rec)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, rows.Err()
}

// storedKind resolves a row's kind label, falling back to its legacy tag
// when the label is missing.
func storedKind(label, legacy string) kind.Kind {
	if label == "" {
		if k, ok := kind.FromLegacy(kind.Legacy(legacy)); ok {
			return k
		}
	}
	return kind.NormalizeLenient(label)
}
