package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const llmEventColumns = `id, sequence, timestamp, provider, model, purpose, group_id, streamed,
	input_tokens, output_tokens, latency_ms, success, error_message, request_body, response_body`

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO llm_request_events
		(sequence, timestamp, provider, model, purpose, group_id, streamed, input_tokens, output_tokens,
		 latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.GroupID, data.Streamed,
		data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
		data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	where, args := whereClause(opts)
	if opts.Purpose != "" {
		if where == "" {
			where = " WHERE purpose = ?"
		} else {
			where += " AND purpose = ?"
		}
		args = append(args, opts.Purpose)
	}
	q := "SELECT " + llmEventColumns + " FROM llm_request_events" + where + " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEventRecord
	for rows.Next() {
		rec, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+llmEventColumns+" FROM llm_request_events WHERE id = ?", id)
	rec, err := scanLLMEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]UsageStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT purpose, COUNT(*), SUM(input_tokens), SUM(output_tokens),
		CAST(AVG(latency_ms) AS INTEGER)
		FROM llm_request_events GROUP BY purpose ORDER BY COUNT(*) DESC, purpose`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []UsageStats
	for rows.Next() {
		var s UsageStats
		if err := rows.Scan(&s.Purpose, &s.Calls, &s.InputTokens, &s.OutputTokens, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens)
		FROM llm_request_events GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var m ModelUsage
		if err := rows.Scan(&m.Model, &m.Calls, &m.InputTokens, &m.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan model usage: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(s scanner) (*LLMEventRecord, error) {
	var rec LLMEventRecord
	err := s.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.Provider, &rec.Model, &rec.Purpose,
		&rec.GroupID, &rec.Streamed, &rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success,
		&rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	return &rec, nil
}
