package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LLMRequestData captures one LLM API call for the request log.
type LLMRequestData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	CostUSD      float64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequest is a logged request row.
type LLMRequest struct {
	ID        int
	Timestamp time.Time
	LLMRequestData
}

// QueryOpts configures request log queries.
type QueryOpts struct {
	Limit   int    // max results, newest first (0 = 50)
	Purpose string // filter by purpose label when non-empty
}

// RequestLog records and queries LLM API traffic.
type RequestLog interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestData) error
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequest, error)
	GetLLMRequest(ctx context.Context, id int) (*LLMRequest, error)
}

type requestLog struct {
	db *sql.DB
}

func (l *requestLog) AppendLLMRequest(ctx context.Context, data LLMRequestData) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO llm_requests
			(ts, provider, model, purpose, input_tokens, output_tokens,
			 latency_ms, cost_usd, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.CostUSD, boolToInt(data.Success),
		data.ErrorMessage, data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("append llm request: %w", err)
	}
	return nil
}

func (l *requestLog) QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequest, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, ts, provider, model, purpose, input_tokens, output_tokens,
		       latency_ms, cost_usd, success, error_message, request_body, response_body
		FROM llm_requests`
	args := []any{}
	if opts.Purpose != "" {
		query += ` WHERE purpose = ?`
		args = append(args, opts.Purpose)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		req, err := scanLLMRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func (l *requestLog) GetLLMRequest(ctx context.Context, id int) (*LLMRequest, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, ts, provider, model, purpose, input_tokens, output_tokens,
		       latency_ms, cost_usd, success, error_message, request_body, response_body
		FROM llm_requests WHERE id = ?`, id)

	req, err := scanLLMRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return req, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMRequest(row rowScanner) (*LLMRequest, error) {
	var req LLMRequest
	var ts string
	var success int
	err := row.Scan(
		&req.ID, &ts, &req.Provider, &req.Model, &req.Purpose,
		&req.InputTokens, &req.OutputTokens,
		&req.LatencyMs, &req.CostUSD, &success,
		&req.ErrorMessage, &req.RequestBody, &req.ResponseBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan llm request: %w", err)
	}
	req.Success = success != 0
	if t, terr := time.Parse(time.RFC3339, ts); terr == nil {
		req.Timestamp = t
	}
	return &req, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
