package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/linkboard/internal/shortlink"
)

// WebhookStore is the PostgreSQL implementation of shortlink.WebhookRepository.
type WebhookStore struct {
	pool *pgxpool.Pool
}

// NewWebhookStore creates a new PostgreSQL-backed webhook store.
func NewWebhookStore(pool *pgxpool.Pool) *WebhookStore {
	return &WebhookStore{pool: pool}
}

const webhookColumns = `id, name, url, is_active, events, created_at`

func scanWebhook(row pgx.Row) (*shortlink.Webhook, error) {
	var (
		webhook shortlink.Webhook
		events  []byte
	)

	err := row.Scan(
		&webhook.ID,
		&webhook.Name,
		&webhook.URL,
		&webhook.IsActive,
		&events,
		&webhook.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	if len(events) > 0 {
		if err := json.Unmarshal(events, &webhook.Events); err != nil {
			return nil, fmt.Errorf("decode webhook events: %w", err)
		}
	}

	return &webhook, nil
}

func marshalEvents(events []string) ([]byte, error) {
	if events == nil {
		events = []string{}
	}

	return json.Marshal(events)
}

func (s *WebhookStore) Create(ctx context.Context, webhook *shortlink.Webhook) error {
	events, err := marshalEvents(webhook.Events)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhooks (id, name, url, is_active, events, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = s.pool.Exec(ctx, query,
		webhook.ID,
		webhook.Name,
		webhook.URL,
		webhook.IsActive,
		events,
		webhook.CreatedAt,
	)

	return err
}

func (s *WebhookStore) List(ctx context.Context) ([]*shortlink.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWebhooks(rows)
}

func (s *WebhookStore) Update(ctx context.Context, id string, upd shortlink.WebhookUpdate) (*shortlink.Webhook, error) {
	var events []byte

	if upd.Events != nil {
		encoded, err := marshalEvents(*upd.Events)
		if err != nil {
			return nil, err
		}

		events = encoded
	}

	query := `
		UPDATE webhooks SET
			name = COALESCE($2, name),
			url = COALESCE($3, url),
			is_active = COALESCE($4, is_active),
			events = COALESCE($5, events)
		WHERE id = $1
		RETURNING ` + webhookColumns

	return scanWebhook(s.pool.QueryRow(ctx, query,
		id,
		upd.Name,
		upd.URL,
		upd.IsActive,
		events,
	))
}

func (s *WebhookStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortlink.ErrNotFound
	}

	return nil
}

func (s *WebhookStore) ListActiveForEvent(ctx context.Context, event string) ([]*shortlink.Webhook, error) {
	query := `
		SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE is_active AND events @> $1
		ORDER BY created_at DESC
	`

	needle, err := json.Marshal([]string{event})
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, needle)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWebhooks(rows)
}

func collectWebhooks(rows pgx.Rows) ([]*shortlink.Webhook, error) {
	webhooks := make([]*shortlink.Webhook, 0)

	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}

		webhooks = append(webhooks, webhook)
	}

	return webhooks, rows.Err()
}

// DomainStore is the PostgreSQL implementation of shortlink.DomainRepository.
type DomainStore struct {
	pool *pgxpool.Pool
}

// NewDomainStore creates a new PostgreSQL-backed custom domain store.
func NewDomainStore(pool *pgxpool.Pool) *DomainStore {
	return &DomainStore{pool: pool}
}

func (s *DomainStore) Create(ctx context.Context, domain *shortlink.CustomDomain) error {
	query := `
		INSERT INTO custom_domains (
			id, domain, is_verified, verification_method, verification_record,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		domain.ID,
		domain.Domain,
		domain.IsVerified,
		domain.VerificationMethod,
		domain.VerificationRecord,
		domain.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shortlink.ErrDomainTaken
		}

		return err
	}

	return nil
}

func (s *DomainStore) List(ctx context.Context) ([]*shortlink.CustomDomain, error) {
	query := `
		SELECT id, domain, is_verified, verification_method,
			verification_record, created_at
		FROM custom_domains
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	domains := make([]*shortlink.CustomDomain, 0)

	for rows.Next() {
		var domain shortlink.CustomDomain

		err := rows.Scan(
			&domain.ID,
			&domain.Domain,
			&domain.IsVerified,
			&domain.VerificationMethod,
			&domain.VerificationRecord,
			&domain.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		domains = append(domains, &domain)
	}

	return domains, rows.Err()
}

// TokenStore is the PostgreSQL implementation of shortlink.TokenRepository.
type TokenStore struct {
	pool *pgxpool.Pool
}

// NewTokenStore creates a new PostgreSQL-backed API token store.
func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

const tokenColumns = `id, name, token, is_active, last_used, created_at`

func scanToken(row pgx.Row) (*shortlink.APIToken, error) {
	var token shortlink.APIToken

	err := row.Scan(
		&token.ID,
		&token.Name,
		&token.Token,
		&token.IsActive,
		&token.LastUsed,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	return &token, nil
}

func (s *TokenStore) Create(ctx context.Context, token *shortlink.APIToken) error {
	query := `
		INSERT INTO api_tokens (id, name, token, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		token.ID,
		token.Name,
		token.Token,
		token.IsActive,
		token.CreatedAt,
	)

	return err
}

func (s *TokenStore) List(ctx context.Context) ([]*shortlink.APIToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM api_tokens ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]*shortlink.APIToken, 0)

	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}

func (s *TokenStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM api_tokens WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortlink.ErrNotFound
	}

	return nil
}

func (s *TokenStore) GetByToken(ctx context.Context, value string) (*shortlink.APIToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM api_tokens WHERE token = $1`

	return scanToken(s.pool.QueryRow(ctx, query, value))
}

// Compile-time checks.
var (
	_ shortlink.WebhookRepository = (*WebhookStore)(nil)
	_ shortlink.DomainRepository  = (*DomainStore)(nil)
	_ shortlink.TokenRepository   = (*TokenStore)(nil)
)
