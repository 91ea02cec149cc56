package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/linkboard/internal/shortlink"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// LinkStore is the PostgreSQL implementation of shortlink.LinkRepository.
type LinkStore struct {
	pool *pgxpool.Pool
}

// NewLinkStore creates a new PostgreSQL-backed link store.
func NewLinkStore(pool *pgxpool.Pool) *LinkStore {
	return &LinkStore{pool: pool}
}

const linkColumns = `
	links.id, links.short_code, links.target_url, links.title,
	links.custom_slug, links.domain, links.is_active, links.webhook_url,
	links.enable_webhook, links.conditional_rules, links.enable_conditionals,
	links.created_at, links.updated_at
`

func scanLinkFields(row pgx.Row, link *shortlink.Link, extra ...any) error {
	var (
		customSlug *string
		domain     *string
		webhookURL *string
		rules      []byte
	)

	dest := []any{
		&link.ID,
		&link.ShortCode,
		&link.TargetURL,
		&link.Title,
		&customSlug,
		&domain,
		&link.IsActive,
		&webhookURL,
		&link.EnableWebhook,
		&rules,
		&link.EnableConditionals,
		&link.CreatedAt,
		&link.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return err
	}

	assign(&link.CustomSlug, customSlug)
	assign(&link.Domain, domain)
	assign(&link.WebhookURL, webhookURL)

	if len(rules) > 0 {
		var cr shortlink.ConditionalRules
		if err := json.Unmarshal(rules, &cr); err != nil {
			return fmt.Errorf("decode conditional rules: %w", err)
		}

		link.ConditionalRules = &cr
	}

	return nil
}

func scanLink(row pgx.Row) (*shortlink.Link, error) {
	var link shortlink.Link

	if err := scanLinkFields(row, &link); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

func marshalRules(rules *shortlink.ConditionalRules) ([]byte, error) {
	if rules == nil {
		return nil, nil
	}

	return json.Marshal(rules)
}

func (s *LinkStore) Create(ctx context.Context, link *shortlink.Link) error {
	rules, err := marshalRules(link.ConditionalRules)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO links (
			id, short_code, target_url, title, custom_slug, domain, is_active,
			webhook_url, enable_webhook, conditional_rules, enable_conditionals,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.pool.Exec(ctx, query,
		link.ID,
		link.ShortCode,
		link.TargetURL,
		link.Title,
		nullable(link.CustomSlug),
		nullable(link.Domain),
		link.IsActive,
		nullable(link.WebhookURL),
		link.EnableWebhook,
		rules,
		link.EnableConditionals,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shortlink.ErrSlugTaken
		}

		return err
	}

	return nil
}

func (s *LinkStore) GetByID(ctx context.Context, id string) (*shortlink.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	return scanLink(s.pool.QueryRow(ctx, query, id))
}

func (s *LinkStore) GetByShortCode(ctx context.Context, code string) (*shortlink.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`

	return scanLink(s.pool.QueryRow(ctx, query, code))
}

func (s *LinkStore) GetByShortCodeAndDomain(ctx context.Context, code, domain string) (*shortlink.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1 AND domain = $2`

	return scanLink(s.pool.QueryRow(ctx, query, code, domain))
}

func (s *LinkStore) Update(ctx context.Context, id string, upd shortlink.LinkUpdate) (*shortlink.Link, error) {
	rules, err := marshalRules(upd.ConditionalRules)
	if err != nil {
		return nil, err
	}

	// COALESCE keeps the stored value when the caller omits a field. The
	// nullable columns store an empty string as NULL, matching Create, so a
	// caller sending "" clears the value.
	query := `
		UPDATE links SET
			target_url = COALESCE($2, target_url),
			title = COALESCE($3, title),
			domain = CASE WHEN $4::text IS NULL THEN domain ELSE NULLIF($4, '') END,
			is_active = COALESCE($5, is_active),
			webhook_url = CASE WHEN $6::text IS NULL THEN webhook_url ELSE NULLIF($6, '') END,
			enable_webhook = COALESCE($7, enable_webhook),
			conditional_rules = COALESCE($8, conditional_rules),
			enable_conditionals = COALESCE($9, enable_conditionals),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + linkColumns

	return scanLink(s.pool.QueryRow(ctx, query,
		id,
		upd.TargetURL,
		upd.Title,
		upd.Domain,
		upd.IsActive,
		upd.WebhookURL,
		upd.EnableWebhook,
		rules,
		upd.EnableConditionals,
	))
}

func (s *LinkStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortlink.ErrNotFound
	}

	return nil
}

func (s *LinkStore) List(ctx context.Context) ([]*shortlink.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*shortlink.Link, 0)

	for rows.Next() {
		var link shortlink.Link

		if err := scanLinkFields(rows, &link); err != nil {
			return nil, err
		}

		links = append(links, &link)
	}

	return links, rows.Err()
}

func (s *LinkStore) Top(ctx context.Context, limit int) ([]*shortlink.TopLink, error) {
	query := `
		SELECT ` + linkColumns + `, count(clicks.id) AS click_count
		FROM links
		LEFT JOIN clicks ON clicks.link_id = links.id
		GROUP BY links.id
		ORDER BY count(clicks.id) DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := make([]*shortlink.TopLink, 0, limit)

	for rows.Next() {
		var entry shortlink.TopLink

		if err := scanLinkFields(rows, &entry.Link, &entry.ClickCount); err != nil {
			return nil, err
		}

		top = append(top, &entry)
	}

	return top, rows.Err()
}

func (s *LinkStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool

	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`, code,
	).Scan(&exists)

	return exists, err
}

// ClickStore is the PostgreSQL implementation of shortlink.ClickRepository.
type ClickStore struct {
	pool *pgxpool.Pool
}

// NewClickStore creates a new PostgreSQL-backed click store.
func NewClickStore(pool *pgxpool.Pool) *ClickStore {
	return &ClickStore{pool: pool}
}

func (s *ClickStore) Record(ctx context.Context, click *shortlink.Click) error {
	query := `
		INSERT INTO clicks (
			id, link_id, ip_address, user_agent, referer, country, city,
			device, browser, os, clicked_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		click.ID,
		click.LinkID,
		nullable(click.IPAddress),
		nullable(click.UserAgent),
		nullable(click.Referer),
		nullable(click.Country),
		nullable(click.City),
		nullable(click.Device),
		nullable(click.Browser),
		nullable(click.OS),
		click.ClickedAt,
	)

	return err
}

func (s *ClickStore) List(ctx context.Context, filter shortlink.ClickFilter) ([]*shortlink.Click, error) {
	query := `
		SELECT id, link_id, ip_address, user_agent, referer, country, city,
			device, browser, os, clicked_at
		FROM clicks
		WHERE ($1 = '' OR link_id::text = $1)
			AND ($2::timestamptz IS NULL OR clicked_at >= $2)
			AND ($3::timestamptz IS NULL OR clicked_at <= $3)
		ORDER BY clicked_at DESC
	`

	rows, err := s.pool.Query(ctx, query, filter.LinkID, filter.Start, filter.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := make([]*shortlink.Click, 0)

	for rows.Next() {
		var (
			click                            shortlink.Click
			ip, ua, ref, country, city       *string
			device, browser, operatingSystem *string
		)

		err := rows.Scan(
			&click.ID,
			&click.LinkID,
			&ip,
			&ua,
			&ref,
			&country,
			&city,
			&device,
			&browser,
			&operatingSystem,
			&click.ClickedAt,
		)
		if err != nil {
			return nil, err
		}

		assign(&click.IPAddress, ip)
		assign(&click.UserAgent, ua)
		assign(&click.Referer, ref)
		assign(&click.Country, country)
		assign(&click.City, city)
		assign(&click.Device, device)
		assign(&click.Browser, browser)
		assign(&click.OS, operatingSystem)

		clicks = append(clicks, &click)
	}

	return clicks, rows.Err()
}

// Compile-time checks.
var (
	_ shortlink.LinkRepository  = (*LinkStore)(nil)
	_ shortlink.ClickRepository = (*ClickStore)(nil)
)
