package feed

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrInvalidPostgresConfig is returned when the connection string cannot be parsed.
	ErrInvalidPostgresConfig = errors.New("feed: invalid postgres configuration")

	// ErrPostgresNotReady is returned when the database cannot be reached
	// within the configured retry budget.
	ErrPostgresNotReady = errors.New("feed: postgres is not ready")

	// ErrMigrationFailed is returned when schema migrations cannot be applied.
	ErrMigrationFailed = errors.New("feed: failed to apply migrations")
)

// PostgresConfig describes the connection pool behind PostgresStorage.
type PostgresConfig struct {
	ConnectionString string        `env:"PG_CONN_URL,required"`
	MaxOpenConns     int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns     int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	RetryAttempts    int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
}

// ConnectPostgres establishes the connection pool for PostgresStorage,
// retrying transient failures so service startup survives a database that
// is still coming up.
func ConnectPostgres(ctx context.Context, cfg PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrInvalidPostgresConfig, err)
	}
	poolCfg.MaxConns = cfg.MaxOpenConns
	poolCfg.MinConns = cfg.MaxIdleConns

	for i := 0; i < max(cfg.RetryAttempts, 1); i++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrPostgresNotReady, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, ErrPostgresNotReady
}

// MigratePostgres applies the embedded schema migrations. goose works on
// database/sql, so the pgx pool is bridged through stdlib.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}
	return nil
}

// PostgresStorage is the production Storage implementation backed by
// PostgreSQL via pgx/v5.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a storage over an established pool.
// The caller retains ownership of the pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const notificationColumns = `id, subscriber_id, channel, content, cta_type, cta_redirect_url, payload, seen, seen_at, created_at, expires_at`

func (s *PostgresStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if n.SubscriberID == "" {
		return ErrMissingSubscriberID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var payload []byte
	if n.Payload != nil {
		var err error
		if payload, err = json.Marshal(n.Payload); err != nil {
			return err
		}
	}

	var ctaType, ctaURL *string
	if n.CTA != nil {
		ctaType = &n.CTA.Type
		ctaURL = &n.CTA.RedirectURL
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		n.ID, n.SubscriberID, string(n.Channel), n.Content,
		ctaType, ctaURL, payload, n.Seen, n.SeenAt, n.CreatedAt, n.ExpiresAt,
	)
	return err
}

func (s *PostgresStorage) Get(ctx context.Context, subscriberID, notifID string) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE subscriber_id = $1 AND id = $2
		  AND (expires_at IS NULL OR expires_at > now())`,
		subscriberID, notifID,
	)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *PostgresStorage) List(ctx context.Context, subscriberID string, opts ListOptions) ([]Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE subscriber_id = $1
		  AND (expires_at IS NULL OR expires_at > now())`
	args := []any{subscriberID}

	if opts.OnlyUnseen {
		query += ` AND seen = FALSE`
	}
	if opts.Channel != "" {
		args = append(args, string(opts.Channel))
		query += ` AND channel = $` + strconv.Itoa(len(args))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(` OFFSET %d`, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *PostgresStorage) MarkSeen(ctx context.Context, subscriberID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET seen = TRUE, seen_at = now()
		WHERE subscriber_id = $1 AND id = ANY($2) AND seen = FALSE`,
		subscriberID, notifIDs,
	)
	return err
}

func (s *PostgresStorage) Delete(ctx context.Context, subscriberID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE subscriber_id = $1 AND id = ANY($2)`,
		subscriberID, notifIDs,
	)
	return err
}

func (s *PostgresStorage) CountUnseen(ctx context.Context, subscriberID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM notifications
		WHERE subscriber_id = $1 AND seen = FALSE
		  AND (expires_at IS NULL OR expires_at > now())`,
		subscriberID,
	).Scan(&count)
	return count, err
}

func (s *PostgresStorage) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var (
		n       Notification
		channel string
		ctaType *string
		ctaURL  *string
		payload []byte
	)
	if err := row.Scan(
		&n.ID, &n.SubscriberID, &channel, &n.Content,
		&ctaType, &ctaURL, &payload, &n.Seen, &n.SeenAt, &n.CreatedAt, &n.ExpiresAt,
	); err != nil {
		return nil, err
	}

	n.Channel = ChannelType(channel)
	if ctaType != nil {
		n.CTA = &CTA{Type: *ctaType}
		if ctaURL != nil {
			n.CTA.RedirectURL = *ctaURL
		}
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &n.Payload); err != nil {
			return nil, err
		}
	}
	return &n, nil
}
