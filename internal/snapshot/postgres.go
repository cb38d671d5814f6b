package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/pkg/models"
)

// Querier is the subset of pgxpool.Pool the loader needs; pgxmock satisfies
// it in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Connect opens the snapshot database connection pool.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL config: %w", err)
	}
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return pool, nil
}

// LoadPostgres reads the snapshot tables from the database the external
// preparation pipeline writes. Restaurants keep their table ids as the
// surrogate identity.
func LoadPostgres(ctx context.Context, db Querier, cfg config.PostgresConfig, logger *logrus.Logger) (*Snapshot, error) {
	restaurants, err := loadRestaurantTable(ctx, db, cfg.RestaurantTable)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant table: %w", err)
	}

	users, err := loadUserTable(ctx, db, cfg.UserTable)
	if err != nil {
		return nil, fmt.Errorf("failed to load user table: %w", err)
	}

	visits, err := loadVisitTable(ctx, db, cfg.VisitTable)
	if err != nil {
		logger.WithError(err).WithField("table", cfg.VisitTable).
			Warn("Visit table unavailable, continuing without history")
		visits = nil
	}

	s := New(restaurants, users, visits)
	logger.WithFields(logrus.Fields{
		"snapshot_id": s.ID,
		"restaurants": len(restaurants),
		"users":       len(users),
		"visits":      len(visits),
	}).Info("Snapshot loaded from PostgreSQL")
	return s, nil
}

func loadRestaurantTable(ctx context.Context, db Querier, table string) ([]models.Restaurant, error) {
	query := fmt.Sprintf(`
		SELECT id, name, address, category, latitude, longitude, reviews, menus, images
		FROM %s
		ORDER BY id`, table)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		var (
			r                    models.Restaurant
			reviews, menus, imgs *string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Category,
			&r.Latitude, &r.Longitude, &reviews, &menus, &imgs); err != nil {
			return nil, err
		}
		if reviews != nil {
			r.Reviews = reviewsFromRaw(*reviews)
		}
		if menus != nil {
			r.Menus = menusFromRaw(*menus)
		}
		if imgs != nil {
			r.Images = decodeStringList(*imgs)
		}
		restaurants = append(restaurants, r)
	}
	return restaurants, rows.Err()
}

func loadUserTable(ctx context.Context, db Querier, table string) ([]models.UserProfile, error) {
	query := fmt.Sprintf(`SELECT user_id, tags FROM %s ORDER BY user_id`, table)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserProfile
	for rows.Next() {
		var (
			user models.UserProfile
			tags *string
		)
		if err := rows.Scan(&user.UserID, &tags); err != nil {
			return nil, err
		}
		if tags != nil {
			user.Tags = decodeStringList(*tags)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func loadVisitTable(ctx context.Context, db Querier, table string) ([]models.Visit, error) {
	query := fmt.Sprintf(`SELECT user_id, restaurant_id FROM %s`, table)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var visit models.Visit
		if err := rows.Scan(&visit.UserID, &visit.RestaurantID); err != nil {
			return nil, err
		}
		visits = append(visits, visit)
	}
	return visits, rows.Err()
}
