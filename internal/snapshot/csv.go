package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tablepick/reco/internal/config"
	"github.com/tablepick/reco/pkg/models"
)

// Column aliases: the crawler exports Korean headers, the database export
// English ones. Both load identically.
var (
	nameColumns       = []string{"name", "restaurant_name", "음식점_이름"}
	addressColumns    = []string{"address", "주소"}
	categoryColumns   = []string{"category", "카테고리"}
	latitudeColumns   = []string{"latitude", "위도"}
	longitudeColumns  = []string{"longitude", "경도"}
	reviewColumns     = []string{"reviews", "리뷰"}
	menuColumns       = []string{"menus", "메뉴_정보"}
	imageColumns      = []string{"images", "음식점_사진"}
	userIDColumns     = []string{"user_id"}
	userTagColumns    = []string{"tags"}
	visitUserColumns  = []string{"user_id"}
	visitPlaceColumns = []string{"restaurant_id"}
)

// LoadCSV reads the three snapshot tables from CSV files. The visit table
// is optional; a missing file just means no history is available.
func LoadCSV(cfg config.CSVConfig, logger *logrus.Logger) (*Snapshot, error) {
	restaurants, err := loadRestaurantCSV(cfg.RestaurantPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant table: %w", err)
	}

	users, err := loadUserCSV(cfg.UserPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load user table: %w", err)
	}

	visits, err := loadVisitCSV(cfg.VisitPath)
	if err != nil {
		logger.WithError(err).WithField("path", cfg.VisitPath).
			Warn("Visit table unavailable, continuing without history")
		visits = nil
	}

	s := New(restaurants, users, visits)
	logger.WithFields(logrus.Fields{
		"snapshot_id": s.ID,
		"restaurants": len(restaurants),
		"users":       len(users),
		"visits":      len(visits),
	}).Info("Snapshot loaded from CSV")
	return s, nil
}

func loadRestaurantCSV(path string) ([]models.Restaurant, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var restaurants []models.Restaurant
	for i, row := range rows {
		r := models.Restaurant{
			// Surrogate id in table order, matching the exporter's row index.
			ID:       int64(i),
			Name:     header.get(row, nameColumns),
			Address:  header.get(row, addressColumns),
			Category: header.get(row, categoryColumns),
			Images:   decodeStringList(header.get(row, imageColumns)),
			Reviews:  reviewsFromRaw(header.get(row, reviewColumns)),
			Menus:    menusFromRaw(header.get(row, menuColumns)),
		}
		r.Latitude = parseCoordinate(header.get(row, latitudeColumns))
		r.Longitude = parseCoordinate(header.get(row, longitudeColumns))
		restaurants = append(restaurants, r)
	}
	return restaurants, nil
}

func loadUserCSV(path string) ([]models.UserProfile, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var users []models.UserProfile
	for _, row := range rows {
		id, err := strconv.ParseInt(strings.TrimSpace(header.get(row, userIDColumns)), 10, 64)
		if err != nil {
			continue
		}
		users = append(users, models.UserProfile{
			UserID: id,
			Tags:   decodeStringList(header.get(row, userTagColumns)),
		})
	}
	return users, nil
}

func loadVisitCSV(path string) ([]models.Visit, error) {
	if path == "" {
		return nil, nil
	}
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	var visits []models.Visit
	for _, row := range rows {
		userID, err := strconv.ParseInt(strings.TrimSpace(header.get(row, visitUserColumns)), 10, 64)
		if err != nil {
			continue
		}
		restaurantID, err := strconv.ParseInt(strings.TrimSpace(header.get(row, visitPlaceColumns)), 10, 64)
		if err != nil {
			continue
		}
		visits = append(visits, models.Visit{UserID: userID, RestaurantID: restaurantID})
	}
	return visits, nil
}

type csvHeader map[string]int

func (h csvHeader) get(row []string, aliases []string) string {
	for _, alias := range aliases {
		if i, ok := h[alias]; ok && i < len(row) {
			return row[i]
		}
	}
	return ""
}

func readCSV(path string) ([][]string, csvHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, csvHeader{}, nil
	}

	header := make(csvHeader, len(records[0]))
	for i, column := range records[0] {
		header[strings.TrimSpace(column)] = i
	}
	return records[1:], header, nil
}

func parseCoordinate(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
