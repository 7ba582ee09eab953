package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amoylab/coursechat/internal/common/dto"
)

// DB implements Database on gorm; the dialect is chosen by the factory
type DB struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TransactionFromContext(ctx) != nil {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (d *DB) GetPersonaPrompt(ctx context.Context, personaID, promptKey string) (*PersonaPrompt, error) {
	db := getDBFromContext(ctx, d.db)

	var persona Persona
	if err := db.Where("id = ?", personaID).First(&persona).Error; err != nil {
		return nil, notFound(err)
	}
	var prompt Prompt
	if err := db.Where("prompt_key = ?", promptKey).First(&prompt).Error; err != nil {
		return nil, notFound(err)
	}
	return &PersonaPrompt{Persona: persona, GlobalPrefix: prompt.Text}, nil
}

func (d *DB) ListRules(ctx context.Context, personaID string) ([]*Rule, error) {
	var rules []*Rule
	err := getDBFromContext(ctx, d.db).
		Where("persona_id = ? OR persona_id = ?", personaID, "").
		Order("priority desc").
		Order("id asc").
		Find(&rules).Error
	return rules, err
}

func (d *DB) SaveSessionMetadata(ctx context.Context, sessionID string, m *dto.Metadata) (bool, error) {
	row := &SessionMetadata{
		SessionID:        sessionID,
		BrowserName:      m.BrowserName,
		BrowserVersion:   m.BrowserVersion,
		OSName:           m.OSName,
		OSVersion:        m.OSVersion,
		ScreenResolution: m.ScreenResolution,
		Referrer:         m.Referrer,
		UTMSource:        m.UTMSource,
		UTMMedium:        m.UTMMedium,
		UTMCampaign:      m.UTMCampaign,
		UTMTerm:          m.UTMTerm,
		UTMContent:       m.UTMContent,
		Country:          m.Country,
		City:             m.City,
	}
	res := getDBFromContext(ctx, d.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (d *DB) SaveExchange(ctx context.Context, e *Exchange) error {
	return getDBFromContext(ctx, d.db).Create(e).Error
}

func (d *DB) MatchMedia(ctx context.Context, mediaType, tag string) ([]*MediaAsset, error) {
	var assets []*MediaAsset
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || strings.Contains(tag, ",") {
		return assets, nil
	}
	err := getDBFromContext(ctx, d.db).
		Where("media_type = ?", strings.ToLower(mediaType)).
		Where("tags LIKE ?", "%,"+tag+",%").
		Order("position asc").
		Find(&assets).Error
	return assets, err
}

func (d *DB) InsertClicks(ctx context.Context, clicks []*Click) error {
	if len(clicks) == 0 {
		return nil
	}
	return getDBFromContext(ctx, d.db).Create(clicks).Error
}

func (d *DB) InsertMoves(ctx context.Context, moves []*Move) error {
	if len(moves) == 0 {
		return nil
	}
	return getDBFromContext(ctx, d.db).Create(moves).Error
}

func (d *DB) UpcomingCourses(ctx context.Context, from time.Time) ([]*Course, error) {
	var courses []*Course
	err := getDBFromContext(ctx, d.db).
		Where("start_date >= ?", from).
		Order("start_date asc").
		Find(&courses).Error
	return courses, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
