package repository

import (
	"time"

	"github.com/damoang/angple-wiki/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository system setting data access.
// "key" is reserved in MySQL, so lookups use map conditions that gorm quotes.
type SettingRepository interface {
	Find(key string) (*domain.SystemSetting, error)
	List() ([]*domain.SystemSetting, error)
	Upsert(setting *domain.SystemSetting) error
	Delete(key string) (int64, error)
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new SettingRepository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Find(key string) (*domain.SystemSetting, error) {
	var s domain.SystemSetting
	if err := r.db.Where(map[string]interface{}{"key": key}).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) List() ([]*domain.SystemSetting, error) {
	var rows []*domain.SystemSetting
	err := r.db.Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&rows).Error
	return rows, err
}

func (r *settingRepository) Upsert(setting *domain.SystemSetting) error {
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "encrypted", "updated_at", "updated_by"}),
	}).Create(setting).Error
}

func (r *settingRepository) Delete(key string) (int64, error) {
	res := r.db.Where(map[string]interface{}{"key": key}).Delete(&domain.SystemSetting{})
	return res.RowsAffected, res.Error
}
