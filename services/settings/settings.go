// Package settings stores global key/value site configuration such as the
// maintenance flag, signup toggle and the site-wide notice.
package settings

import (
	"errors"

	"gorm.io/gorm"

	"github.com/atelierhub/atelier/models"
)

var ErrUnknownKey = errors.New("settings: unknown key")

var defaults = map[string]string{
	models.SettingMaintenanceMode: "false",
	models.SettingSignupEnabled:   "true",
	models.SettingNotice:          "",
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// EnsureDefaults seeds missing well-known keys at boot.
func (s *Service) EnsureDefaults() error {
	for key, value := range defaults {
		row := models.Setting{Key: key, Value: value}
		if err := s.db.Where(models.Setting{Key: key}).FirstOrCreate(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get returns one setting row.
func (s *Service) Get(key string) (*models.Setting, error) {
	if _, ok := defaults[key]; !ok {
		return nil, ErrUnknownKey
	}
	var row models.Setting
	if err := s.db.Where("`key` = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Setting{Key: key, Value: defaults[key], Version: 1}, nil
		}
		return nil, err
	}
	return &row, nil
}

// All returns every well-known setting.
func (s *Service) All() ([]models.Setting, error) {
	out := make([]models.Setting, 0, len(defaults))
	for key := range defaults {
		row, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	return out, nil
}

// Put writes a setting. The version bumps only when the stored value really
// changes, so re-saving an identical notice does not mark it unread.
func (s *Service) Put(key, value string) (*models.Setting, error) {
	if _, ok := defaults[key]; !ok {
		return nil, ErrUnknownKey
	}
	var row models.Setting
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("`key` = ?", key).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.Setting{Key: key, Value: value, Version: 1}
			return tx.Create(&row).Error
		}
		if err != nil {
			return err
		}
		if row.Value == value {
			return nil
		}
		row.Value = value
		row.Version++
		return tx.Model(&models.Setting{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"value": value, "version": row.Version}).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Bool interprets a setting value as a boolean flag.
func (s *Service) Bool(key string) (bool, error) {
	row, err := s.Get(key)
	if err != nil {
		return false, err
	}
	return row.Value == "true" || row.Value == "1", nil
}
