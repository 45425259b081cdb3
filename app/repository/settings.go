package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
)

// SettingsRepository persists the admin-editable provider settings as host
// option rows.
type SettingsRepository struct {
	db     DBTX
	prefix string
}

func NewSettingsRepository(db DBTX, prefix string) *SettingsRepository {
	return &SettingsRepository{db: db, prefix: prefix}
}

func (r *SettingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	query := `
		SELECT option_name, option_value
		FROM ` + table(r.prefix, "options") + `
		WHERE option_name IN (?, ?, ?)
	`

	rows, err := r.db.QueryContext(ctx, query, entity.SettingAPIUID, entity.SettingAPIKey, entity.SettingWallet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := &entity.Settings{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		switch name {
		case entity.SettingAPIUID:
			settings.APIUID = value
		case entity.SettingAPIKey:
			settings.APIKey = value
		case entity.SettingWallet:
			settings.Wallet = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	query := `
		INSERT INTO ` + table(r.prefix, "options") + ` (option_name, option_value, autoload)
		VALUES (?, ?, 'no'), (?, ?, 'no'), (?, ?, 'no')
		ON DUPLICATE KEY UPDATE option_value = VALUES(option_value)
	`

	_, err := r.db.ExecContext(ctx, query,
		entity.SettingAPIUID, settings.APIUID,
		entity.SettingAPIKey, settings.APIKey,
		entity.SettingWallet, settings.Wallet,
	)
	return err
}
