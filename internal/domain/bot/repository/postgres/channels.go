package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
)

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new required channel repository
func NewChannelRepository(db *gorm.DB) deps.ChannelRepository {
	return &channelRepository{db: db}
}

// AddChannel inserts the channel; an existing channel id is left untouched
func (r *channelRepository) AddChannel(ctx context.Context, channel *entities.RequiredChannel) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}},
			DoNothing: true,
		}).
		Create(channel).Error
}

// ListChannels returns all required channels
func (r *channelRepository) ListChannels(ctx context.Context) ([]entities.RequiredChannel, error) {
	var channels []entities.RequiredChannel
	err := r.db.WithContext(ctx).Order("id").Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// RemoveChannel deletes a required channel by platform id
func (r *channelRepository) RemoveChannel(ctx context.Context, channelID string) error {
	res := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Delete(&entities.RequiredChannel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return boterrors.ErrChannelNotFound
	}
	return nil
}
