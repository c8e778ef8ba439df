// Package buissines contains business logic for the bot domain
package buissines

import (
	"context"
	"fmt"
	"html"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

// UseCase contains business logic for user-facing bot commands
type UseCase struct {
	users     deps.UserRepository
	publisher deps.EventPublisher
	logger    zerolog.Logger
}

// NewUseCase creates a new UseCase instance
func NewUseCase(users deps.UserRepository, publisher deps.EventPublisher, logger zerolog.Logger) *UseCase {
	return &UseCase{
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// HandleStart registers the user and returns the welcome message
func (uc *UseCase) HandleStart(ctx context.Context, req *dto.StartCommandRequest) (*dto.CommandResponse, error) {
	user := &entities.User{
		TelegramID: req.UserID,
		FullName:   req.FullName,
		Username:   req.Username,
	}

	created, err := uc.users.UpsertUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register user %d: %w", req.UserID, err)
	}

	uc.logger.Info().
		Int64("user_id", req.UserID).
		Bool("new_user", created).
		Msg("User started bot")

	if created {
		ev := dto.NewAuditEvent(dto.EventUserRegistered)
		ev.UserID = req.UserID
		publishAudit(ctx, uc.publisher, ev, uc.logger)
	}

	message := fmt.Sprintf(`👋 Salom, <b>%s</b>!

🎧 Men <b>TopTuneX bot</b> - universal yuklovchi va aqlli musiqa topuvchi botman.

📥 <b>Imkoniyatlarim:</b>
• Instagram, TikTok, YouTube, Facebook videolar va musiqasini yuklab beraman
• Video yoki audio orqali musiqani aniqlayman
• Topilgan musiqani nomi bilan birga MP3 formatda taqdim etaman

⚡ <b>Qanday foydalaniladi?</b>
• Havola yuboring, men yuklab beraman
• Audio yoki video tashlang, musiqani topib beraman
• Qo'shiq nomini yozing, MP3 topib beraman

🚀 <b>Boshlash uchun hoziroq havola yoki fayl yuboring!</b>`, html.EscapeString(req.FullName))

	return &dto.CommandResponse{Message: message}, nil
}

// HandleHelp handles /help command
func (uc *UseCase) HandleHelp(ctx context.Context) (*dto.CommandResponse, error) {
	message := `📚 <b>Yordam:</b>

<b>Video yuklash:</b>
Havolani yuboring va "📹 Video" tugmasini bosing.

<b>Musiqani aniqlash:</b>
Havola ostidagi "🎵 Musiqa" tugmasini bosing yoki audio, video, ovozli xabar yuboring.

<b>Qidiruv:</b>
Qo'shiq nomini yozing, masalan: <code>Shape of You</code>

<b>Buyruqlar:</b>
/start - botni ishga tushirish
/help - shu yordam`

	return &dto.CommandResponse{Message: message}, nil
}
