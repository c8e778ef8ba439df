package buissines

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	boterrors "github.com/OtabekovsProject/bot-media/internal/domain/bot/errors"
)

// User-facing texts of the media flows
const (
	msgVideoLoading     = "⏳ <b>Video yuklanmoqda...</b>"
	msgVideoUploading   = "📤 <b>Video yuklanmoqda biroz kuting😊...</b>"
	msgVideoUnavailable = "😔 Bu havola hozircha mavjud emas yoki himoyalangan. Boshqa havola bilan urining."
	msgVideoSendFailed  = "😔 Afsuski, bu videoni yuborib bo'lmadi. Boshqa havola bilan urining."

	msgRecognizing        = "🎵 <b>Musiqa aniqlanmoqda...</b>"
	msgMusicUnavailable   = "😔 Bu video hozircha mavjud emas. Boshqa havola bilan urining."
	msgNotRecognized      = "🎵 Musiqa aniqlanmadi. Boshqa qism bilan urining."
	msgMusicSendFailed    = "😔 Musiqa yuborib bo'lmadi. Keyinroq urinib ko'ring."
	msgServiceUnavailable = "😔 Kechirasiz, hozir xizmat mavjud emas."
	msgBusy               = "⏳ Hozir navbat band. Birozdan keyin qayta urinib ko'ring."

	msgSearchUploading  = "📤 <b>Yuklanmoqda...</b>"
	msgSearchNotFound   = "❌ Topilmadi."
	msgSearchSendFailed = "❌ Yuborishda xatolik."
)

// MediaService runs the download, recognition and search flows and replies with the result.
// Every temp file belongs to a PendingJob that is cleaned up on return.
type MediaService struct {
	runner    deps.MediaRunner
	messenger deps.Messenger
	dir       string
	logger    zerolog.Logger
}

// NewMediaService creates a new MediaService
func NewMediaService(runner deps.MediaRunner, messenger deps.Messenger, cfg *config.MediaConfig, logger zerolog.Logger) *MediaService {
	return &MediaService{
		runner:    runner,
		messenger: messenger,
		dir:       cfg.DownloadPath,
		logger:    logger.With().Str("component", "media").Logger(),
	}
}

// Reply is where a flow posts its status message and results
type Reply struct {
	ChatID  int64
	ReplyTo int
}

// FetchVideo downloads the link and sends the file as photo, audio or video
func (s *MediaService) FetchVideo(ctx context.Context, to Reply, url string) error {
	job := entities.NewPendingJob(s.dir, url, entities.MediaVideo)
	defer s.cleanup(job)

	status, err := s.messenger.SendText(ctx, to.ChatID, msgVideoLoading, deps.SendOptions{ReplyTo: to.ReplyTo})
	if err != nil {
		return fmt.Errorf("send status: %w", err)
	}

	result, err := s.runner.Download(ctx, job)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Download failed")
		s.editStatus(ctx, to.ChatID, status, s.jobFailureText(err, msgVideoUnavailable))
		return nil
	}

	s.editStatus(ctx, to.ChatID, status, msgVideoUploading)

	caption := fmt.Sprintf("📹 <b>%s</b>%s", html.EscapeString(result.Title), s.signature(ctx))
	if err := s.messenger.SendFile(ctx, to.ChatID, result.Kind, result.Path, deps.FileMeta{Caption: caption}); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Str("kind", string(result.Kind)).Msg("Failed to send downloaded media")
		s.editStatus(ctx, to.ChatID, status, msgVideoSendFailed)
		return nil
	}

	s.deleteStatus(ctx, to.ChatID, status)
	return nil
}

// FetchMusic downloads the link, recognizes the song in it and sends the full MP3
func (s *MediaService) FetchMusic(ctx context.Context, to Reply, url string) error {
	job := entities.NewPendingJob(s.dir, url, entities.MediaVideo)
	defer s.cleanup(job)

	status, err := s.messenger.SendText(ctx, to.ChatID, msgRecognizing, deps.SendOptions{ReplyTo: to.ReplyTo})
	if err != nil {
		return fmt.Errorf("send status: %w", err)
	}

	result, err := s.runner.Download(ctx, job)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Download for recognition failed")
		s.editStatus(ctx, to.ChatID, status, s.jobFailureText(err, msgMusicUnavailable))
		return nil
	}

	return s.recognizeAndSend(ctx, to.ChatID, status, result.Path)
}

// RecognizeFile downloads a user attachment, recognizes the song and sends the full MP3
func (s *MediaService) RecognizeFile(ctx context.Context, to Reply, fileID string, kind entities.MediaKind) error {
	job := entities.NewPendingJob(s.dir, fileID, kind)
	defer s.cleanup(job)

	status, err := s.messenger.SendText(ctx, to.ChatID, msgRecognizing, deps.SendOptions{ReplyTo: to.ReplyTo})
	if err != nil {
		return fmt.Errorf("send status: %w", err)
	}

	path := job.TempPath(attachmentExt(kind))
	if err := s.messenger.DownloadFile(ctx, fileID, path); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to download attachment")
		s.editStatus(ctx, to.ChatID, status, msgServiceUnavailable)
		return nil
	}

	return s.recognizeAndSend(ctx, to.ChatID, status, path)
}

// SearchSong searches the query and sends the best match as MP3
func (s *MediaService) SearchSong(ctx context.Context, to Reply, query string) error {
	job := entities.NewPendingJob(s.dir, query, entities.MediaAudio)
	defer s.cleanup(job)

	text := fmt.Sprintf("🔎 <b>'%s'</b> qidirilmoqda...", html.EscapeString(query))
	status, err := s.messenger.SendText(ctx, to.ChatID, text, deps.SendOptions{ReplyTo: to.ReplyTo})
	if err != nil {
		return fmt.Errorf("send status: %w", err)
	}

	result, err := s.runner.SearchAndFetch(ctx, job)
	if err != nil {
		s.logger.Info().Err(err).Str("job_id", job.ID).Msg("Song search failed")
		s.editStatus(ctx, to.ChatID, status, s.jobFailureText(err, msgSearchNotFound))
		return nil
	}

	s.editStatus(ctx, to.ChatID, status, msgSearchUploading)

	title := result.Title
	if title == "" {
		title = query
	}
	performer := result.Performer
	if performer == "" {
		performer = "Music Bot"
	}

	meta := deps.FileMeta{
		Caption:   fmt.Sprintf("🎧 <b>%s</b>%s", html.EscapeString(title), s.signature(ctx)),
		Title:     title,
		Performer: performer,
	}
	if err := s.messenger.SendFile(ctx, to.ChatID, entities.MediaAudio, result.Path, meta); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to send song")
		s.editStatus(ctx, to.ChatID, status, msgSearchSendFailed)
		return nil
	}

	s.deleteStatus(ctx, to.ChatID, status)
	return nil
}

// recognizeAndSend is the shared tail of the music flows
func (s *MediaService) recognizeAndSend(ctx context.Context, chatID int64, status int, samplePath string) error {
	track, err := s.runner.Recognize(ctx, samplePath)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Recognition failed")
		s.editStatus(ctx, chatID, status, s.jobFailureText(err, msgNotRecognized))
		return nil
	}
	if track == nil {
		s.editStatus(ctx, chatID, status, msgNotRecognized)
		return nil
	}

	found := fmt.Sprintf("✅ <b>Topildi!</b>\n🎤 %s\n🔍 <b>To'liq MP3 yuklanmoqda...</b>", html.EscapeString(track.Query()))
	s.editStatus(ctx, chatID, status, found)

	song := entities.NewPendingJob(s.dir, track.Query(), entities.MediaAudio)
	defer s.cleanup(song)

	result, err := s.runner.SearchAndFetch(ctx, song)
	if err != nil {
		s.logger.Info().Err(err).Str("query", track.Query()).Msg("Full song fetch failed, replying with reference link")
		s.editStatus(ctx, chatID, status, referenceText(track))
		return nil
	}

	meta := deps.FileMeta{
		Caption:   "🤖 To'liq musiqa" + s.signature(ctx),
		Title:     track.Title,
		Performer: track.Subtitle,
	}
	if err := s.messenger.SendFile(ctx, chatID, entities.MediaAudio, result.Path, meta); err != nil {
		s.logger.Error().Err(err).Msg("Failed to send recognized song")
		s.editStatus(ctx, chatID, status, msgMusicSendFailed)
		return nil
	}

	s.deleteStatus(ctx, chatID, status)
	return nil
}

// referenceText is the reply when the song was recognized but the MP3 could not be fetched
func referenceText(track *entities.Track) string {
	text := fmt.Sprintf("⚠️ Musiqa topildi, lekin MP3 yuklab bo'lmadi.\n✅ <b>%s</b>\n📀 %s",
		html.EscapeString(track.Title), html.EscapeString(track.Subtitle))
	if track.ReferenceURL != "" {
		text += fmt.Sprintf("\n🔗 <a href='%s'>Ochish</a>", html.EscapeString(track.ReferenceURL))
	}
	return text
}

func (s *MediaService) jobFailureText(err error, fallback string) string {
	if errors.Is(err, boterrors.ErrPoolSaturated) {
		return msgBusy
	}
	return fallback
}

// signature is the "@bot" caption line; empty when the username is unknown
func (s *MediaService) signature(ctx context.Context) string {
	name, err := s.messenger.BotUsername(ctx)
	if err != nil || name == "" {
		return ""
	}
	return "\n🤖 @" + name
}

func (s *MediaService) editStatus(ctx context.Context, chatID int64, messageID int, text string) {
	if err := s.messenger.EditText(ctx, chatID, messageID, text, nil); err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to edit status message")
	}
}

func (s *MediaService) deleteStatus(ctx context.Context, chatID int64, messageID int) {
	if err := s.messenger.DeleteMessage(ctx, chatID, messageID); err != nil {
		s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to delete status message")
	}
}

func (s *MediaService) cleanup(job *entities.PendingJob) {
	if failed := job.Cleanup(); len(failed) > 0 {
		s.logger.Warn().Str("job_id", job.ID).Strs("paths", failed).Msg("Failed to remove temp files")
	}
}

func attachmentExt(kind entities.MediaKind) string {
	switch kind {
	case entities.MediaVoice:
		return ".ogg"
	case entities.MediaAudio:
		return ".mp3"
	default:
		return ".mp4"
	}
}
