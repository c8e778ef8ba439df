package buissines

import (
	"context"
	"errors"
	"sync"

	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
)

var errBoom = errors.New("boom")

type mockUserRepo struct {
	upsertFn    func(ctx context.Context, user *entities.User) (bool, error)
	countFn     func(ctx context.Context) (int64, error)
	listFn      func(ctx context.Context) ([]entities.User, error)
	listAdminFn func(ctx context.Context) ([]entities.User, error)
	isAdminFn   func(ctx context.Context, id int64) (bool, error)
	setAdminFn  func(ctx context.Context, id int64, admin bool) (bool, error)
}

func (m *mockUserRepo) UpsertUser(ctx context.Context, user *entities.User) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, user)
	}
	return false, nil
}

func (m *mockUserRepo) CountUsers(ctx context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockUserRepo) ListUsers(ctx context.Context) ([]entities.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) ListAdmins(ctx context.Context) ([]entities.User, error) {
	if m.listAdminFn != nil {
		return m.listAdminFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) IsAdmin(ctx context.Context, id int64) (bool, error) {
	if m.isAdminFn != nil {
		return m.isAdminFn(ctx, id)
	}
	return false, nil
}

func (m *mockUserRepo) SetAdmin(ctx context.Context, id int64, admin bool) (bool, error) {
	if m.setAdminFn != nil {
		return m.setAdminFn(ctx, id, admin)
	}
	return true, nil
}

type mockChannelRepo struct {
	addFn    func(ctx context.Context, ch *entities.RequiredChannel) error
	listFn   func(ctx context.Context) ([]entities.RequiredChannel, error)
	removeFn func(ctx context.Context, channelID string) error
}

func (m *mockChannelRepo) AddChannel(ctx context.Context, ch *entities.RequiredChannel) error {
	if m.addFn != nil {
		return m.addFn(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepo) ListChannels(ctx context.Context) ([]entities.RequiredChannel, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockChannelRepo) RemoveChannel(ctx context.Context, channelID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, channelID)
	}
	return nil
}

type mockOracle struct {
	statusFn  func(ctx context.Context, channelID string, userID int64) (entities.MemberStatus, error)
	resolveFn func(ctx context.Context, ref string) (*entities.ChatInfo, error)
	selfID    int64
}

func (m *mockOracle) MemberStatus(ctx context.Context, channelID string, userID int64) (entities.MemberStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, channelID, userID)
	}
	return entities.MemberStatusMember, nil
}

func (m *mockOracle) ResolveChat(ctx context.Context, ref string) (*entities.ChatInfo, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, ref)
	}
	return nil, errBoom
}

func (m *mockOracle) SelfID(context.Context) (int64, error) {
	return m.selfID, nil
}

type sentText struct {
	ChatID int64
	Text   string
	Opts   deps.SendOptions
}

type sentFile struct {
	ChatID int64
	Kind   entities.MediaKind
	Path   string
	Meta   deps.FileMeta
}

// mockMessenger records what was sent; the fn fields override behaviour
type mockMessenger struct {
	mu sync.Mutex

	sendTextFn func(chatID int64, text string) error
	sendFileFn func(chatID int64, path string) error
	copyFn     func(chatID int64) error
	downloadFn func(fileID, dest string) error

	texts   []sentText
	edits   []string
	deleted []int
	files   []sentFile
	copies  []int64
	answers []string
	nextID  int
}

func (m *mockMessenger) SendText(_ context.Context, chatID int64, text string, opts deps.SendOptions) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendTextFn != nil {
		if err := m.sendTextFn(chatID, text); err != nil {
			return 0, err
		}
	}
	m.nextID++
	m.texts = append(m.texts, sentText{ChatID: chatID, Text: text, Opts: opts})
	return m.nextID, nil
}

func (m *mockMessenger) EditText(_ context.Context, _ int64, _ int, text string, _ entities.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, text)
	return nil
}

func (m *mockMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockMessenger) AnswerCallback(_ context.Context, _ string, text string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, text)
	return nil
}

func (m *mockMessenger) SendFile(_ context.Context, chatID int64, kind entities.MediaKind, path string, meta deps.FileMeta) error {
	if m.sendFileFn != nil {
		if err := m.sendFileFn(chatID, path); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, sentFile{ChatID: chatID, Kind: kind, Path: path, Meta: meta})
	return nil
}

func (m *mockMessenger) SendDocumentBytes(context.Context, int64, string, []byte, string) error {
	return nil
}

func (m *mockMessenger) CopyMessage(_ context.Context, chatID, _ int64, _ int) error {
	if m.copyFn != nil {
		if err := m.copyFn(chatID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies = append(m.copies, chatID)
	return nil
}

func (m *mockMessenger) DownloadFile(_ context.Context, fileID, dest string) error {
	if m.downloadFn != nil {
		return m.downloadFn(fileID, dest)
	}
	return nil
}

func (m *mockMessenger) BotUsername(context.Context) (string, error) {
	return "test_bot", nil
}

func (m *mockMessenger) lastEdit() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return ""
	}
	return m.edits[len(m.edits)-1]
}

type mockRunner struct {
	downloadFn  func(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error)
	searchFn    func(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error)
	recognizeFn func(ctx context.Context, path string) (*entities.Track, error)
}

func (m *mockRunner) Download(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, job)
	}
	return nil, errBoom
}

func (m *mockRunner) SearchAndFetch(ctx context.Context, job *entities.PendingJob) (*entities.MediaResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, job)
	}
	return nil, errBoom
}

func (m *mockRunner) Recognize(ctx context.Context, path string) (*entities.Track, error) {
	if m.recognizeFn != nil {
		return m.recognizeFn(ctx, path)
	}
	return nil, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []*dto.AuditEvent
}

func (m *mockPublisher) Publish(_ context.Context, ev *dto.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Type)
	}
	return out
}
