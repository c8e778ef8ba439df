package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/OtabekovsProject/bot-media/config"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/deps"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/dto"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/entities"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/repository/state"
	"github.com/OtabekovsProject/bot-media/internal/domain/bot/usecase/buissines"
)

const (
	testAdminID = int64(1)
	testUserID  = int64(42)
)

var errBoom = errors.New("boom")

type mockUserRepo struct {
	mu         sync.Mutex
	users      map[int64]*entities.User
	upserts    int
	setAdminFn func(id int64, admin bool) (bool, error)
	setCalls   []int64
}

func newMockUserRepo(users ...entities.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[int64]*entities.User)}
	for i := range users {
		u := users[i]
		m.users[u.TelegramID] = &u
	}
	return m
}

func (m *mockUserRepo) UpsertUser(_ context.Context, user *entities.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if existing, ok := m.users[user.TelegramID]; ok {
		existing.FullName, existing.Username = user.FullName, user.Username
		return false, nil
	}
	u := *user
	m.users[u.TelegramID] = &u
	return true, nil
}

func (m *mockUserRepo) CountUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *mockUserRepo) ListUsers(context.Context) ([]entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) ListAdmins(context.Context) ([]entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.User
	for _, u := range m.users {
		if u.IsAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) IsAdmin(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return ok && u.IsAdmin, nil
}

func (m *mockUserRepo) SetAdmin(_ context.Context, id int64, admin bool) (bool, error) {
	m.mu.Lock()
	m.setCalls = append(m.setCalls, id)
	fn := m.setAdminFn
	m.mu.Unlock()
	if fn != nil {
		return fn(id, admin)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.IsAdmin = admin
	return true, nil
}

type mockChannelRepo struct {
	mu       sync.Mutex
	channels []entities.RequiredChannel
	listErr  error
}

func (m *mockChannelRepo) AddChannel(_ context.Context, ch *entities.RequiredChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, *ch)
	return nil
}

func (m *mockChannelRepo) ListChannels(context.Context) ([]entities.RequiredChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]entities.RequiredChannel(nil), m.channels...), nil
}

func (m *mockChannelRepo) RemoveChannel(_ context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ch := range m.channels {
		if ch.ChannelID == channelID {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			return nil
		}
	}
	return errBoom
}

type mockOracle struct {
	statusFn  func(channelID string, userID int64) (entities.MemberStatus, error)
	resolveFn func(ref string) (*entities.ChatInfo, error)
}

func (m *mockOracle) MemberStatus(_ context.Context, channelID string, userID int64) (entities.MemberStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(channelID, userID)
	}
	return entities.MemberStatusMember, nil
}

func (m *mockOracle) ResolveChat(_ context.Context, ref string) (*entities.ChatInfo, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ref)
	}
	return nil, errBoom
}

func (m *mockOracle) SelfID(context.Context) (int64, error) {
	return 999, nil
}

type sentText struct {
	ChatID int64
	Text   string
	Opts   deps.SendOptions
}

type answered struct {
	Text  string
	Alert bool
}

type editedText struct {
	MessageID int
	Text      string
	Keyboard  entities.Keyboard
}

// mockMessenger records every outgoing call
type mockMessenger struct {
	mu sync.Mutex

	sendTextFn func(chatID int64, text string) error

	texts     []sentText
	edits     []editedText
	answers   []answered
	deleted   []int
	documents []string
	copies    []int64
	nextID    int
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

func (m *mockMessenger) EditText(_ context.Context, _ int64, messageID int, text string, kb entities.Keyboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, editedText{MessageID: messageID, Text: text, Keyboard: kb})
	return nil
}

func (m *mockMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockMessenger) AnswerCallback(_ context.Context, _ string, text string, alert bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, answered{Text: text, Alert: alert})
	return nil
}

func (m *mockMessenger) SendFile(context.Context, int64, entities.MediaKind, string, deps.FileMeta) error {
	return nil
}

func (m *mockMessenger) SendDocumentBytes(_ context.Context, _ int64, filename string, _ []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, filename)
	return nil
}

func (m *mockMessenger) CopyMessage(_ context.Context, chatID, _ int64, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copies = append(m.copies, chatID)
	return nil
}

func (m *mockMessenger) DownloadFile(context.Context, string, string) error {
	return nil
}

func (m *mockMessenger) BotUsername(context.Context) (string, error) {
	return "test_bot", nil
}

func (m *mockMessenger) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.texts))
	for _, t := range m.texts {
		out = append(out, t.Text)
	}
	return out
}

func (m *mockMessenger) lastText() sentText {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return sentText{}
	}
	return m.texts[len(m.texts)-1]
}

func (m *mockMessenger) lastEdit() editedText {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return editedText{}
	}
	return m.edits[len(m.edits)-1]
}

func (m *mockMessenger) lastAnswer() answered {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.answers) == 0 {
		return answered{}
	}
	return m.answers[len(m.answers)-1]
}

type mockRunner struct {
	mu       sync.Mutex
	searched []string
}

func (m *mockRunner) Download(context.Context, *entities.PendingJob) (*entities.MediaResult, error) {
	return nil, errBoom
}

func (m *mockRunner) SearchAndFetch(_ context.Context, job *entities.PendingJob) (*entities.MediaResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searched = append(m.searched, job.Source)
	return &entities.MediaResult{Path: job.TempPath("mp3"), Title: "Shape of You", Performer: "Ed Sheeran", Kind: entities.MediaAudio}, nil
}

func (m *mockRunner) Recognize(context.Context, string) (*entities.Track, error) {
	return nil, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *dto.AuditEvent) error { return nil }
func (nopPublisher) Close() error                                   { return nil }

// harness wires the router over real services and in-memory fakes
type harness struct {
	router    *Router
	fsm       *buissines.StateMachine
	users     *mockUserRepo
	channels  *mockChannelRepo
	oracle    *mockOracle
	messenger *mockMessenger
	runner    *mockRunner
}

func newHarness(t *testing.T, users ...entities.User) *harness {
	t.Helper()

	logger := zerolog.Nop()
	h := &harness{
		users:     newMockUserRepo(users...),
		channels:  &mockChannelRepo{},
		oracle:    &mockOracle{},
		messenger: &mockMessenger{},
		runner:    &mockRunner{},
	}

	tgCfg := &config.TelegramConfig{AdminIDs: []int64{testAdminID}}
	h.fsm = buissines.NewStateMachine(state.NewMemoryStore(time.Hour), logger)

	uc := buissines.NewUseCase(h.users, nopPublisher{}, logger)
	admin := buissines.NewAdminService(h.users, h.channels, h.oracle, nopPublisher{}, tgCfg, logger)
	broadcaster := buissines.NewBroadcaster(h.users, h.messenger, nopPublisher{}, &config.BroadcastConfig{}, logger)
	media := buissines.NewMediaService(h.runner, h.messenger, &config.MediaConfig{DownloadPath: t.TempDir()}, logger)
	gate := buissines.NewSubscriptionGate(h.channels, h.oracle, logger)

	handlers := NewHandlers(uc, admin, h.fsm, broadcaster, media, h.messenger, nil, logger)
	guard := NewSubscriptionGuard(gate, h.messenger, logger)
	h.router = NewRouter(handlers, guard, h.fsm, h.messenger, nil, logger)
	return h
}

func message(userID int64, text string) *entities.Event {
	return &entities.Event{
		Kind:      entities.EventMessage,
		Sender:    &entities.Sender{ID: userID, FullName: "Test User", Username: "tester"},
		ChatID:    userID,
		MessageID: 10,
		Text:      text,
	}
}

func callback(userID int64, data string) *entities.Event {
	return &entities.Event{
		Kind:         entities.EventCallback,
		Sender:       &entities.Sender{ID: userID, FullName: "Test User"},
		ChatID:       userID,
		MessageID:    20,
		CallbackID:   "cb-1",
		CallbackData: data,
	}
}
