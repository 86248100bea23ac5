package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"whitelist-bot/internal/db"
)

// AccountStore is the durable account record. SetVerified and Delete are
// conditional on verified=false and report whether they changed anything,
// which is what keeps racing approval clicks idempotent.
type AccountStore interface {
	GetByTelegramUserID(ctx context.Context, telegramUserID int64) (*db.Account, error)
	Create(ctx context.Context, account *db.Account) error
	SetVerified(ctx context.Context, telegramUserID int64) (bool, error)
	Delete(ctx context.Context, telegramUserID int64) (bool, error)
}

// AdminRegistry lists the chats that receive approval prompts.
type AdminRegistry interface {
	ChatIDs(ctx context.Context) ([]int64, error)
}

type BotService struct {
	api      *tgbotapi.BotAPI
	gateway  Gateway
	accounts AccountStore
	admins   AdminRegistry
	sessions *SessionStore
	routes   []route
	log      zerolog.Logger

	mu     sync.Mutex
	queues map[int64]chan tgbotapi.Update
	wg     sync.WaitGroup
}

func New(
	api *tgbotapi.BotAPI,
	gateway Gateway,
	accounts AccountStore,
	admins AdminRegistry,
	log zerolog.Logger,
) *BotService {
	b := &BotService{
		api:      api,
		gateway:  gateway,
		accounts: accounts,
		admins:   admins,
		sessions: NewSessionStore(),
		log:      log,
		queues:   make(map[int64]chan tgbotapi.Update),
	}

	b.routes = []route{
		{
			match:  func(upd tgbotapi.Update, _ *Session) bool { return upd.CallbackQuery != nil },
			handle: b.handleCallback,
		},
		{
			match:  func(upd tgbotapi.Update, _ *Session) bool { return isCancelEvent(upd) },
			handle: b.handleCancel,
		},
		{
			match:  func(upd tgbotapi.Update, _ *Session) bool { return isCommand(upd, "start") },
			handle: b.handleStart,
		},
		{
			// /add_police is a historical alias for /request_passport.
			match:  func(upd tgbotapi.Update, _ *Session) bool { return isCommand(upd, "request_passport", "add_police") },
			handle: b.handleRequestPassport,
		},
		{
			match: func(upd tgbotapi.Update, _ *Session) bool {
				return upd.Message != nil && upd.Message.Text == passportMenuButton
			},
			handle: b.handlePassportStatus,
		},
		{
			match: func(upd tgbotapi.Update, sess *Session) bool {
				return sess.Step == StepAwaitingNickname && hasText(upd)
			},
			handle: b.handleNickname,
		},
		{
			match:  func(tgbotapi.Update, *Session) bool { return true },
			handle: b.handleFallback,
		},
	}

	return b
}

// Start runs long polling until ctx is cancelled. Updates are serialized per
// chat: each chat gets its own queue and goroutine, so events for one user
// are handled in arrival order while distinct users proceed concurrently.
func (b *BotService) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.drainQueues()
			return
		case update, ok := <-updates:
			if !ok {
				b.drainQueues()
				return
			}

			chatID, ok := updateChatID(update)
			if !ok {
				continue
			}

			b.enqueue(chatID, update)
		}
	}
}

func (b *BotService) enqueue(chatID int64, upd tgbotapi.Update) {
	b.mu.Lock()
	queue, ok := b.queues[chatID]
	if !ok {
		queue = make(chan tgbotapi.Update, 16)
		b.queues[chatID] = queue
		b.wg.Add(1)
		go b.serveChat(queue)
	}
	b.mu.Unlock()

	queue <- upd
}

func (b *BotService) serveChat(queue chan tgbotapi.Update) {
	defer b.wg.Done()

	for upd := range queue {
		b.dispatch(context.Background(), upd)
	}
}

func (b *BotService) drainQueues() {
	b.mu.Lock()
	for _, queue := range b.queues {
		close(queue)
	}
	b.mu.Unlock()

	b.wg.Wait()
}

// dispatch resolves the session and walks the route list. The fallback route
// always matches, so every update is answered by exactly one handler.
func (b *BotService) dispatch(ctx context.Context, upd tgbotapi.Update) {
	chatID, ok := updateChatID(upd)
	if !ok {
		return
	}

	log := b.log.With().
		Str("event_id", uuid.New().String()).
		Int64("chat_id", chatID).
		Logger()
	ctx = log.WithContext(ctx)

	sess := b.sessions.Get(chatID)

	for _, r := range b.routes {
		if r.match(upd, sess) {
			r.handle(ctx, upd, sess)
			return
		}
	}
}

// send logs a gateway failure; a failed send never aborts event handling.
func (b *BotService) send(ctx context.Context, err error) {
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("gateway send failed")
	}
}

func (b *BotService) handleStart(ctx context.Context, upd tgbotapi.Update, sess *Session) {
	chatID := upd.Message.Chat.ID

	account, err := b.accounts.GetByTelegramUserID(ctx, chatID)
	switch {
	case err == nil && account.Verified:
		b.send(ctx, b.gateway.SendMenu(chatID, "У вас уже привязан аккаунт, можете продолжать пользоваться ботом"))
	case err == nil:
		b.send(ctx, b.gateway.SendPrompt(chatID, "У вас уже привязан аккаунт, ожидайте подтверждения аккаунта"))
	case errors.Is(err, db.ErrAccountNotFound):
		sess.Step = StepAwaitingNickname
		b.send(ctx, b.gateway.SendPrompt(chatID, "Привет, введите ваш никнейм в Minecraft:"))
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("account lookup failed")
		b.send(ctx, b.gateway.SendText(chatID, "Произошла ошибка. Попробуйте позже."))
	}
}

func (b *BotService) handleCancel(ctx context.Context, upd tgbotapi.Update, sess *Session) {
	chatID := upd.Message.Chat.ID

	// Nothing to cancel: stay silent, like the idle dialog always did.
	if sess.Step == StepIdle {
		return
	}

	zerolog.Ctx(ctx).Info().Str("step", string(sess.Step)).Msg("cancelling dialog")
	b.sessions.Clear(chatID)
	b.send(ctx, b.gateway.SendMenu(chatID, "Отменено."))
}

func (b *BotService) handleNickname(ctx context.Context, upd tgbotapi.Update, sess *Session) {
	chatID := upd.Message.Chat.ID
	nickname := upd.Message.Text

	displayName := nickname
	if upd.Message.From != nil && upd.Message.From.FirstName != "" {
		displayName = upd.Message.From.FirstName
	}

	account := &db.Account{
		TelegramUserID: chatID,
		Nickname:       nickname,
		DisplayName:    pointer.ToString(displayName),
	}

	err := b.accounts.Create(ctx, account)
	switch {
	case errors.Is(err, db.ErrDuplicateNickname):
		// Retryable input error: keep the dialog open and ask again.
		b.send(ctx, b.gateway.SendPrompt(chatID, "Этот никнейм уже занят, введите другой:"))
		return
	case errors.Is(err, db.ErrDuplicateIdentity):
		b.sessions.Clear(chatID)
		b.send(ctx, b.gateway.SendPrompt(chatID, "У вас уже привязан аккаунт, ожидайте подтверждения аккаунта"))
		return
	case err != nil:
		zerolog.Ctx(ctx).Error().Err(err).Msg("account create failed")
		b.send(ctx, b.gateway.SendText(chatID, "Произошла ошибка при сохранении заявки. Попробуйте позже."))
		return
	}

	b.sessions.Clear(chatID)
	b.notifyAdmins(ctx, chatID, displayName, nickname)
	b.send(ctx, b.gateway.SendText(chatID,
		fmt.Sprintf("Отлично, %s (AKA %s), ожидайте подтверждения от модератора ⏳", displayName, nickname)))
}

// notifyAdmins fans the approval prompt out to every admin chat. Sends are
// independent: a failure for one admin is logged and the rest still get the
// prompt.
func (b *BotService) notifyAdmins(ctx context.Context, subjectID int64, displayName, nickname string) {
	adminIDs, err := b.admins.ChatIDs(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("admin list lookup failed")
		return
	}

	actions := []Action{
		{Label: "✅ Подтвердить", Token: ConfirmAccountToken(subjectID)},
		{Label: "❌ Отклонить", Token: CancelAccountToken(subjectID)},
	}

	text := fmt.Sprintf(
		"Подтвердите создание аккаунта, <a href=\"tg://user?id=%d\">%s</a> хочет создать аккаунт с ником %s",
		subjectID, displayName, nickname)

	for _, adminID := range adminIDs {
		if err := b.gateway.SendActions(adminID, text, actions); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int64("admin_chat_id", adminID).Msg("admin notification failed")
		}
	}
}

func (b *BotService) handleCallback(ctx context.Context, upd tgbotapi.Update, _ *Session) {
	query := upd.CallbackQuery
	defer b.send(ctx, b.gateway.AckCallback(query.ID))

	action, subjectID, err := ParseActionToken(query.Data)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("ignoring malformed action token")
		return
	}

	var reply string
	switch action {
	case actionConfirm:
		reply = b.confirmAccount(ctx, subjectID)
	case actionCancel:
		reply = b.cancelAccount(ctx, subjectID)
	}

	adminChatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		adminChatID = query.Message.Chat.ID
	}

	b.send(ctx, b.gateway.SendText(adminChatID, reply))
}

// confirmAccount flips the account to verified. The conditional update means
// only one of two racing clicks performs the transition; the loser gets the
// already-verified reply.
func (b *BotService) confirmAccount(ctx context.Context, subjectID int64) string {
	changed, err := b.accounts.SetVerified(ctx, subjectID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("subject_id", subjectID).Msg("verify failed")
		return "Произошла ошибка. Попробуйте позже."
	}

	if changed {
		zerolog.Ctx(ctx).Info().Int64("subject_id", subjectID).Msg("account verified")
		b.send(ctx, b.gateway.SendMenu(subjectID, "Аккаунт подтвержден, теперь вам доступны все функции бота"))
		return "Аккаунт подтвержден."
	}

	if _, err := b.accounts.GetByTelegramUserID(ctx, subjectID); errors.Is(err, db.ErrAccountNotFound) {
		return "Аккаунт уже отклонен или не существует!"
	} else if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("subject_id", subjectID).Msg("account lookup failed")
		return "Произошла ошибка. Попробуйте позже."
	}

	return "Аккаунт уже подтвержден."
}

// cancelAccount deletes an unverified account. A verified account never
// matches the conditional delete, so rejection after approval is a no-op.
func (b *BotService) cancelAccount(ctx context.Context, subjectID int64) string {
	deleted, err := b.accounts.Delete(ctx, subjectID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("subject_id", subjectID).Msg("delete failed")
		return "Произошла ошибка. Попробуйте позже."
	}

	if deleted {
		zerolog.Ctx(ctx).Info().Int64("subject_id", subjectID).Msg("account rejected")
		b.send(ctx, b.gateway.SendText(subjectID, "Аккаунт отклонен, напишите еще раз /start, чтобы подать новую заявку"))
		return "Аккаунт отклонен."
	}

	if _, err := b.accounts.GetByTelegramUserID(ctx, subjectID); errors.Is(err, db.ErrAccountNotFound) {
		return "Аккаунт уже отклонен или не существует!"
	} else if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("subject_id", subjectID).Msg("account lookup failed")
		return "Произошла ошибка. Попробуйте позже."
	}

	return "Аккаунт уже подтвержден."
}

func (b *BotService) handleRequestPassport(ctx context.Context, upd tgbotapi.Update, sess *Session) {
	chatID := upd.Message.Chat.ID

	sess.Step = StepAwaitingFullName
	b.send(ctx, b.gateway.SendPrompt(chatID, "Введите ваше полное имя (не реальное):"))
}

func (b *BotService) handlePassportStatus(ctx context.Context, upd tgbotapi.Update, _ *Session) {
	chatID := upd.Message.Chat.ID

	b.send(ctx, b.gateway.SendText(chatID, "У вас еще нет паспорта. Хотите запросить создание? \n/request_passport"))
}

func (b *BotService) handleFallback(ctx context.Context, upd tgbotapi.Update, _ *Session) {
	chatID, ok := updateChatID(upd)
	if !ok {
		return
	}

	b.send(ctx, b.gateway.SendText(chatID, "🤨 Не понимаю вас. Выберите команду на клавиатуре."))
}
