package tgbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sportsreg/internal/access"
	"sportsreg/internal/config"
	"sportsreg/internal/registration"
	"sportsreg/internal/tournament"
)

type App struct {
	cfg config.Config
	bot *tgbotapi.BotAPI
	svc *tournament.Service
	ctl *access.Controller
	log *slog.Logger

	mu    sync.Mutex
	chats map[int64]*chatSession
}

// chatSession is the per-chat actor state plus any multi-step flow in
// progress.
type chatSession struct {
	mu     sync.Mutex
	access access.Session
	editor *registration.Editor
	flow   *regFlow
}

func New(cfg config.Config, svc *tournament.Service) (*App, error) {
	b, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	return newApp(cfg, svc, b), nil
}

func newApp(cfg config.Config, svc *tournament.Service, b *tgbotapi.BotAPI) *App {
	return &App{
		cfg:   cfg,
		bot:   b,
		svc:   svc,
		ctl:   access.NewController(cfg.AdminSecret, svc),
		log:   slog.Default().With("component", "tgbot"),
		chats: map[int64]*chatSession{},
	}
}

func (a *App) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := a.bot.GetUpdatesChan(u)
	defer a.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message == nil {
				continue
			}
			if err := a.handleMessage(ctx, upd.Message); err != nil {
				a.log.Error("handle message", "chat_id", upd.Message.Chat.ID, "error", err)
			}
		}
	}
}

func (a *App) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := a.bot.Send(msg)
	return err
}

func (a *App) session(chatID int64) *chatSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	cs, ok := a.chats[chatID]
	if !ok {
		cs = &chatSession{editor: a.svc.NewEditor()}
		a.chats[chatID] = cs
	}
	return cs
}

// ---------- Message handling ----------

func (a *App) handleMessage(ctx context.Context, m *tgbotapi.Message) error {
	reply, err := a.respond(ctx, m.Chat.ID, m.Text)
	if err != nil {
		a.log.Error("command failed", "chat_id", m.Chat.ID, "error", err)
		reply = userMessage(err)
	}
	if reply == "" {
		return nil
	}
	return a.SendText(m.Chat.ID, reply)
}

// respond computes the reply to one incoming text. Errors that the user can
// act on are turned into replies; the rest are returned.
func (a *App) respond(ctx context.Context, chatID int64, text string) (string, error) {
	cs := a.session(chatID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	txt := strings.TrimSpace(text)
	cmd, arg := splitCommand(txt)
	if cmd == "" && cs.flow != nil {
		return a.handleFlowInput(ctx, cs, txt)
	}

	reply, err := a.dispatch(ctx, cs, cmd, arg)
	if err != nil && isUserError(err) {
		return userMessage(err), nil
	}
	return reply, err
}

func (a *App) dispatch(ctx context.Context, cs *chatSession, cmd, arg string) (string, error) {
	switch cmd {
	case "/start", "/help":
		cs.flow = nil
		return a.help(cs), nil
	case "/admin":
		if err := a.ctl.SubmitAdminSecret(&cs.access, arg); err != nil {
			return "", err
		}
		return "✅ Đã đăng nhập quản trị.\n\n" + a.help(cs), nil
	case "/login":
		if err := a.ctl.SubmitUnitCode(ctx, &cs.access, arg); err != nil {
			return "", err
		}
		cs.editor.CancelEdit()
		u, _ := cs.access.Unit()
		return fmt.Sprintf("✅ Xin chào %s (%s).\n\n%s", u.Name, u.Manager, a.help(cs)), nil
	case "/logout":
		a.ctl.Logout(&cs.access)
		cs.editor.CancelEdit()
		cs.flow = nil
		return "Đã đăng xuất.", nil
	case "/cancel":
		cs.editor.CancelEdit()
		cs.flow = nil
		return "Đã huỷ.", nil
	case "/overview":
		return a.overview(ctx, cs)
	case "/results":
		return a.results(ctx, cs)
	case "/athletes":
		return a.athletes(ctx, cs)
	case "/register":
		return a.beginRegister(ctx, cs)
	case "/edit":
		return a.beginEdit(ctx, cs, arg)
	case "/delete":
		return a.deleteRegistration(ctx, cs, arg)
	case "/export":
		return a.exportLink(cs)
	case "/rank":
		return a.setRank(ctx, cs, arg)
	case "/units":
		return a.units(ctx, cs)
	case "/addunit":
		return a.addUnit(ctx, cs, arg)
	case "/deadline":
		return a.setDeadline(ctx, cs, arg)
	case "":
		return a.help(cs), nil
	default:
		return "Lệnh không hợp lệ. Gõ /help", nil
	}
}

func (a *App) help(cs *chatSession) string {
	var b strings.Builder
	switch cs.access.Role() {
	case access.RoleAdmin:
		b.WriteString("🛠 Quản trị\n")
		b.WriteString("/overview /results /units\n")
		b.WriteString("/addunit <tên> | <người phụ trách>\n")
		b.WriteString("/rank <id> <xếp hạng>\n")
		b.WriteString("/delete <id>\n")
		b.WriteString("/deadline <YYYY-MM-DD>\n")
		b.WriteString("/logout")
	case access.RoleUnit:
		u, _ := cs.access.Unit()
		b.WriteString("👥 Đơn vị " + u.Name + "\n")
		b.WriteString("/athletes /register /export\n")
		b.WriteString("/edit <id> /delete <id> /cancel\n")
		b.WriteString("/overview /results /logout")
	default:
		b.WriteString("🏅 Đăng ký thi đấu\n")
		b.WriteString("/overview /results\n")
		b.WriteString("/login <mã đơn vị>\n")
		b.WriteString("/admin <mật khẩu>")
	}
	return b.String()
}

func splitCommand(txt string) (cmd, arg string) {
	if !strings.HasPrefix(txt, "/") {
		return "", ""
	}
	cmd, arg, _ = strings.Cut(txt, " ")
	// "/start@SomeBot" in groups
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func isUserError(err error) bool {
	var verr *registration.ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, access.ErrAuthFailed) ||
		errors.Is(err, access.ErrForbidden) ||
		errors.Is(err, access.ErrNotGuest) ||
		errors.Is(err, registration.ErrScheduleExpired) ||
		errors.Is(err, tournament.ErrInvalidRank)
}

func userMessage(err error) string {
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr):
		return "⚠️ " + verr.Message
	case errors.Is(err, access.ErrUnitRemoved):
		return "⛔ Đơn vị của bạn đã bị xoá. Bạn đã được đăng xuất."
	case errors.Is(err, access.ErrAuthFailed):
		return "⛔ Sai mật khẩu hoặc mã đơn vị."
	case errors.Is(err, access.ErrForbidden):
		return "⛔ Bạn không có quyền thực hiện thao tác này."
	case errors.Is(err, access.ErrNotGuest):
		return "Bạn đang đăng nhập. Gõ /logout trước."
	case errors.Is(err, registration.ErrScheduleExpired):
		return "⏰ Đã hết hạn đăng ký."
	case errors.Is(err, tournament.ErrInvalidRank):
		return "Xếp hạng không hợp lệ."
	default:
		return "Có lỗi xảy ra, vui lòng thử lại sau."
	}
}
