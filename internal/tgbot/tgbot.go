package tgbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/KotFed0t/crypto_portfolio_bot/data/session"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model/tg/tgCallback"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/transport/telegram"
	customMW "github.com/KotFed0t/crypto_portfolio_bot/internal/transport/telegram/middleware"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
}

type TGBot struct {
	bot     *tele.Bot
	cfg     *config.Config
	ctrl    *telegram.Controller
	session Session
}

func New(cfg *config.Config, ctrl *telegram.Controller, session Session) *TGBot {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TGBot{bot: b, cfg: cfg, ctrl: ctrl, session: session}
}

func (b *TGBot) Start() {
	b.bot.Use(middleware.Recover())
	if b.cfg.Telegram.OwnerChatID != 0 {
		b.bot.Use(middleware.Whitelist(b.cfg.Telegram.OwnerChatID))
	}
	b.bot.Use(customMW.Logger())

	b.setupRoutes()

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes() {
	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		// получение сессии и выбор метода контроллера на основе шага пользователя
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)
		chatSession, err := b.session.GetSession(ctx, strconv.FormatInt(c.Chat().ID, 10))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send("что-то пошло не так...")
		}

		c.Set("session", chatSession)

		switch chatSession.State {
		case model.ExpectingSymbol, model.ExpectingDate, model.ExpectingTime, model.ExpectingAmount:
			return b.ctrl.ProcessFormInput(c)
		default:
			slog.Debug("text outside of a form", slog.String("rqID", rqID), slog.Any("state", chatSession.State))
			return c.Send("Use one of the commands first, /start shows the list")
		}
	})

	b.bot.Handle("/start", b.ctrl.Start)
	b.bot.Handle("/portfolio", b.ctrl.ShowPortfolio)
	b.bot.Handle("/add", b.ctrl.InitAddPurchase)
	b.bot.Handle("/search", b.ctrl.Search)
	b.bot.Handle("/refresh", b.ctrl.Refresh)
	b.bot.Handle("/export", b.ctrl.Export)

	b.bot.Handle(&tele.Btn{Unique: tgCallback.RefreshPortfolio}, b.ctrl.RefreshCallback)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.PortfolioPage}, b.ctrl.ShowPortfolioPage)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.DeletePurchase}, b.ctrl.AskDeleteConfirmation)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.ConfirmDeletePurchase}, b.ctrl.ConfirmDelete)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.CancelDeletePurchase}, b.ctrl.CancelDelete)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.RetryPurchase}, b.ctrl.RetryPurchase)
	b.bot.Handle(&tele.Btn{Unique: tgCallback.CancelPurchase}, b.ctrl.CancelPurchase)
}
