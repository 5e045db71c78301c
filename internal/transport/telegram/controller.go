package telegram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/KotFed0t/crypto_portfolio_bot/data/session"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service/reportService"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/symbolRegistry"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg  = "что-то пошло не так... try again later"
	helpMsg         = "Crypto portfolio tracker.\n\n/portfolio - current valuation\n/add - record a purchase\n/search <query> - find a supported coin\n/refresh - reload purchases and prices\n/export - download an xlsx report"
	loadingMsg      = "⏳ Portfolio is loading, try again in a moment"
	loadFailedMsg   = "❌ Failed to load purchases, use /refresh to try again"
	searchUsageMsg  = "Usage: /search <symbol or name>"
	emptyExportMsg  = "Nothing to export, the portfolio is empty"
	tooLargeMsg     = "The report is too large to send"
	reportLinkMsg   = "📎 The report is too large for Telegram, download it here: "
	reportSentMsg   = "📎 Portfolio report"
)

type PortfolioService interface {
	AddPurchase(ctx context.Context, form model.PurchaseForm) (model.PurchaseRecord, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) error
	SearchSymbols(query string) []symbolRegistry.Entry
}

type Refresher interface {
	Reload(ctx context.Context) error
	RemovePurchase(ctx context.Context, id uuid.UUID)
	Current() *model.Valuation
	LoadErr() error
}

type ReportService interface {
	ExportValuation(ctx context.Context, valuation *model.Valuation) (reportService.Report, error)
}

type Session interface {
	GetSession(ctx context.Context, key string) (model.Session, error)
	SetSession(ctx context.Context, key string, session model.Session) error
	ClearSession(ctx context.Context, key string) error
}

type Controller struct {
	portfolioService PortfolioService
	refresher        Refresher
	reportService    ReportService
	session          Session
}

func NewController(portfolioService PortfolioService, refresher Refresher, reportService ReportService, session Session) *Controller {
	return &Controller{
		portfolioService: portfolioService,
		refresher:        refresher,
		reportService:    reportService,
		session:          session,
	}
}

func (ctrl *Controller) Start(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	// новая команда сбрасывает незавершенную форму
	_ = ctrl.session.ClearSession(ctx, sessionKey(c))
	return c.Send(helpMsg)
}

func (ctrl *Controller) ShowPortfolio(c tele.Context) error {
	return c.Send(ctrl.portfolioView(0))
}

// portfolioView returns the message for one page of the currently displayed valuation.
// Until the first successful load there is nothing to show.
func (ctrl *Controller) portfolioView(page int) (string, *tele.ReplyMarkup) {
	current := ctrl.refresher.Current()
	if current == nil {
		if ctrl.refresher.LoadErr() != nil {
			return loadFailedMsg, nil
		}
		return loadingMsg, nil
	}
	return telebotConverter.PortfolioResponse(current, page)
}

func (ctrl *Controller) Refresh(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := ctrl.refresher.Reload(ctx); err != nil {
		slog.Error("got error from refresher.Reload", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(loadFailedMsg)
	}

	return c.Send(ctrl.portfolioView(0))
}

// RefreshCallback is the inline "Refresh" button under the portfolio message, data is the shown page.
func (ctrl *Controller) RefreshCallback(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := ctrl.refresher.Reload(ctx); err != nil {
		slog.Error("got error from refresher.Reload", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Respond(&tele.CallbackResponse{Text: loadFailedMsg, ShowAlert: true})
	}

	_ = c.Respond()
	return ctrl.editPortfolio(c, callbackPage(c))
}

// ShowPortfolioPage is the prev/next navigation under the portfolio message.
func (ctrl *Controller) ShowPortfolioPage(c tele.Context) error {
	_ = c.Respond()
	return ctrl.editPortfolio(c, callbackPage(c))
}

func (ctrl *Controller) editPortfolio(c tele.Context, page int) error {
	text, markup := ctrl.portfolioView(page)
	err := c.Edit(text, markup)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

func callbackPage(c tele.Context) int {
	page, err := strconv.Atoi(c.Callback().Data)
	if err != nil {
		return 0
	}
	return page
}

func (ctrl *Controller) Search(c tele.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args(), " "))
	if query == "" {
		return c.Send(searchUsageMsg)
	}

	return c.Send(telebotConverter.SearchResponse(query, ctrl.portfolioService.SearchSymbols(query)))
}

func (ctrl *Controller) Export(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	report, err := ctrl.reportService.ExportValuation(ctx, ctrl.refresher.Current())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNothingToExport):
			return c.Send(emptyExportMsg)
		case errors.Is(err, service.ErrFileTooLarge):
			return c.Send(tooLargeMsg)
		default:
			slog.Error("got error from reportService.ExportValuation", slog.String("rqID", rqID), slog.String("err", err.Error()))
			return c.Send(internalErrMsg)
		}
	}

	if report.DownloadLink != "" {
		return c.Send(reportLinkMsg + report.DownloadLink)
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(report.Content)),
		FileName: report.Filename,
		Caption:  reportSentMsg,
	}
	return c.Send(doc)
}

func sessionKey(c tele.Context) string {
	return strconv.FormatInt(c.Chat().ID, 10)
}

func (ctrl *Controller) getSessionFromTeleCtxOrStorage(ctx context.Context, c tele.Context) (model.Session, error) {
	chatSession, ok := c.Get("session").(model.Session)
	if ok {
		return chatSession, nil
	}

	rqID := utils.GetRequestIDFromCtx(ctx)
	chatSession, err := ctrl.session.GetSession(ctx, sessionKey(c))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return model.Session{}, nil
		}
		slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}
	return chatSession, nil
}
