package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/crypto_portfolio_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	askSymbolMsg       = "Enter coin symbol (e.g. BTC):"
	askDateMsg         = "Enter purchase date (YYYY-MM-DD):"
	askTimeMsg         = "Enter purchase time (HH:MM):"
	askAmountMsg       = "Enter amount:"
	savingMsg          = "⏳ Fetching historical price..."
	purchaseCancelMsg  = "Purchase cancelled"
	nothingToRetryMsg  = "Nothing to retry, use /add"
	unexpectedInputMsg = "Use one of the commands first, /start shows the list"
)

func (ctrl *Controller) InitAddPurchase(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession := model.Session{State: model.ExpectingSymbol}
	if err := ctrl.session.SetSession(ctx, sessionKey(c), chatSession); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(askSymbolMsg)
}

// ProcessFormInput stores the text of the current form step and asks for the next empty one.
// Validation happens once on submit, which runs as soon as every field is filled.
func (ctrl *Controller) ProcessFormInput(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Send(internalErrMsg)
	}

	input := strings.TrimSpace(c.Text())

	switch chatSession.State {
	case model.ExpectingSymbol:
		chatSession.Form.Symbol = input
	case model.ExpectingDate:
		chatSession.Form.Date = input
	case model.ExpectingTime:
		chatSession.Form.Time = input
	case model.ExpectingAmount:
		chatSession.Form.Amount = input
	default:
		return c.Send(unexpectedInputMsg)
	}

	next, ok := chatSession.Form.NextStep()
	if !ok {
		return ctrl.submitPurchase(ctx, c, chatSession)
	}

	chatSession.State = next
	if err = ctrl.session.SetSession(ctx, sessionKey(c), chatSession); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(formStepPrompt(chatSession))
}

func formStepPrompt(chatSession model.Session) string {
	switch chatSession.State {
	case model.ExpectingSymbol:
		return askSymbolMsg
	case model.ExpectingDate:
		return askDateMsg
	case model.ExpectingTime:
		return askTimeMsg
	default:
		return askAmountMsg
	}
}

func (ctrl *Controller) RetryPurchase(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)

	chatSession, err := ctrl.getSessionFromTeleCtxOrStorage(ctx, c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	if chatSession.State != model.PurchaseSubmitFailed {
		return c.Respond(&tele.CallbackResponse{Text: nothingToRetryMsg})
	}

	_ = c.Respond()
	return ctrl.submitPurchase(ctx, c, chatSession)
}

func (ctrl *Controller) CancelPurchase(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := ctrl.session.ClearSession(ctx, sessionKey(c)); err != nil {
		slog.Error("got error from session.ClearSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	_ = c.Respond()
	return c.Edit(purchaseCancelMsg)
}

// submitPurchase runs the add workflow on the collected form.
// On success the form is cleared and the portfolio reloaded. An invalid field sends the user back to its step,
// a price or store failure keeps the form for a retry.
func (ctrl *Controller) submitPurchase(ctx context.Context, c tele.Context, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	_ = c.Send(savingMsg)

	record, err := ctrl.portfolioService.AddPurchase(ctx, chatSession.Form)
	if err != nil {
		// неверное поле очищается, и пользователь возвращается к его шагу
		switch {
		case errors.Is(err, service.ErrInvalidSymbol):
			chatSession.Form.Symbol = ""
		case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrFutureDate):
			chatSession.Form.Date, chatSession.Form.Time = "", ""
		case errors.Is(err, service.ErrInvalidAmount):
			chatSession.Form.Amount = ""
		}

		step, invalidField := chatSession.Form.NextStep()
		if invalidField {
			chatSession.State = step
		} else {
			chatSession.State = model.PurchaseSubmitFailed
		}

		if setErr := ctrl.session.SetSession(ctx, sessionKey(c), chatSession); setErr != nil {
			slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", setErr.Error()))
		}

		if invalidField {
			return c.Send(addPurchaseErrText(err) + "\n" + formStepPrompt(chatSession))
		}
		return c.Send(addPurchaseErrText(err), telebotConverter.RetryPurchaseMarkup())
	}

	if err = ctrl.session.ClearSession(ctx, sessionKey(c)); err != nil {
		slog.Error("got error from session.ClearSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	if err = ctrl.refresher.Reload(ctx); err != nil {
		slog.Error("got error from refresher.Reload", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	_ = c.Send(telebotConverter.PurchaseSavedResponse(record))
	return c.Send(ctrl.portfolioView(0))
}

func addPurchaseErrText(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidSymbol):
		return "❌ Unsupported symbol, use /search to find a coin"
	case errors.Is(err, service.ErrInvalidDate):
		return "❌ Invalid date or time, expected YYYY-MM-DD and HH:MM"
	case errors.Is(err, service.ErrFutureDate):
		return "❌ Purchase date cannot be in the future"
	case errors.Is(err, service.ErrInvalidAmount):
		return "❌ Amount must be a positive number"
	case errors.Is(err, service.ErrPriceUnavailable):
		return "❌ Could not fetch the historical price, try again later"
	case errors.Is(err, service.ErrStoreFailure):
		return "❌ Could not save the purchase"
	default:
		return fmt.Sprintf("❌ %s", internalErrMsg)
	}
}
