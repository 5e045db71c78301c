package telegram

import (
	"errors"
	"log/slog"

	"github.com/KotFed0t/crypto_portfolio_bot/internal/converter/telebotConverter"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

const (
	deleteFailedMsg    = "Failed to delete the purchase"
	deleteGoneMsg      = "The purchase no longer exists"
	deleteCancelledMsg = "Deletion cancelled"
	purchaseDeletedMsg = "🗑 Purchase deleted"
)

func (ctrl *Controller) AskDeleteConfirmation(c tele.Context) error {
	id, err := uuid.Parse(c.Callback().Data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	position, ok := findPosition(ctrl.refresher.Current(), id)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: deleteGoneMsg})
	}

	_ = c.Respond()
	return c.Send(telebotConverter.DeleteConfirmationResponse(position))
}

func (ctrl *Controller) ConfirmDelete(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	id, err := uuid.Parse(c.Callback().Data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	if err = ctrl.portfolioService.DeletePurchase(ctx, id); err != nil {
		slog.Error("got error from portfolioService.DeletePurchase", slog.String("rqID", rqID), slog.String("err", err.Error()))
		text := deleteFailedMsg
		if errors.Is(err, service.ErrNotFound) {
			text = deleteGoneMsg
		}
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}

	ctrl.refresher.RemovePurchase(ctx, id)

	_ = c.Respond()
	_ = c.Edit(purchaseDeletedMsg)
	return c.Send(ctrl.portfolioView(0))
}

func (ctrl *Controller) CancelDelete(c tele.Context) error {
	_ = c.Respond()
	return c.Edit(deleteCancelledMsg)
}

func findPosition(valuation *model.Valuation, id uuid.UUID) (model.ValuedPosition, bool) {
	if valuation == nil {
		return model.ValuedPosition{}, false
	}
	for _, p := range valuation.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return model.ValuedPosition{}, false
}
