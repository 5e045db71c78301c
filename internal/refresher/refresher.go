package refresher

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KotFed0t/crypto_portfolio_bot/internal/model"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/valuation"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
	"github.com/google/uuid"
)

const refreshJobName = "refresh portfolio prices"

type PurchaseLister interface {
	GetPurchases(ctx context.Context) ([]model.PurchaseRecord, error)
}

type Valuator interface {
	Valuate(ctx context.Context, records []model.PurchaseRecord) model.Valuation
}

type JobScheduler interface {
	NewIntervalJob(name string, fn func(ctx context.Context) error, interval time.Duration, startImmediately bool) (uuid.UUID, error)
	RemoveJob(id uuid.UUID) error
}

// Refresher owns the loaded purchase set and the displayed valuation.
// The displayed valuation is swapped atomically, readers see either the previous or the next one.
type Refresher struct {
	lister    PurchaseLister
	valuator  Valuator
	scheduler JobScheduler
	interval  time.Duration

	mu      sync.Mutex
	records []model.PurchaseRecord
	jobID   uuid.UUID
	hasJob  bool

	current atomic.Pointer[model.Valuation]
	loadErr atomic.Pointer[error]
}

func New(lister PurchaseLister, valuator Valuator, scheduler JobScheduler, interval time.Duration) *Refresher {
	return &Refresher{
		lister:    lister,
		valuator:  valuator,
		scheduler: scheduler,
		interval:  interval,
	}
}

// Reload re-lists purchases from the store, values them once and re-arms the interval job.
// On list failure the previously displayed state is left as is.
func (r *Refresher) Reload(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Refresher.Reload"

	slog.Debug("Reload start", slog.String("rqID", rqID), slog.String("op", op))

	records, err := r.lister.GetPurchases(ctx)
	if err != nil {
		slog.Error("got error from lister.GetPurchases", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		r.loadErr.Store(&err)
		return err
	}
	r.loadErr.Store(nil)

	r.mu.Lock()
	r.records = records
	r.mu.Unlock()

	r.publish(r.valuator.Valuate(ctx, records))

	r.mu.Lock()
	defer r.mu.Unlock()
	// за время оценки набор мог смениться, таймер перевзводим под актуальный
	r.rearmLocked(ctx)

	slog.Debug("Reload completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("records", len(records)))

	return nil
}

// RefreshPrices values the already loaded purchases without going to the store.
func (r *Refresher) RefreshPrices(ctx context.Context) error {
	r.mu.Lock()
	records := r.records
	r.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	r.publish(r.valuator.Valuate(ctx, records))
	return nil
}

// RemovePurchase drops a deleted purchase from the loaded set and the displayed valuation
// without re-listing; totals are recomputed from the remaining positions.
func (r *Refresher) RemovePurchase(ctx context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = slices.DeleteFunc(slices.Clone(r.records), func(rec model.PurchaseRecord) bool {
		return rec.ID == id
	})

	if cur := r.current.Load(); cur != nil {
		positions := slices.DeleteFunc(slices.Clone(cur.Positions), func(p model.ValuedPosition) bool {
			return p.ID == id
		})
		r.current.Store(&model.Valuation{
			Positions: positions,
			Snapshot:  valuation.Aggregate(positions),
			ValuedAt:  cur.ValuedAt,
		})
	}

	r.rearmLocked(ctx)
}

// Current returns the last complete valuation or nil if none was produced yet.
func (r *Refresher) Current() *model.Valuation {
	return r.current.Load()
}

// LoadErr returns the error of the last failed Reload, nil after a successful one.
func (r *Refresher) LoadErr() error {
	if errPtr := r.loadErr.Load(); errPtr != nil {
		return *errPtr
	}
	return nil
}

func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmLocked()
}

func (r *Refresher) publish(v model.Valuation) {
	r.current.Store(&v)
}

// rearmLocked пересоздает интервальную задачу при смене набора покупок, для пустого набора задача не нужна
func (r *Refresher) rearmLocked(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	r.disarmLocked()

	if len(r.records) == 0 {
		return
	}

	id, err := r.scheduler.NewIntervalJob(refreshJobName, r.RefreshPrices, r.interval, false)
	if err != nil {
		slog.Error("can't schedule price refresh", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return
	}

	r.jobID = id
	r.hasJob = true
}

func (r *Refresher) disarmLocked() {
	if !r.hasJob {
		return
	}
	_ = r.scheduler.RemoveJob(r.jobID)
	r.jobID = uuid.Nil
	r.hasJob = false
}
