// Package ledger owns an account's cash balance and its append-only movement
// log. The balance is a projection of the log: initial balance plus credits
// minus debits.
package ledger

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"finanzas-backend/internal/apperr"
	"finanzas-backend/internal/models"
	"finanzas-backend/internal/session"
	"finanzas-backend/internal/store"
)

// Locator supplies the device position for a new movement. It is optional
// and its failures never block a movement.
type Locator interface {
	Locate(ctx context.Context) (*models.Location, error)
}

type Order int

const (
	Chronological Order = iota
	NewestFirst
)

// MovementInput is what a caller provides; id and timestamp are assigned.
type MovementInput struct {
	Kind        models.MovementKind
	Amount      decimal.Decimal
	Description string
	Location    *models.Location
}

// Reconciliation compares the stored balance with a full replay.
type Reconciliation struct {
	Stored        decimal.Decimal
	Computed      decimal.Decimal
	Drift         decimal.Decimal // Computed - Stored
	MovementCount int
	Repaired      bool
}

func (r Reconciliation) Consistent() bool { return r.Drift.IsZero() }

type Option func(*Ledger)

func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

func WithLocator(loc Locator) Option { return func(l *Ledger) { l.locator = loc } }

func WithLogger(logger *zap.Logger) Option { return func(l *Ledger) { l.logger = logger } }

// Ledger is the balance and movement log of one account. It is not safe for
// concurrent use; one ledger serves one sequence of operations.
type Ledger struct {
	store   store.Store
	sess    session.Handle
	now     func() time.Time
	locator Locator
	logger  *zap.Logger

	loaded    bool
	account   models.Account
	balance   decimal.Decimal
	movements []models.Movement // chronological
	pending   bool              // balance write outstanding after a partial failure
}

func New(st store.Store, sess session.Handle, opts ...Option) *Ledger {
	l := &Ledger{
		store:  st,
		sess:   sess,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces cached state with the stored account and movements. The
// cached balance is the stored value; use Reconcile to verify it.
func (l *Ledger) Load(ctx context.Context) error {
	acc, err := l.store.FetchAccount(ctx, l.sess.UID)
	if err != nil {
		return err
	}
	movs, err := l.store.FetchMovements(ctx, l.sess.UID)
	if err != nil {
		return err
	}
	l.account = acc
	l.balance = acc.Balance
	l.movements = movs
	l.pending = false
	l.loaded = true
	return nil
}

func (l *Ledger) ensureLoaded(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	return l.Load(ctx)
}

// ApplyMovement validates the input, appends the movement and then writes
// the new balance. These are two separate store calls. If the balance write
// fails the movement is kept, the cached balance includes it, Pending
// reports true and the returned error is a transport error.
func (l *Ledger) ApplyMovement(ctx context.Context, in MovementInput) (models.Movement, error) {
	if !in.Kind.Valid() {
		return models.Movement{}, apperr.Validation("movement type must be %q or %q", models.MovementCredit, models.MovementDebit)
	}
	if !in.Amount.IsPositive() {
		return models.Movement{}, apperr.Validation("amount must be positive, got %s", in.Amount)
	}
	if err := l.ensureLoaded(ctx); err != nil {
		return models.Movement{}, err
	}

	mov := models.Movement{
		UserID:      l.sess.UID,
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Timestamp:   l.now(),
	}
	mov.SetLocation(l.locate(ctx, in.Location))

	id, err := l.store.AppendMovement(ctx, l.sess.UID, mov)
	if err != nil {
		return models.Movement{}, err
	}
	mov.ID = id
	l.movements = append(l.movements, mov)

	next := l.balance.Add(mov.Signed())
	l.balance = next
	if err := l.store.PatchAccount(ctx, l.sess.UID, store.AccountPatch{Balance: &next}); err != nil {
		l.pending = true
		l.logger.Warn("movement recorded but balance not persisted",
			zap.String("uid", l.sess.UID),
			zap.Uint("movement_id", id),
			zap.String("balance", next.String()),
			zap.Error(err))
		return mov, err
	}
	l.account.Balance = next
	l.pending = false
	return mov, nil
}

func (l *Ledger) locate(ctx context.Context, explicit *models.Location) *models.Location {
	if explicit != nil {
		return explicit
	}
	if l.locator == nil {
		return nil
	}
	loc, err := l.locator.Locate(ctx)
	if err != nil {
		l.logger.Debug("location unavailable", zap.Error(err))
		return nil
	}
	return loc
}

// CurrentBalance is the last known balance.
func (l *Ledger) CurrentBalance() decimal.Decimal { return l.balance }

func (l *Ledger) InitialBalance() decimal.Decimal { return l.account.InitialBalance }

func (l *Ledger) Account() models.Account { return l.account }

// Pending reports whether the stored balance is known to lag the log.
func (l *Ledger) Pending() bool { return l.pending }

// ListMovements returns a copy of the log in the requested order.
func (l *Ledger) ListMovements(order Order) []models.Movement {
	out := slices.Clone(l.movements)
	if order == NewestFirst {
		slices.Reverse(out)
	}
	return out
}

// Reconcile refetches the account and every movement and rebuilds the
// balance by replay. Only the cached state changes; nothing is written, so
// it can run at any time and any number of times.
func (l *Ledger) Reconcile(ctx context.Context) (Reconciliation, error) {
	acc, err := l.store.FetchAccount(ctx, l.sess.UID)
	if err != nil {
		return Reconciliation{}, err
	}
	movs, err := l.store.FetchMovements(ctx, l.sess.UID)
	if err != nil {
		return Reconciliation{}, err
	}

	computed := Replay(acc.InitialBalance, movs)
	rec := Reconciliation{
		Stored:        acc.Balance,
		Computed:      computed,
		Drift:         computed.Sub(acc.Balance),
		MovementCount: len(movs),
	}

	l.account = acc
	l.movements = movs
	l.balance = computed
	l.pending = !rec.Consistent()
	l.loaded = true

	if !rec.Consistent() {
		l.logger.Warn("balance drift detected",
			zap.String("uid", l.sess.UID),
			zap.String("stored", rec.Stored.String()),
			zap.String("computed", rec.Computed.String()))
	}
	return rec, nil
}

// Repair reconciles and, when the stored balance drifted, writes the
// replayed value back.
func (l *Ledger) Repair(ctx context.Context) (Reconciliation, error) {
	rec, err := l.Reconcile(ctx)
	if err != nil || rec.Consistent() {
		return rec, err
	}
	computed := rec.Computed
	if err := l.store.PatchAccount(ctx, l.sess.UID, store.AccountPatch{Balance: &computed}); err != nil {
		return rec, err
	}
	l.account.Balance = computed
	l.pending = false
	rec.Repaired = true
	l.logger.Info("balance repaired",
		zap.String("uid", l.sess.UID),
		zap.String("balance", computed.String()))
	return rec, nil
}

// Replay folds movements, in any order, onto initial.
func Replay(initial decimal.Decimal, movs []models.Movement) decimal.Decimal {
	total := initial
	for _, m := range movs {
		total = total.Add(m.Signed())
	}
	return total
}

// ParseAmount reads a user-entered amount. Anything that is not a finite
// positive number is a validation error.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, apperr.Validation("amount %q is not a number", s)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, apperr.Validation("amount must be positive, got %s", d)
	}
	return d, nil
}

// IsPartial reports whether err came from ApplyMovement after the movement
// was stored but before the balance was.
func (l *Ledger) IsPartial(err error) bool {
	return err != nil && l.pending && errors.Is(err, apperr.ErrTransport)
}
