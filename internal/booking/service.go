package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/model"
	"github.com/mabarin/mabarin-web/internal/queue"
	"github.com/mabarin/mabarin-web/internal/session"
)

// API is the part of the upstream client the dialog needs.
type API interface {
	PaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	CreateTransaction(ctx context.Context, token string, activityID, paymentMethodID int64) (model.Transaction, string, error)
}

// Events receives successful bookings.
type Events interface {
	BookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// A dialog left in the submitting phase longer than this is assumed to
// belong to a request that died, and becomes ready again.
const staleSubmit = 2 * time.Minute

const publishTimeout = 5 * time.Second

// Outcome is the result of a successful confirmation.
type Outcome struct {
	Transaction model.Transaction
	Message     string
}

// Service drives dialogs for every visitor.
type Service struct {
	api    API
	store  Store
	events Events
	log    echo.Logger
	now    func() time.Time

	mu       sync.Mutex
	inflight map[string]bool
}

// NewService wires a Service.  events may be nil.
func NewService(api API, store Store, events Events, log echo.Logger) *Service {
	return &Service{
		api:      api,
		store:    store,
		events:   events,
		log:      log,
		now:      time.Now,
		inflight: make(map[string]bool),
	}
}

// View returns the dialog of s for activityID, closed when there is none.
func (svc *Service) View(ctx context.Context, s session.Session, activityID int64) (Dialog, error) {
	d, ok, err := svc.store.Load(ctx, s.ID, activityID)
	if err != nil {
		return closedDialog(s.ID, activityID), err
	}
	if !ok {
		return closedDialog(s.ID, activityID), nil
	}
	return svc.unstick(d), nil
}

// Open shows the dialog and loads the payment methods.  An already open
// dialog is returned as is.  A failed method lookup is logged and leaves the
// list empty.
func (svc *Service) Open(ctx context.Context, s session.Session, activityID int64) (Dialog, error) {
	if !s.Authenticated() {
		return closedDialog(s.ID, activityID), ErrLoginRequired
	}
	if d, err := svc.View(ctx, s, activityID); err == nil && d.Open() {
		return d, nil
	}

	d := Dialog{SessionID: s.ID, ActivityID: activityID, Phase: Loading, UpdatedAt: svc.now()}
	if err := svc.store.Save(ctx, d); err != nil {
		return d, err
	}
	methods, err := svc.api.PaymentMethods(ctx)
	if err != nil {
		svc.log.Errorf("booking: payment methods: %v", err)
		methods = nil
	}
	d.Methods = methods
	return svc.save(ctx, d, Ready)
}

// Select records the chosen payment method.
func (svc *Service) Select(ctx context.Context, s session.Session, activityID, methodID int64) (Dialog, error) {
	d, err := svc.View(ctx, s, activityID)
	if err != nil {
		return d, err
	}
	switch d.Phase {
	case Ready:
	case Submitting:
		return d, ErrSubmitting
	default:
		return d, ErrNotOpen
	}
	if _, ok := model.FindPaymentMethod(d.Methods, methodID); !ok {
		d.SelectedID = 0
		d.Error = MsgSelectMethod
		d, _ = svc.save(ctx, d, Ready)
		return d, ErrNoPaymentMethod
	}
	d.SelectedID = methodID
	d.Error = ""
	return svc.save(ctx, d, Ready)
}

// Confirm books the activity with the selected method, or with methodID
// when it is non-zero.  Without a method nothing is sent upstream.  On
// success the dialog closes and a booking.created event is published; on
// failure it returns to ready with a message.
func (svc *Service) Confirm(ctx context.Context, s session.Session, activityID, methodID int64) (Outcome, Dialog, error) {
	if !s.Authenticated() {
		return Outcome{}, closedDialog(s.ID, activityID), ErrLoginRequired
	}
	key := memKey(s.ID, activityID)
	if !svc.begin(key) {
		d, _ := svc.View(ctx, s, activityID)
		return Outcome{}, d, ErrSubmitting
	}
	defer svc.end(key)

	d, err := svc.View(ctx, s, activityID)
	if err != nil {
		return Outcome{}, d, err
	}
	switch d.Phase {
	case Ready:
	case Submitting:
		return Outcome{}, d, ErrSubmitting
	default:
		return Outcome{}, d, ErrNotOpen
	}

	if methodID != 0 {
		if _, ok := model.FindPaymentMethod(d.Methods, methodID); ok {
			d.SelectedID = methodID
		}
	}
	if _, ok := d.Selected(); !ok {
		d.SelectedID = 0
		d.Error = MsgSelectMethod
		d, _ = svc.save(ctx, d, Ready)
		return Outcome{}, d, ErrNoPaymentMethod
	}

	d.Error = ""
	if d, err = svc.save(ctx, d, Submitting); err != nil {
		return Outcome{}, d, err
	}

	txn, _, err := svc.api.CreateTransaction(ctx, s.Token, activityID, d.SelectedID)
	if err != nil {
		d.Error = failureMessage(err)
		d, _ = svc.save(context.WithoutCancel(ctx), d, Ready)
		return Outcome{}, d, fmt.Errorf("create transaction: %w", err)
	}

	if err := svc.store.Delete(context.WithoutCancel(ctx), s.ID, activityID); err != nil {
		svc.log.Warnf("booking: close dialog: %v", err)
	}
	svc.publish(ctx, s, activityID, d.SelectedID, txn)
	return Outcome{Transaction: txn, Message: MsgBooked}, closedDialog(s.ID, activityID), nil
}

// Cancel closes the dialog.  It is refused while a submission runs.
func (svc *Service) Cancel(ctx context.Context, s session.Session, activityID int64) error {
	svc.mu.Lock()
	busy := svc.inflight[memKey(s.ID, activityID)]
	svc.mu.Unlock()
	if busy {
		return ErrSubmitting
	}
	d, err := svc.View(ctx, s, activityID)
	if err != nil {
		return err
	}
	if d.Phase == Submitting {
		return ErrSubmitting
	}
	return svc.store.Delete(ctx, s.ID, activityID)
}

func (svc *Service) save(ctx context.Context, d Dialog, p Phase) (Dialog, error) {
	d.Phase = p
	d.UpdatedAt = svc.now()
	return d, svc.store.Save(ctx, d)
}

func (svc *Service) unstick(d Dialog) Dialog {
	if d.Phase == Submitting && svc.now().Sub(d.UpdatedAt) > staleSubmit {
		d.Phase = Ready
		d.Error = MsgError
	}
	return d
}

func (svc *Service) begin(key string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.inflight[key] {
		return false
	}
	svc.inflight[key] = true
	return true
}

func (svc *Service) end(key string) {
	svc.mu.Lock()
	delete(svc.inflight, key)
	svc.mu.Unlock()
}

func (svc *Service) publish(ctx context.Context, s session.Session, activityID, methodID int64, txn model.Transaction) {
	if svc.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := svc.events.BookingCreated(ctx, queue.BookingCreatedEvent{
		SessionID:       s.ID,
		UserEmail:       s.Email,
		ActivityID:      activityID,
		ActivityTitle:   txn.TransactionItems.SportActivities.Title,
		TransactionID:   txn.ID.String(),
		InvoiceID:       txn.InvoiceID,
		PaymentMethodID: methodID,
		TotalAmount:     txn.TotalAmount,
	})
	if err != nil {
		svc.log.Warnf("booking: publish booking.created: %v", err)
	}
}

// failureMessage distinguishes an upstream refusal from a transport or
// decoding problem.
func failureMessage(err error) string {
	var apiErr *mabarin.APIError
	if errors.As(err, &apiErr) {
		return mabarin.UserMessage(err, MsgFailed)
	}
	return MsgError
}
