package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/model"
	"github.com/mabarin/mabarin-web/internal/queue"
	"github.com/mabarin/mabarin-web/internal/session"
)

const (
	msgProofEmpty   = "Please enter a URL first"
	msgProofUpdated = "Proof of payment updated successfully!"
	msgProofFailed  = "Failed to update proof of payment"
)

// ProofEvents receives proof-of-payment submissions.
type ProofEvents interface {
	ProofSubmitted(ctx context.Context, ev queue.ProofSubmittedEvent) error
}

// AuditReader lists recorded booking events of a user.
type AuditReader interface {
	Recent(ctx context.Context, email string, limit int) ([]model.AuditEntry, error)
}

// TransactionHandler serves /profile/transactions.  Events and Audit are
// optional.
type TransactionHandler struct {
	Base
	Events ProofEvents
	Audit  AuditReader
}

func NewTransactionHandler(b Base, events ProofEvents, audit AuditReader) *TransactionHandler {
	return &TransactionHandler{Base: b, Events: events, Audit: audit}
}

type transactionsData struct {
	Items  []model.Transaction
	Recent []model.AuditEntry
}

type transactionData struct {
	Transaction model.Transaction
	Activity    *model.SportActivity
	Method      *model.PaymentMethod
}

const (
	recentAuditLimit = 5
	publishTimeout   = 5 * time.Second
)

// List shows the user's transactions, newest first as the API returns them.
func (h *TransactionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	s := session.From(c)
	items, err := h.API.MyTransactions(ctx, s.Token)
	if err != nil {
		return h.fail(c, err, "Failed to load transactions")
	}
	d := transactionsData{Items: items}
	if h.Audit != nil && s.Email != "" {
		if d.Recent, err = h.Audit.Recent(ctx, s.Email, recentAuditLimit); err != nil {
			h.Log.Warnf("transactions: audit: %v", err)
		}
	}
	return h.page(c, http.StatusOK, "transactions", "My Transactions", d)
}

// Detail shows one transaction with its activity and payment method.  Both
// extra lookups are best effort and run in parallel.
func (h *TransactionHandler) Detail(c echo.Context) error {
	ctx := c.Request().Context()
	s := session.From(c)
	txn, err := h.API.Transaction(ctx, s.Token, c.Param("id"))
	if err != nil {
		return h.fail(c, err, "Failed to load transaction")
	}

	d := transactionData{Transaction: txn}
	var wg sync.WaitGroup
	if id := txn.TransactionItems.SportActivityID; id > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := h.API.Activity(ctx, id)
			if err != nil {
				h.Log.Warnf("transaction %s: activity %d: %v", txn.ID, id, err)
				return
			}
			d.Activity = &a
		}()
	}
	if txn.PaymentMethodID > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			methods, err := h.API.PaymentMethods(ctx)
			if err != nil {
				h.Log.Warnf("transaction %s: payment methods: %v", txn.ID, err)
				return
			}
			if m, ok := model.FindPaymentMethod(methods, txn.PaymentMethodID); ok {
				d.Method = &m
			}
		}()
	}
	wg.Wait()
	return h.page(c, http.StatusOK, "transaction", txn.InvoiceID, d)
}

// Proof attaches a proof-of-payment URL.  An empty URL is rejected without
// calling upstream.
func (h *TransactionHandler) Proof(c echo.Context) error {
	id := c.Param("id")
	back := "/profile/transactions/" + id
	proof := strings.TrimSpace(c.FormValue("proof_payment_url"))
	if proof == "" {
		return h.redirect(c, "error", msgProofEmpty, back)
	}

	ctx := c.Request().Context()
	s := session.From(c)
	if _, err := h.API.UpdateProofPayment(ctx, s.Token, id, proof); err != nil {
		if isExpired(err) {
			return h.fail(c, err, msgProofFailed)
		}
		h.Log.Warnf("proof %s: %v", id, err)
		return h.redirect(c, "error", mabarin.UserMessage(err, msgProofFailed), back)
	}

	if h.Events != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		err := h.Events.ProofSubmitted(pctx, queue.ProofSubmittedEvent{
			SessionID:     s.ID,
			UserEmail:     s.Email,
			TransactionID: id,
			ProofURL:      proof,
		})
		if err != nil {
			h.Log.Warnf("proof %s: publish: %v", id, err)
		}
	}
	return h.redirect(c, "success", msgProofUpdated, back)
}

func isExpired(err error) bool { return errors.Is(err, mabarin.ErrUnauthorized) }
