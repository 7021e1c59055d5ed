package mabarin

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/mabarin/mabarin-web/internal/model"
)

var errMissingToken = errors.New("reply has no token")

type createTransactionRequest struct {
	SportActivityID int64 `json:"sport_activity_id"`
	PaymentMethodID int64 `json:"payment_method_id"`
}

// CreateTransaction books activityID with the chosen payment method.  The
// API may answer without a body; in that case the returned Transaction is
// zero and the message is still passed through.
func (c *Client) CreateTransaction(ctx context.Context, token string, activityID, paymentMethodID int64) (model.Transaction, string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/transaction/create",
		body:   createTransactionRequest{SportActivityID: activityID, PaymentMethodID: paymentMethodID},
		token:  token,
	})
	if err != nil {
		return model.Transaction{}, "", err
	}
	var tx model.Transaction
	if obj := objectOf(env.Payload); obj != nil {
		if err := decodeInto(env.Payload, &tx); err != nil {
			return model.Transaction{}, env.Message, &DecodeError{Endpoint: "POST /transaction/create", Err: err}
		}
	}
	return tx, env.Message, nil
}

func (c *Client) MyTransactions(ctx context.Context, token string) ([]model.Transaction, error) {
	return fetchList[model.Transaction](ctx, c, call{method: http.MethodGet, path: "/my-transaction", token: token})
}

func (c *Client) Transaction(ctx context.Context, token, id string) (model.Transaction, error) {
	var tx model.Transaction
	err := c.fetch(ctx, call{method: http.MethodGet, path: "/transaction/" + url.PathEscape(id), token: token}, &tx)
	return tx, err
}

// UpdateProofPayment attaches a proof-of-payment URL to transaction id.
func (c *Client) UpdateProofPayment(ctx context.Context, token, id, proofURL string) (string, error) {
	env, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/transaction/update-proof-payment/" + url.PathEscape(id),
		body:   map[string]string{"proof_payment_url": proofURL},
		token:  token,
	})
	return env.Message, err
}
