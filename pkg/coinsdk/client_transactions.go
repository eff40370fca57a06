package coinsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// TransactionFilter narrows a transaction listing. Zero values mean
// "no filter".
type TransactionFilter struct {
	Type  TransactionType
	Limit int
}

// Transactions lists a user's transaction history, newest first.
func (c *Client) Transactions(ctx context.Context, userID string, filter TransactionFilter) ([]Transaction, error) {
	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", string(filter.Type))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/api/users/" + userID + "/transactions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var txns []Transaction
	if err := getJSON(ctx, c, path, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// CreateTransaction records an earn, spend or save event and returns the
// created transaction with the user's new balance.
func (c *Client) CreateTransaction(ctx context.Context, userID string, req CreateTransactionRequest) (*TransactionResponse, error) {
	var txnResp TransactionResponse
	if err := sendJSON(ctx, c, http.MethodPost, "/api/users/"+userID+"/transactions", req, &txnResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &txnResp, nil
}
