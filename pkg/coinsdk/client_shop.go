package coinsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ShopItems lists the items currently purchasable in the shop.
func (c *Client) ShopItems(ctx context.Context) ([]ShopItem, error) {
	var items []ShopItem
	if err := getJSON(ctx, c, "/api/shop/items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Purchase files a purchase request for a shop item. Purchases are not
// immediate: they enter the parent's approval queue, so no balance changes
// until the request resolves.
func (c *Client) Purchase(ctx context.Context, itemID string) (*PurchaseResponse, error) {
	query := url.Values{"item_id": {itemID}}

	var purchase PurchaseResponse
	if err := sendJSON(ctx, c, http.MethodPost, "/api/shop/purchase?"+query.Encode(), nil, &purchase, http.StatusOK); err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ConversionRequests lists a child's coin-to-money conversion requests.
func (c *Client) ConversionRequests(ctx context.Context, userID string) ([]RedemptionRequest, error) {
	var reqs []RedemptionRequest
	if err := getJSON(ctx, c, "/api/users/"+userID+"/conversion-requests", &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// CreateConversionRequest asks to convert coins into real money. Like
// purchases, it waits in the parent's queue.
func (c *Client) CreateConversionRequest(ctx context.Context, userID string, req CreateConversionRequest) (*RedemptionRequest, error) {
	var created RedemptionRequest
	if err := sendJSON(ctx, c, http.MethodPost, "/api/users/"+userID+"/conversion-requests", req, &created, http.StatusOK); err != nil {
		return nil, err
	}
	return &created, nil
}

// PendingRedemptions lists the purchase and conversion requests waiting on
// the parent.
func (c *Client) PendingRedemptions(ctx context.Context) ([]RedemptionRequest, error) {
	var reqs []RedemptionRequest
	if err := getJSON(ctx, c, "/api/parents/redemptions", &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ApproveRedemption approves a pending redemption request. This is the point
// where coins actually leave the child's balance.
func (c *Client) ApproveRedemption(ctx context.Context, requestID string) (*RedemptionRequest, error) {
	var resolved RedemptionRequest
	if err := sendJSON(ctx, c, http.MethodPut, "/api/redemption-requests/"+requestID+"/approve", nil, &resolved, http.StatusOK); err != nil {
		return nil, err
	}
	return &resolved, nil
}

// RejectRedemption rejects a pending redemption request. The child's balance
// is untouched.
func (c *Client) RejectRedemption(ctx context.Context, requestID string) (*RedemptionRequest, error) {
	var resolved RedemptionRequest
	if err := sendJSON(ctx, c, http.MethodPut, "/api/redemption-requests/"+requestID+"/reject", nil, &resolved, http.StatusOK); err != nil {
		return nil, err
	}
	return &resolved, nil
}
