package api

import (
	"context"
	"net/http"
)

// UpdateListingStatus flips the teacher's listing visibility. The payment
// flow calls this best-effort after a confirmed payment.
func (c *Client) UpdateListingStatus(ctx context.Context, isListed bool) error {
	body := map[string]bool{"isListed": isListed}
	return c.call(ctx, http.MethodPost, "/profile/update-listing-status", nil, body, nil)
}
