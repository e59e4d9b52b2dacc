// Package payment is the boundary to the third-party payment provider.
// The core only needs a yes/no answer: has this order reference been
// paid for the expected amount.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"time"
)

// Confirmer answers whether a payment matching the expected amount was
// captured for an order reference.
type Confirmer interface {
	Confirm(ctx context.Context, orderReference string, expectedAmount float64) bool
}

// RESTConfirmer queries the provider's order endpoint with basic auth.
type RESTConfirmer struct {
	BaseURL  string
	ClientID string
	Secret   string
	Client   *http.Client
}

// NewRESTConfirmer builds a confirmer from PAYMENT_BASE_URL,
// PAYMENT_CLIENT_ID and PAYMENT_SECRET.
func NewRESTConfirmer() *RESTConfirmer {
	return &RESTConfirmer{
		BaseURL:  os.Getenv("PAYMENT_BASE_URL"),
		ClientID: os.Getenv("PAYMENT_CLIENT_ID"),
		Secret:   os.Getenv("PAYMENT_SECRET"),
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type providerOrder struct {
	Status string `json:"status"`
	Amount struct {
		Value float64 `json:"value,string"`
	} `json:"amount"`
}

// Confirm fetches the order from the provider and checks status and
// amount. Any transport or decode failure counts as not confirmed.
func (c *RESTConfirmer) Confirm(ctx context.Context, orderReference string, expectedAmount float64) bool {
	if c.BaseURL == "" {
		log.Printf("payment: no provider configured, rejecting order %s", orderReference)
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/checkout/orders/%s", c.BaseURL, orderReference), nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth(c.ClientID, c.Secret)

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("payment: provider request failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var po providerOrder
	if err := json.NewDecoder(resp.Body).Decode(&po); err != nil {
		return false
	}
	if po.Status != "COMPLETED" {
		return false
	}
	return math.Abs(po.Amount.Value-expectedAmount) < 0.005
}
