package gatewayrepo

import (
	"bytes"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"quickrent/util/httpx"
)

type httpRepo struct {
	baseURL     string
	apiKey      string
	callbackTok string
	client      *http.Client
}

// NewHTTP talks to the simulated payment gateway over plain HTTP.
func NewHTTP(baseURL, apiKey, callbackTok string) Repo {
	return &httpRepo{baseURL: baseURL, apiKey: apiKey, callbackTok: callbackTok, client: httpx.Client()}
}

func (r *httpRepo) CreateCheckout(req CreateCheckoutReq) (*CreateCheckoutResp, error) {
	body := map[string]any{
		"external_id":       req.ExternalID,
		"amount":            req.Amount,
		"description":       req.Description,
		"checkout_duration": req.ExpirySec,
	}
	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequest(http.MethodPost, r.baseURL+"/v1/checkouts", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway create checkout failed: %s", resp.Status)
	}

	var out struct {
		Reference   string `json:"reference"`
		CheckoutURL string `json:"checkout_url"`
		ExpiryDate  string `json:"expiry_date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Reference == "" {
		return nil, errors.New("gateway: empty checkout reference")
	}

	return &CreateCheckoutResp{Reference: out.Reference, CheckoutURL: out.CheckoutURL, ExpiresAt: out.ExpiryDate}, nil
}

func (r *httpRepo) VerifyCallbackToken(header string) error {
	if !hmac.Equal([]byte(header), []byte(r.callbackTok)) {
		return errors.New("gateway: bad callback token")
	}
	return nil
}
