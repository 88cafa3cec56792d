package gatewayrepo

type CreateCheckoutReq struct {
	ExternalID  string
	Amount      float64
	Description string
	ExpirySec   int
}

type CreateCheckoutResp struct {
	Reference   string
	CheckoutURL string
	ExpiresAt   string
}

type Repo interface {
	CreateCheckout(req CreateCheckoutReq) (*CreateCheckoutResp, error)
	VerifyCallbackToken(header string) error
}
