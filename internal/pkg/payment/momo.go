package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hnthao/elearn/internal/pkg/env"
)

const (
	defaultMoMoBaseURL = "https://test-payment.momo.vn"
	createEndpointPath = "/v2/gateway/api/create"
)

// Recognized payment method selectors (the gateway's requestType values).
const (
	MethodWallet     = "captureWallet"
	MethodATM        = "payWithATM"
	MethodCreditCard = "payWithCC"
)

// DefaultMethod is what unrecognized selector values are coerced to.
const DefaultMethod = MethodATM

// NormalizeMethod maps a caller-supplied selector onto the closed set the
// gateway accepts. Unknown values fall back to the default instead of
// being rejected; the checkout form only offers the three valid ones.
func NormalizeMethod(method string) string {
	switch method {
	case MethodWallet, MethodATM, MethodCreditCard:
		return method
	default:
		return DefaultMethod
	}
}

// Client talks to the MoMo create endpoint. All credentials live on the
// struct so tests can run against a fake gateway with fake keys.
type Client struct {
	PartnerCode string
	PartnerName string
	StoreID     string
	AccessKey   string
	SecretKey   string
	Lang        string

	BaseURL string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from MOMO_* environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		PartnerCode: strings.TrimSpace(env.GetEnv("MOMO_PARTNER_CODE", "")),
		PartnerName: strings.TrimSpace(env.GetEnv("MOMO_PARTNER_NAME", "Elearn")),
		StoreID:     strings.TrimSpace(env.GetEnv("MOMO_STORE_ID", "")),
		AccessKey:   strings.TrimSpace(env.GetEnv("MOMO_ACCESS_KEY", "")),
		SecretKey:   strings.TrimSpace(env.GetEnv("MOMO_SECRET_KEY", "")),
		Lang:        strings.TrimSpace(env.GetEnv("MOMO_LANG", "vi")),
		BaseURL:     strings.TrimRight(env.GetEnv("MOMO_BASE_URL", defaultMoMoBaseURL), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether the mandatory gateway credentials are set.
func (c *Client) Configured() bool {
	return c.PartnerCode != "" && c.AccessKey != "" && c.SecretKey != ""
}

// CreateInput carries everything the create call needs. Identifiers are
// generated by the caller before the call so they survive a lost response.
type CreateInput struct {
	OrderID     string
	RequestID   string
	AmountVND   int64
	OrderInfo   string
	ReturnURL   string
	NotifyURL   string
	RequestType string
}

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	PartnerName string `json:"partnerName"`
	StoreID     string `json:"storeId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	Lang        string `json:"lang"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

// CreatePayment asks the gateway for a pay URL. Every failure mode
// (missing configuration, transport error, unparsable or negative
// response) comes back as (false, "", message); nothing escapes as an
// error because the caller must show a message to the buyer either way.
// The method performs no writes besides the HTTP call.
func (c *Client) CreatePayment(ctx context.Context, in CreateInput) (bool, string, string) {
	if !c.Configured() {
		log.Printf("momo: create called without PartnerCode/AccessKey/SecretKey configured")
		return false, "", "Cổng thanh toán MoMo chưa được cấu hình."
	}

	requestType := NormalizeMethod(in.RequestType)
	extraData := ""

	signature := SignCreateRequest(CreateSignFields{
		AccessKey:   c.AccessKey,
		Amount:      in.AmountVND,
		ExtraData:   extraData,
		IpnURL:      in.NotifyURL,
		OrderID:     in.OrderID,
		OrderInfo:   in.OrderInfo,
		PartnerCode: c.PartnerCode,
		RedirectURL: in.ReturnURL,
		RequestID:   in.RequestID,
		RequestType: requestType,
	}, c.SecretKey)

	body := createRequest{
		PartnerCode: c.PartnerCode,
		PartnerName: c.PartnerName,
		StoreID:     c.StoreID,
		RequestID:   in.RequestID,
		Amount:      in.AmountVND,
		OrderID:     in.OrderID,
		OrderInfo:   in.OrderInfo,
		RedirectURL: in.ReturnURL,
		IpnURL:      in.NotifyURL,
		Lang:        c.Lang,
		ExtraData:   extraData,
		RequestType: requestType,
		Signature:   signature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("momo: marshal create request: %v", err)
		return false, "", "Không tạo được yêu cầu thanh toán."
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+createEndpointPath, bytes.NewReader(payload))
	if err != nil {
		log.Printf("momo: build create request: %v", err)
		return false, "", "Không tạo được yêu cầu thanh toán."
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Printf("momo: create request failed: %v", err)
		return false, "", "Không kết nối được cổng thanh toán MoMo."
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out createResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("momo: unparsable create response (status=%d): %v", resp.StatusCode, err)
		return false, "", "Phản hồi từ cổng thanh toán không hợp lệ."
	}

	if out.ResultCode == ResultCodeSuccess && out.PayURL != "" {
		return true, out.PayURL, ""
	}

	msg := strings.TrimSpace(out.Message)
	if msg == "" {
		msg = "Không tạo được link thanh toán MoMo."
	}
	log.Printf("momo: create rejected: resultCode=%d message=%q", out.ResultCode, out.Message)
	return false, "", msg
}
