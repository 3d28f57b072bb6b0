package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Outcome result codes the gateway reports as a successful payment.
// 0 is the immediate-success code, 9000 means "authorized" and is settled
// on the gateway side; both complete the purchase.
const (
	ResultCodeSuccess    = 0
	ResultCodeAuthorized = 9000
)

// IsSuccessCode classifies a gateway result code. Everything outside the
// closed success set is a failure.
func IsSuccessCode(code int) bool {
	return code == ResultCodeSuccess || code == ResultCodeAuthorized
}

// Parse errors for inbound notifications. Payloads that fail here are
// rejected at the handler boundary and never reach the order store.
var (
	ErrMissingOrderID    = errors.New("notification is missing orderId")
	ErrMissingResultCode = errors.New("notification is missing resultCode")
)

// Notification is the logical outcome payload both channels deliver: the
// IPN posts it as JSON, the browser redirect carries it in the query
// string. Only OrderID and ResultCode are mandatory; the remaining fields
// are kept when present so the signature can be re-derived.
type Notification struct {
	PartnerCode  string
	OrderID      string
	RequestID    string
	Amount       int64
	OrderInfo    string
	OrderType    string
	TransID      string
	ResultCode   int
	Message      string
	PayType      string
	ResponseTime int64
	ExtraData    string
	Signature    string
}

// ipnPayload mirrors the raw JSON body. Pointer fields distinguish
// "absent" from zero values; transId arrives as a JSON number or a
// string depending on the gateway path, so the optional fields use
// tolerant types and only orderId/resultCode can fail a delivery.
type ipnPayload struct {
	PartnerCode  *string    `json:"partnerCode"`
	OrderID      *string    `json:"orderId"`
	RequestID    *string    `json:"requestId"`
	Amount       flexInt64  `json:"amount"`
	OrderInfo    *string    `json:"orderInfo"`
	OrderType    *string    `json:"orderType"`
	TransID      flexString `json:"transId"`
	ResultCode   *int       `json:"resultCode"`
	Message      *string    `json:"message"`
	PayType      *string    `json:"payType"`
	ResponseTime flexInt64  `json:"responseTime"`
	ExtraData    *string    `json:"extraData"`
	Signature    *string    `json:"signature"`
}

// flexString decodes a JSON string or bare number into a string.
// Anything else (null, objects, arrays) becomes empty instead of
// failing the whole payload.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	token := strings.TrimSpace(string(data))
	if token == "" || token == "null" {
		*s = ""
		return nil
	}
	if token[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = flexString(v)
		return nil
	}
	if token[0] == '{' || token[0] == '[' {
		*s = ""
		return nil
	}
	*s = flexString(token)
	return nil
}

// flexInt64 decodes a JSON number or a numeric string, degrading to
// zero on anything it cannot read.
type flexInt64 int64

func (n *flexInt64) UnmarshalJSON(data []byte) error {
	token := strings.TrimSpace(string(data))
	token = strings.Trim(token, `"`)
	v, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt64(v)
	return nil
}

// ParseIPN decodes a server-to-server notification body. Malformed JSON
// and payloads without the mandatory correlation fields are typed errors,
// not defaults.
func ParseIPN(body []byte) (*Notification, error) {
	var raw ipnPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid notification JSON: %w", err)
	}

	if raw.OrderID == nil || strings.TrimSpace(*raw.OrderID) == "" {
		return nil, ErrMissingOrderID
	}
	if raw.ResultCode == nil {
		return nil, ErrMissingResultCode
	}

	n := &Notification{
		OrderID:    strings.TrimSpace(*raw.OrderID),
		ResultCode: *raw.ResultCode,
	}
	if raw.PartnerCode != nil {
		n.PartnerCode = *raw.PartnerCode
	}
	if raw.RequestID != nil {
		n.RequestID = strings.TrimSpace(*raw.RequestID)
	}
	if raw.OrderInfo != nil {
		n.OrderInfo = *raw.OrderInfo
	}
	if raw.OrderType != nil {
		n.OrderType = *raw.OrderType
	}
	if raw.Message != nil {
		n.Message = *raw.Message
	}
	if raw.PayType != nil {
		n.PayType = *raw.PayType
	}
	if raw.ExtraData != nil {
		n.ExtraData = *raw.ExtraData
	}
	if raw.Signature != nil {
		n.Signature = strings.TrimSpace(*raw.Signature)
	}
	n.Amount = int64(raw.Amount)
	n.ResponseTime = int64(raw.ResponseTime)
	n.TransID = strings.TrimSpace(string(raw.TransID))
	if n.TransID == "0" {
		n.TransID = ""
	}

	return n, nil
}

// ParseReturnQuery builds a Notification from redirect query parameters.
// The getter indirection keeps this parser independent of the HTTP layer.
func ParseReturnQuery(get func(key string) string) (*Notification, error) {
	orderID := strings.TrimSpace(get("orderId"))
	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	codeRaw := strings.TrimSpace(get("resultCode"))
	if codeRaw == "" {
		return nil, ErrMissingResultCode
	}
	code, err := strconv.Atoi(codeRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid resultCode %q: %w", codeRaw, err)
	}

	n := &Notification{
		PartnerCode: get("partnerCode"),
		OrderID:     orderID,
		RequestID:   strings.TrimSpace(get("requestId")),
		OrderInfo:   get("orderInfo"),
		OrderType:   get("orderType"),
		TransID:     strings.TrimSpace(get("transId")),
		ResultCode:  code,
		Message:     get("message"),
		PayType:     get("payType"),
		ExtraData:   get("extraData"),
		Signature:   strings.TrimSpace(get("signature")),
	}
	if v, err := strconv.ParseInt(strings.TrimSpace(get("amount")), 10, 64); err == nil {
		n.Amount = v
	}
	if v, err := strconv.ParseInt(strings.TrimSpace(get("responseTime")), 10, 64); err == nil {
		n.ResponseTime = v
	}

	return n, nil
}
