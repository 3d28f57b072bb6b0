package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// The signing strings below are a wire-format contract with MoMo: the
// exact field set and field order must match what the gateway builds on
// its side. Neither is sorted or caller-chosen; do not reorder.

// CreateSignFields are the request fields covered by the signature of the
// v2 create call.
type CreateSignFields struct {
	AccessKey   string
	Amount      int64
	ExtraData   string
	IpnURL      string
	OrderID     string
	OrderInfo   string
	PartnerCode string
	RedirectURL string
	RequestID   string
	RequestType string
}

// CanonicalCreateString concatenates the create-request fields as
// key=value pairs joined with "&" in the gateway's documented order.
func CanonicalCreateString(f CreateSignFields) string {
	pairs := [][2]string{
		{"accessKey", f.AccessKey},
		{"amount", strconv.FormatInt(f.Amount, 10)},
		{"extraData", f.ExtraData},
		{"ipnUrl", f.IpnURL},
		{"orderId", f.OrderID},
		{"orderInfo", f.OrderInfo},
		{"partnerCode", f.PartnerCode},
		{"redirectUrl", f.RedirectURL},
		{"requestId", f.RequestID},
		{"requestType", f.RequestType},
	}
	return joinPairs(pairs)
}

// SignCreateRequest returns the lowercase-hex HMAC-SHA256 signature over
// the canonical create string. Pure and deterministic.
func SignCreateRequest(f CreateSignFields, secretKey string) string {
	return hmacSHA256Hex([]byte(CanonicalCreateString(f)), []byte(secretKey))
}

// CanonicalNotificationString builds the signing string MoMo uses for
// outcome notifications. Fields that were absent from the payload
// contribute an empty value, which is how the gateway encodes them too.
func CanonicalNotificationString(n *Notification, accessKey string) string {
	pairs := [][2]string{
		{"accessKey", accessKey},
		{"amount", strconv.FormatInt(n.Amount, 10)},
		{"extraData", n.ExtraData},
		{"message", n.Message},
		{"orderId", n.OrderID},
		{"orderInfo", n.OrderInfo},
		{"orderType", n.OrderType},
		{"partnerCode", n.PartnerCode},
		{"payType", n.PayType},
		{"requestId", n.RequestID},
		{"responseTime", strconv.FormatInt(n.ResponseTime, 10)},
		{"resultCode", strconv.Itoa(n.ResultCode)},
		{"transId", n.TransID},
	}
	return joinPairs(pairs)
}

// VerifyNotificationSignature checks the signature carried by an inbound
// notification in constant time. The result is recorded on the webhook
// event log; the reconciliation decision never depends on it, matching
// how the gateway's sandbox behaves with unsigned test callbacks.
func VerifyNotificationSignature(n *Notification, accessKey, secretKey string) bool {
	sig := strings.TrimSpace(n.Signature)
	if sig == "" || strings.TrimSpace(secretKey) == "" {
		return false
	}
	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(CanonicalNotificationString(n, accessKey)))
	return hmac.Equal(mac.Sum(nil), decoded)
}

func joinPairs(pairs [][2]string) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+p[1])
	}
	return strings.Join(parts, "&")
}

func hmacSHA256Hex(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
