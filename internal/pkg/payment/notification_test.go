package payment

import (
	"errors"
	"testing"
)

func TestIsSuccessCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want bool
	}{
		{0, true},
		{9000, true},
		{1, false},
		{-1, false},
		{1006, false},
		{9001, false},
	}

	for _, tc := range tests {
		if got := IsSuccessCode(tc.code); got != tc.want {
			t.Fatalf("IsSuccessCode(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestParseIPN_FullPayload(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"partnerCode": "MOMO",
		"orderId": "EL42",
		"requestId": "req-1",
		"amount": 1500000,
		"orderInfo": "Thanh toan khoa hoc IELTS",
		"orderType": "momo_wallet",
		"transId": 2147483648,
		"resultCode": 0,
		"message": "Successful.",
		"payType": "qr",
		"responseTime": 1715000000000,
		"extraData": "",
		"signature": "abc123"
	}`)

	n, err := ParseIPN(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n.OrderID != "EL42" {
		t.Fatalf("orderId = %q, want EL42", n.OrderID)
	}
	if n.ResultCode != 0 {
		t.Fatalf("resultCode = %d, want 0", n.ResultCode)
	}
	if n.Amount != 1500000 {
		t.Fatalf("amount = %d, want 1500000", n.Amount)
	}
	if n.TransID != "2147483648" {
		t.Fatalf("transId = %q, want 2147483648", n.TransID)
	}
	if n.ResponseTime != 1715000000000 {
		t.Fatalf("responseTime = %d, want 1715000000000", n.ResponseTime)
	}
	if n.Message != "Successful." {
		t.Fatalf("message = %q", n.Message)
	}
	if n.Signature != "abc123" {
		t.Fatalf("signature = %q", n.Signature)
	}
}

func TestParseIPN_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "missing orderId",
			body:    `{"resultCode": 0}`,
			wantErr: ErrMissingOrderID,
		},
		{
			name:    "blank orderId",
			body:    `{"orderId": "   ", "resultCode": 0}`,
			wantErr: ErrMissingOrderID,
		},
		{
			name:    "missing resultCode",
			body:    `{"orderId": "EL42"}`,
			wantErr: ErrMissingResultCode,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIPN([]byte(tc.body))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParseIPN_MalformedJSON(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "not json", `{"orderId": `} {
		if _, err := ParseIPN([]byte(body)); err == nil {
			t.Fatalf("expected error for body %q", body)
		}
	}
}

func TestParseIPN_StringTransID(t *testing.T) {
	t.Parallel()

	n, err := ParseIPN([]byte(`{"orderId": "EL42", "resultCode": 0, "transId": "MOMO999"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.TransID != "MOMO999" {
		t.Fatalf("transId = %q, want MOMO999", n.TransID)
	}
	if n.OrderID != "EL42" || n.ResultCode != 0 {
		t.Fatalf("orderId = %q resultCode = %d", n.OrderID, n.ResultCode)
	}
	if n.Amount != 0 {
		t.Fatalf("amount = %d, want 0 when absent", n.Amount)
	}
}

func TestParseIPN_TolerantOptionalFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		body             string
		wantTransID      string
		wantAmount       int64
		wantResponseTime int64
	}{
		{
			name:        "quoted numeric fields",
			body:        `{"orderId": "EL42", "resultCode": 0, "transId": "4088878653", "amount": "1500000", "responseTime": "1715000000000"}`,
			wantTransID: "4088878653", wantAmount: 1500000, wantResponseTime: 1715000000000,
		},
		{
			name:        "non-numeric amount and responseTime",
			body:        `{"orderId": "EL42", "resultCode": 0, "transId": "MOMO999", "amount": "n/a", "responseTime": "soon"}`,
			wantTransID: "MOMO999", wantAmount: 0, wantResponseTime: 0,
		},
		{
			name:        "null and structured values",
			body:        `{"orderId": "EL42", "resultCode": 0, "transId": null, "amount": null, "responseTime": {"ms": 1}}`,
			wantTransID: "", wantAmount: 0, wantResponseTime: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := ParseIPN([]byte(tc.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.TransID != tc.wantTransID {
				t.Fatalf("transId = %q, want %q", n.TransID, tc.wantTransID)
			}
			if n.Amount != tc.wantAmount {
				t.Fatalf("amount = %d, want %d", n.Amount, tc.wantAmount)
			}
			if n.ResponseTime != tc.wantResponseTime {
				t.Fatalf("responseTime = %d, want %d", n.ResponseTime, tc.wantResponseTime)
			}
		})
	}
}

func TestParseIPN_ZeroTransIDIsEmpty(t *testing.T) {
	t.Parallel()

	n, err := ParseIPN([]byte(`{"orderId": "EL7", "resultCode": 1006, "transId": 0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.TransID != "" {
		t.Fatalf("transId = %q, want empty for failed payment", n.TransID)
	}
}

func TestParseReturnQuery(t *testing.T) {
	t.Parallel()

	query := map[string]string{
		"partnerCode":  "MOMO",
		"orderId":      "EL42",
		"requestId":    "req-1",
		"amount":       "1500000",
		"orderInfo":    "Thanh toan khoa hoc IELTS",
		"transId":      "MOMO999",
		"resultCode":   "9000",
		"message":      "Authorized",
		"payType":      "qr",
		"responseTime": "1715000000000",
	}

	n, err := ParseReturnQuery(func(key string) string { return query[key] })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n.OrderID != "EL42" {
		t.Fatalf("orderId = %q", n.OrderID)
	}
	if n.ResultCode != 9000 {
		t.Fatalf("resultCode = %d, want 9000", n.ResultCode)
	}
	if n.TransID != "MOMO999" {
		t.Fatalf("transId = %q, want MOMO999", n.TransID)
	}
	if n.Amount != 1500000 {
		t.Fatalf("amount = %d", n.Amount)
	}
}

func TestParseReturnQuery_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query map[string]string
	}{
		{"empty query", map[string]string{}},
		{"missing orderId", map[string]string{"resultCode": "0"}},
		{"missing resultCode", map[string]string{"orderId": "EL42"}},
		{"non-numeric resultCode", map[string]string{"orderId": "EL42", "resultCode": "ok"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReturnQuery(func(key string) string { return tc.query[key] })
			if err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
