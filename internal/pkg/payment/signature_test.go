package payment

import (
	"strings"
	"testing"
)

func sampleCreateFields() CreateSignFields {
	return CreateSignFields{
		AccessKey:   "F8BBA842ECF85",
		Amount:      1500000,
		ExtraData:   "",
		IpnURL:      "https://elearn.local/webhooks/momo",
		OrderID:     "EL42",
		OrderInfo:   "Thanh toan khoa hoc IELTS",
		PartnerCode: "MOMO",
		RedirectURL: "https://elearn.local/payment/momo/return",
		RequestID:   "req-1",
		RequestType: "payWithATM",
	}
}

const sampleSecret = "K951B6PE1waDMi640xX08PD3vg6EkVlz"

func TestCanonicalCreateString_FieldOrder(t *testing.T) {
	t.Parallel()

	got := CanonicalCreateString(sampleCreateFields())
	want := "accessKey=F8BBA842ECF85" +
		"&amount=1500000" +
		"&extraData=" +
		"&ipnUrl=https://elearn.local/webhooks/momo" +
		"&orderId=EL42" +
		"&orderInfo=Thanh toan khoa hoc IELTS" +
		"&partnerCode=MOMO" +
		"&redirectUrl=https://elearn.local/payment/momo/return" +
		"&requestId=req-1" +
		"&requestType=payWithATM"

	if got != want {
		t.Fatalf("canonical string mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSignCreateRequest_KnownVector(t *testing.T) {
	t.Parallel()

	got := SignCreateRequest(sampleCreateFields(), sampleSecret)
	want := "845f5fbdf9c702171440d13123c35492724febb1c2f6b553a4a07325a3f2d2f9"
	if got != want {
		t.Fatalf("signature mismatch: got %s want %s", got, want)
	}
}

func TestSignCreateRequest_Deterministic(t *testing.T) {
	t.Parallel()

	first := SignCreateRequest(sampleCreateFields(), sampleSecret)
	second := SignCreateRequest(sampleCreateFields(), sampleSecret)
	if first != second {
		t.Fatalf("same input produced different signatures: %s vs %s", first, second)
	}

	if first != strings.ToLower(first) {
		t.Fatalf("signature must be lowercase hex, got %s", first)
	}

	other := SignCreateRequest(sampleCreateFields(), "different-secret")
	if first == other {
		t.Fatalf("different secrets produced the same signature")
	}

	fields := sampleCreateFields()
	fields.Amount++
	changed := SignCreateRequest(fields, sampleSecret)
	if first == changed {
		t.Fatalf("different amount produced the same signature")
	}
}

func sampleNotification() *Notification {
	return &Notification{
		PartnerCode:  "MOMO",
		OrderID:      "EL42",
		RequestID:    "req-1",
		Amount:       1500000,
		OrderInfo:    "Thanh toan khoa hoc IELTS",
		OrderType:    "momo_wallet",
		TransID:      "MOMO999",
		ResultCode:   0,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1715000000000,
		ExtraData:    "",
	}
}

const sampleNotificationSignature = "51e87b8c514047ee548b4e02d7bac907740f566abd5fb8289f2affe2429a5d56"

func TestVerifyNotificationSignature(t *testing.T) {
	t.Parallel()

	n := sampleNotification()
	n.Signature = sampleNotificationSignature
	if !VerifyNotificationSignature(n, "F8BBA842ECF85", sampleSecret) {
		t.Fatalf("expected valid signature to verify")
	}

	// Uppercase hex must verify too.
	n.Signature = strings.ToUpper(sampleNotificationSignature)
	if !VerifyNotificationSignature(n, "F8BBA842ECF85", sampleSecret) {
		t.Fatalf("expected uppercase signature to verify")
	}
}

func TestVerifyNotificationSignature_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(n *Notification)
		secret string
	}{
		{
			name:   "empty signature",
			mutate: func(n *Notification) { n.Signature = "" },
			secret: sampleSecret,
		},
		{
			name:   "non-hex signature",
			mutate: func(n *Notification) { n.Signature = "not-hex" },
			secret: sampleSecret,
		},
		{
			name: "tampered amount",
			mutate: func(n *Notification) {
				n.Signature = sampleNotificationSignature
				n.Amount = 9999999
			},
			secret: sampleSecret,
		},
		{
			name:   "empty secret",
			mutate: func(n *Notification) { n.Signature = sampleNotificationSignature },
			secret: "",
		},
		{
			name: "wrong secret",
			mutate: func(n *Notification) {
				n.Signature = sampleNotificationSignature
			},
			secret: "another-secret",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := sampleNotification()
			tc.mutate(n)
			if VerifyNotificationSignature(n, "F8BBA842ECF85", tc.secret) {
				t.Fatalf("expected verification to fail")
			}
		})
	}
}
