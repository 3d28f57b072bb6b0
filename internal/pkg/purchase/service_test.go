package purchase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hnthao/elearn/app/models"
	"github.com/hnthao/elearn/internal/pkg/payment"
)

type fakeOrders struct {
	created []*models.Order
	updates int
	nextID  uint
	paid    []models.Order
}

func (f *fakeOrders) Create(order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrders) Update(order *models.Order) error {
	f.updates++
	return nil
}

func (f *fakeOrders) GetByID(id uint) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrders) GetByMomoOrderID(momoOrderID string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrders) GetByUserID(userID uint) ([]models.Order, error) { return nil, nil }

func (f *fakeOrders) GetPaidByUserAndCourse(userID, courseID uint) ([]models.Order, error) {
	return f.paid, nil
}

func (f *fakeOrders) HasActiveEntitlement(userID uint, windowDays int) (bool, error) {
	return false, nil
}

func (f *fakeOrders) CompletePayment(orderID uint, status, transID string, resultCode int, message string) (bool, error) {
	return false, nil
}

func (f *fakeOrders) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	return true, event, nil
}

func (f *fakeOrders) MarkWebhookProcessed(id uint, processingError string) error { return nil }

type fakeCourses struct {
	courses map[uint]*models.Course
}

func (f *fakeCourses) Create(course *models.Course) error { return nil }
func (f *fakeCourses) Update(course *models.Course) error { return nil }
func (f *fakeCourses) Count() (int64, error)              { return 0, nil }

func (f *fakeCourses) GetByID(id uint) (*models.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCourses) GetBySlug(slug string) (*models.Course, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourses) GetPublished(offset, limit int) ([]models.Course, error) { return nil, nil }

type fakeGateway struct {
	ok      bool
	payURL  string
	message string

	lastInput payment.CreateInput
	onCall    func()
}

func (f *fakeGateway) CreatePayment(ctx context.Context, in payment.CreateInput) (bool, string, string) {
	f.lastInput = in
	if f.onCall != nil {
		f.onCall()
	}
	return f.ok, f.payURL, f.message
}

func testService(orders *fakeOrders, courses *fakeCourses, gw *fakeGateway) *Service {
	return NewService(orders, courses, gw, Config{
		ExchangeRateUSDToVND: 25000,
		ReturnURL:            "https://elearn.local/payment/momo/return",
		NotifyURL:            "https://elearn.local/webhooks/momo",
	})
}

func ieltsCourse() *models.Course {
	return &models.Course{ID: 3, Title: "Luyện Thi IELTS 6.5+", PriceUSD: 19.99, IsPublished: true}
}

func TestCheckout_Success(t *testing.T) {
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: ieltsCourse()}}
	gw := &fakeGateway{ok: true, payURL: "https://test-payment.momo.vn/pay/abc"}

	payURL, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 3, "captureWallet")
	require.NoError(t, err)
	assert.Equal(t, "https://test-payment.momo.vn/pay/abc", payURL)

	require.Len(t, orders.created, 1)
	order := orders.created[0]
	assert.Equal(t, uint(7), order.UserID)
	assert.Equal(t, uint(3), order.CourseID)
	assert.Equal(t, int64(499750), order.AmountVND, "19.99 USD at 25000 must round to 499750 VND")
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "EL1", order.MomoOrderID)
	assert.NotEmpty(t, order.MomoRequestID)

	assert.Equal(t, "EL1", gw.lastInput.OrderID)
	assert.Equal(t, order.MomoRequestID, gw.lastInput.RequestID)
	assert.Equal(t, int64(499750), gw.lastInput.AmountVND)
	assert.Equal(t, "captureWallet", gw.lastInput.RequestType)
	assert.Contains(t, gw.lastInput.OrderInfo, "Luyện Thi IELTS 6.5+")
}

func TestCheckout_IdentifiersPersistedBeforeGatewayCall(t *testing.T) {
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: ieltsCourse()}}

	updatesAtCall := -1
	gw := &fakeGateway{ok: true, payURL: "https://pay.example/x"}
	gw.onCall = func() { updatesAtCall = orders.updates }

	_, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 1, updatesAtCall, "gateway identifiers must be written before the create call")
}

func TestCheckout_AlreadyOwned(t *testing.T) {
	orders := &fakeOrders{paid: []models.Order{{ID: 1, Status: models.OrderStatusPaid}}}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: ieltsCourse()}}
	gw := &fakeGateway{ok: true}

	_, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 3, "payWithATM")
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.Empty(t, orders.created, "no order may be created for an owned course")
}

func TestCheckout_CourseNotFound(t *testing.T) {
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{}}
	gw := &fakeGateway{ok: true}

	_, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 99, "payWithATM")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Empty(t, orders.created)
}

func TestCheckout_FreeCourseIsNotSellable(t *testing.T) {
	free := ieltsCourse()
	free.PriceUSD = 0
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: free}}
	gw := &fakeGateway{ok: true}

	_, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 3, "payWithATM")
	assert.ErrorIs(t, err, ErrNotPriced)
	assert.Empty(t, orders.created, "no order row may exist for a non-positive amount")
}

func TestCheckout_GatewayFailureLeavesOrderPending(t *testing.T) {
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: ieltsCourse()}}
	gw := &fakeGateway{ok: false, message: "Không kết nối được cổng thanh toán MoMo."}

	_, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 3, "payWithATM")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Không kết nối được cổng thanh toán MoMo.", gwErr.Message)

	require.Len(t, orders.created, 1)
	assert.Equal(t, models.OrderStatusPending, orders.created[0].Status)
	assert.Equal(t, "EL1", orders.created[0].MomoOrderID)
}

func TestCheckout_UnknownMethodIsCoerced(t *testing.T) {
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: ieltsCourse()}}
	gw := &fakeGateway{ok: true, payURL: "https://pay.example/x"}

	_, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 3, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, payment.DefaultMethod, gw.lastInput.RequestType)
}

func TestCheckout_AmountFrozenAgainstLaterPriceChange(t *testing.T) {
	course := ieltsCourse()
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: course}}
	gw := &fakeGateway{ok: true, payURL: "https://pay.example/x"}

	_, err := testService(orders, courses, gw).Checkout(context.Background(), 7, 3, "payWithATM")
	require.NoError(t, err)

	course.PriceUSD = 99.99

	require.Len(t, orders.created, 1)
	assert.Equal(t, int64(499750), orders.created[0].AmountVND,
		"a price edit must not touch an existing order")
}

func TestCheckout_EachAttemptGetsFreshRequestID(t *testing.T) {
	orders := &fakeOrders{}
	courses := &fakeCourses{courses: map[uint]*models.Course{3: ieltsCourse()}}
	gw := &fakeGateway{ok: true, payURL: "https://pay.example/x"}
	svc := testService(orders, courses, gw)

	_, err := svc.Checkout(context.Background(), 7, 3, "payWithATM")
	require.NoError(t, err)
	first := gw.lastInput.RequestID

	_, err = svc.Checkout(context.Background(), 7, 3, "payWithATM")
	require.NoError(t, err)
	second := gw.lastInput.RequestID

	assert.NotEqual(t, first, second)
}

func TestConfigErrors(t *testing.T) {
	assert.EqualError(t, &GatewayError{Message: "msg"}, "msg")
	assert.True(t, errors.Is(ErrAlreadyOwned, ErrAlreadyOwned))
}
