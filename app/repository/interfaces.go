package repository

import (
	"github.com/hnthao/elearn/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// CourseRepository defines the interface for course-related database operations
type CourseRepository interface {
	Create(course *models.Course) error
	GetByID(id uint) (*models.Course, error)
	GetBySlug(slug string) (*models.Course, error)
	GetPublished(offset, limit int) ([]models.Course, error)
	Update(course *models.Course) error
	Count() (int64, error)
}

// OrderRepository defines the interface for the order ledger. Orders are
// never deleted, only transitioned.
type OrderRepository interface {
	Create(order *models.Order) error
	Update(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByMomoOrderID(momoOrderID string) (*models.Order, error)
	GetByUserID(userID uint) ([]models.Order, error)
	GetPaidByUserAndCourse(userID, courseID uint) ([]models.Order, error)
	HasActiveEntitlement(userID uint, windowDays int) (bool, error)

	// CompletePayment performs the single terminal write for an order as a
	// conditional update guarded on the Pending status. It returns true
	// when this call won the transition; false when the order was already
	// terminal (or missing), in which case nothing was written.
	CompletePayment(orderID uint, status, transID string, resultCode int, message string) (bool, error)

	// CreateWebhookEventIfNotExists appends an IPN delivery to the event
	// log, deduplicated on (provider, provider_event_id). Returns whether
	// a new row was created plus the stored row.
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User   UserRepository
	Course CourseRepository
	Order  OrderRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:   NewUserRepository(db),
		Course: NewCourseRepository(db),
		Order:  NewOrderRepository(db),
	}
}
