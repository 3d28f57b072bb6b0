package controllers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/hnthao/elearn/app/models"
	"github.com/hnthao/elearn/app/repository"
	"github.com/hnthao/elearn/internal/pkg/entitlements"
	"github.com/hnthao/elearn/internal/pkg/payment"
	"github.com/hnthao/elearn/internal/pkg/purchase"
	"github.com/hnthao/elearn/internal/pkg/usercontext"
)

const checkoutTimeout = 20 * time.Second

var (
	courseRepo      repository.CourseRepository
	courseOrderRepo repository.OrderRepository
	checkoutService *purchase.Service
)

// InitializeCourseController wires the course handlers to the global
// repository factory and builds the checkout service from the
// environment.
func InitializeCourseController() {
	factory := repository.GetGlobalFactory()
	courseRepo = factory.GetCourseRepository()
	courseOrderRepo = factory.GetOrderRepository()
	checkoutService = purchase.NewService(
		factory.GetOrderRepository(),
		factory.GetCourseRepository(),
		payment.NewClientFromEnv(),
		purchase.ConfigFromEnv(),
	)
}

// SetCourseDependencies swaps the backing dependencies; used by tests.
func SetCourseDependencies(courses repository.CourseRepository, orders repository.OrderRepository, svc *purchase.Service) {
	courseRepo = courses
	courseOrderRepo = orders
	checkoutService = svc
}

// HandleCourseIndex lists the published courses.
func HandleCourseIndex(c *fiber.Ctx) error {
	courses, err := courseRepo.GetPublished(0, 100)
	if err != nil {
		log.Printf("courses: list published failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Không tải được danh sách khóa học.")
	}

	userCtx := usercontext.GetUserContext(c)
	hasPremium := false
	if userCtx.IsLoggedIn {
		hasPremium = entitlements.HasActivePremium(courseOrderRepo, userCtx.UserID)
	}

	return c.Render("courses/index", fiber.Map{
		"Title":      "Khóa học",
		"Courses":    courses,
		"IsLoggedIn": userCtx.IsLoggedIn,
		"HasPremium": hasPremium,
		"Flash":      flash.Get(c),
	})
}

// HandleCourseDetail shows one course with its purchase state for the
// current user.
func HandleCourseDetail(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khóa học.")
	}

	course, err := courseRepo.GetByID(id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy khóa học.")
	}

	userCtx := usercontext.GetUserContext(c)
	owned := false
	if userCtx.IsLoggedIn {
		paid, err := courseOrderRepo.GetPaidByUserAndCourse(userCtx.UserID, course.ID)
		if err != nil {
			log.Printf("courses: paid lookup for user %d course %d failed: %v", userCtx.UserID, course.ID, err)
		}
		owned = len(paid) > 0
	}

	return c.Render("courses/detail", fiber.Map{
		"Title":      course.Title,
		"Course":     course,
		"IsLoggedIn": userCtx.IsLoggedIn,
		"Owned":      owned,
		"Methods":    []string{payment.MethodATM, payment.MethodWallet, payment.MethodCreditCard},
		"CsrfToken":  c.Locals("csrf"),
		"Flash":      flash.Get(c),
	})
}

// HandleCheckout starts a purchase and redirects the buyer to the
// external pay page. Every failure comes back to a course page with a
// flash message; nothing here renders on its own.
func HandleCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	courseID, err := parseIDParam(c, "id")
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Không tìm thấy khóa học."}
		return flash.WithError(c, fm).Redirect("/courses")
	}
	detailPath := fmt.Sprintf("/courses/%d", courseID)

	ctx, cancel := context.WithTimeout(c.Context(), checkoutTimeout)
	defer cancel()

	payURL, err := checkoutService.Checkout(ctx, userCtx.UserID, courseID, c.FormValue("paymentMethod"))
	if err == nil {
		return c.Redirect(payURL, fiber.StatusSeeOther)
	}

	switch {
	case err == purchase.ErrAlreadyOwned:
		fm := fiber.Map{"type": "info", "message": "Bạn đã sở hữu khóa học này."}
		return flash.WithInfo(c, fm).Redirect("/courses/my")
	case err == purchase.ErrCourseNotFound:
		fm := fiber.Map{"type": "error", "message": "Không tìm thấy khóa học."}
		return flash.WithError(c, fm).Redirect("/courses")
	case err == purchase.ErrNotPriced:
		fm := fiber.Map{"type": "error", "message": "Khóa học chưa có giá bán."}
		return flash.WithError(c, fm).Redirect(detailPath)
	}

	if gwErr, ok := err.(*purchase.GatewayError); ok {
		fm := fiber.Map{"type": "error", "message": gwErr.Message}
		return flash.WithError(c, fm).Redirect(detailPath)
	}

	log.Printf("courses: checkout for user %d course %d failed: %v", userCtx.UserID, courseID, err)
	fm := fiber.Map{"type": "error", "message": "Không tạo được đơn hàng, vui lòng thử lại."}
	return flash.WithError(c, fm).Redirect(detailPath)
}

// HandleMyCourses lists the courses the user has paid for.
func HandleMyCourses(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	orders, err := courseOrderRepo.GetByUserID(userCtx.UserID)
	if err != nil {
		log.Printf("courses: order history for user %d failed: %v", userCtx.UserID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Không tải được khóa học của bạn.")
	}

	paid := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == models.OrderStatusPaid {
			paid = append(paid, o)
		}
	}

	return c.Render("courses/my", fiber.Map{
		"Title":      "Khóa học của tôi",
		"Orders":     paid,
		"IsLoggedIn": userCtx.IsLoggedIn,
		"HasPremium": entitlements.HasActivePremium(courseOrderRepo, userCtx.UserID),
		"Flash":      flash.Get(c),
	})
}
