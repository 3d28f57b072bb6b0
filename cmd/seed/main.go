package main

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/hnthao/elearn/app/models"
	"github.com/hnthao/elearn/app/repository"
	"github.com/hnthao/elearn/internal/pkg/database"
	"github.com/hnthao/elearn/internal/pkg/env"
)

// Seeds a demo account and a priced course catalog for local runs.
// Safe to run repeatedly: existing rows are left alone.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())

	factory := repository.GetGlobalFactory()

	seedUser(factory)
	seedCourses(factory)

	log.Println("Seed finished")
}

func seedUser(factory *repository.Factory) {
	users := factory.GetUserRepository()

	const email = "demo@elearn.local"
	if _, err := users.GetByEmail(email); err == nil {
		log.Printf("Seed user %s already exists", email)
		return
	}

	user, err := models.CreateUser("Demo Học Viên", email, "demo1234")
	if err != nil {
		log.Fatalf("Failed to build seed user: %v", err)
	}
	if err := users.Create(user); err != nil {
		log.Fatalf("Failed to create seed user: %v", err)
	}
	log.Printf("Created seed user %s (id %d)", email, user.ID)
}

func seedCourses(factory *repository.Factory) {
	courses := factory.GetCourseRepository()

	catalog := []models.Course{
		{
			Title:       "Tiếng Anh Giao Tiếp Cơ Bản",
			Slug:        "tieng-anh-giao-tiep-co-ban",
			Description: "Khóa học giao tiếp hàng ngày cho người mới bắt đầu.",
			PriceUSD:    19.99,
			Level:       "beginner",
			IsPublished: true,
		},
		{
			Title:       "Luyện Thi IELTS 6.5+",
			Slug:        "luyen-thi-ielts-65",
			Description: "Chiến lược làm bài và luyện đề cho mục tiêu 6.5 trở lên.",
			PriceUSD:    49.99,
			Level:       "intermediate",
			IsPublished: true,
		},
		{
			Title:       "Tiếng Anh Thương Mại",
			Slug:        "tieng-anh-thuong-mai",
			Description: "Email, họp và thuyết trình trong môi trường công sở.",
			PriceUSD:    39.99,
			Level:       "advanced",
			IsPublished: true,
		},
	}

	for i := range catalog {
		course := &catalog[i]

		_, err := courses.GetBySlug(course.Slug)
		if err == nil {
			log.Printf("Seed course %q already exists", course.Slug)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to look up course %q: %v", course.Slug, err)
		}

		if err := course.Validate(); err != nil {
			log.Fatalf("Seed course %q is invalid: %v", course.Slug, err)
		}
		if err := courses.Create(course); err != nil {
			log.Fatalf("Failed to create course %q: %v", course.Slug, err)
		}
		log.Printf("Created course %q (id %d)", course.Slug, course.ID)
	}
}
