package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"postfeed/pkg/cache"
	"postfeed/pkg/config"
	"postfeed/pkg/database"
	"postfeed/pkg/logger"
	"postfeed/pkg/models"
	"postfeed/pkg/s3"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seeder struct {
	db          *gorm.DB
	s3Client    *s3.Client
	redisClient *redis.Client
	httpClient  *http.Client
	log         *logger.Logger
}

func main() {
	var withImages bool
	flag.BoolVar(&withImages, "images", false, "Fetch cat images from cataas.com and upload them to S3")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s := &seeder{
		db:         db,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}

	if withImages {
		s.s3Client, err = s3.NewClient(cfg, log)
		if err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	}

	// Redis is only needed to invalidate cached feed pages
	s.redisClient, err = cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Failed to connect to redis: %v (cached feed pages may be stale)", err)
		s.redisClient = nil
	}

	ctx := context.Background()
	if err := s.seed(ctx); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	if err := cache.BumpFeedVersion(ctx, s.redisClient); err != nil {
		log.Warn("Failed to bump feed version: %v", err)
	}

	log.Info("Database seeded successfully!")
}

func (s *seeder) seed(ctx context.Context) error {
	testUsers := []struct {
		email    string
		username string
		password string
	}{
		{"alice@test.com", "alice", "password123"},
		{"bob@test.com", "bob", "password123"},
		{"charlie@test.com", "charlie", "password123"},
		{"diana@test.com", "diana", "password123"},
		{"eve@test.com", "eve", "password123"},
	}

	users := make([]models.User, 0, len(testUsers))
	for _, userData := range testUsers {
		var existing models.User
		err := s.db.WithContext(ctx).Where("email = ? OR username = ?", userData.email, userData.username).First(&existing).Error
		if err == nil {
			s.log.Info("User %s already exists, skipping", existing.Username)
			users = append(users, existing)
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(userData.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := models.User{
			Email:    userData.email,
			Username: userData.username,
			Password: string(hashedPassword),
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			s.log.Error("Failed to create user %s: %v", user.Username, err)
			continue
		}

		s.log.Info("Created user: %s (%s)", user.Username, user.Email)
		users = append(users, user)
	}

	var posts []models.Post
	for i, user := range users {
		postsCount := 2 + (i % 3)
		for j := 0; j < postsCount; j++ {
			post, err := s.createPost(ctx, user, j)
			if err != nil {
				s.log.Error("Failed to create post %d for user %s: %v", j+1, user.Username, err)
				continue
			}
			posts = append(posts, *post)
			// Distinct created_at values keep the feed order readable
			time.Sleep(10 * time.Millisecond)
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, post := range posts {
			for k := 1; k <= 2; k++ {
				author := users[(i+k)%len(users)]
				if author.ID == post.OwnerID {
					continue
				}

				comment := models.Comment{
					Content: fmt.Sprintf("%s says hi to post #%d", author.Username, i+1),
					PostID:  post.ID,
					OwnerID: author.ID,
				}
				if err := tx.Omit("Post", "Owner").Create(&comment).Error; err != nil {
					return fmt.Errorf("failed to create comment: %w", err)
				}

				// The post owner likes every comment on their post
				commentID := comment.ID
				if err := tx.Omit("User").Create(&models.Like{CommentID: &commentID, LikedBy: post.OwnerID}).Error; err != nil {
					return fmt.Errorf("failed to like comment: %w", err)
				}
			}

			for k, liker := range users {
				if k%2 != i%2 || liker.ID == post.OwnerID {
					continue
				}
				postID := post.ID
				if err := tx.Omit("User").Create(&models.Like{PostID: &postID, LikedBy: liker.ID}).Error; err != nil {
					return fmt.Errorf("failed to like post: %w", err)
				}
			}
		}

		s.log.Info("Created comments and likes for %d posts", len(posts))
		return nil
	})
}

func (s *seeder) createPost(ctx context.Context, owner models.User, index int) (*models.Post, error) {
	post := &models.Post{
		Content: fmt.Sprintf("Post #%d by %s", index+1, owner.Username),
		OwnerID: owner.ID,
	}

	if s.s3Client != nil {
		imageURL, err := s.uploadCatImage(ctx, owner, index)
		if err != nil {
			s.log.Warn("Skipping image for post #%d by %s: %v", index+1, owner.Username, err)
		} else {
			post.ImageURL = imageURL
		}
	}

	if err := s.db.WithContext(ctx).Omit("Owner").Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.log.Info("Created post: %q by %s", post.Content, owner.Username)
	return post, nil
}

func (s *seeder) uploadCatImage(ctx context.Context, owner models.User, index int) (string, error) {
	cataasURL := "https://cataas.com/cat"
	if index%2 == 0 {
		cataasURL += fmt.Sprintf("/says/Hello from %s", owner.Username)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cataasURL, nil)
	if err != nil {
		return "", err
	}

	s.log.Info("Fetching cat image from %s", cataasURL)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch cat image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cataas API returned status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if len(imageData) == 0 {
		return "", fmt.Errorf("received empty image data")
	}

	fileKey := fmt.Sprintf("posts/%s/seed_%d.jpg", owner.ID, index)
	imageURL, err := s.s3Client.UploadFile(ctx, fileKey, bytes.NewReader(imageData), "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	s.log.Info("Image uploaded successfully: %s", imageURL)
	return imageURL, nil
}
