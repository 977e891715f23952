package persistent

import (
	"postfeed/pkg/models"
	"postfeed/services/post/internal/entity"
)

func ToPostEntity(m *models.Post) *entity.Post {
	if m == nil {
		return nil
	}

	return &entity.Post{
		ID:        m.ID,
		Content:   m.Content,
		ImageURL:  m.ImageURL,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToPostModel(e *entity.Post) *models.Post {
	if e == nil {
		return nil
	}

	return &models.Post{
		ID:        e.ID,
		Content:   e.Content,
		ImageURL:  e.ImageURL,
		OwnerID:   e.OwnerID,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
