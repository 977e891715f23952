// Package feed assembles feed pages as a fixed pipeline of count, page, group
// and project stages executed inside one read-only transaction.
package feed

import (
	"context"
	"database/sql"
	"fmt"

	"postfeed/services/post/internal/entity"

	"gorm.io/gorm"
)

// The page CTE is paginated before any child join, so LIMIT/OFFSET count posts
// rather than joined rows. Each UNION ALL branch contributes one row per child,
// or a single NULL-padded row when the post has none of that kind.
const pageStatement = `
WITH page AS (
	SELECT p.id, p.content, p.image_url, p.owner_id, p.created_at, p.updated_at,
		u.username AS owner_username, u.email AS owner_email
	FROM posts p
	INNER JOIN users u ON u.id = p.owner_id AND u.deleted_at IS NULL
	WHERE p.deleted_at IS NULL %s
	ORDER BY p.created_at DESC, p.id DESC
	LIMIT ? OFFSET ?
)
SELECT page.id AS post_id, page.content AS post_content, page.image_url AS post_image_url,
	page.owner_id AS post_owner_id, page.created_at AS post_created_at, page.updated_at AS post_updated_at,
	page.owner_username, page.owner_email,
	'comment' AS kind,
	c.id AS child_id, c.content AS child_content, c.owner_id AS child_user_id,
	c.username AS child_username, c.email AS child_email,
	c.created_at AS child_created_at, c.updated_at AS child_updated_at
FROM page
LEFT JOIN (
	SELECT cm.id, cm.post_id, cm.content, cm.owner_id, cu.username, cu.email, cm.created_at, cm.updated_at
	FROM comments cm
	INNER JOIN users cu ON cu.id = cm.owner_id AND cu.deleted_at IS NULL
	WHERE cm.deleted_at IS NULL
) c ON c.post_id = page.id
UNION ALL
SELECT page.id, page.content, page.image_url,
	page.owner_id, page.created_at, page.updated_at,
	page.owner_username, page.owner_email,
	'like',
	l.id, NULL, l.liked_by,
	l.username, l.email,
	l.created_at, l.updated_at
FROM page
LEFT JOIN (
	SELECT lk.id, lk.post_id, lk.liked_by, lu.username, lu.email, lk.created_at, lk.updated_at
	FROM likes lk
	INNER JOIN users lu ON lu.id = lk.liked_by AND lu.deleted_at IS NULL
	WHERE lk.post_id IS NOT NULL
) l ON l.post_id = page.id
ORDER BY post_created_at DESC, post_id DESC, kind, child_created_at, child_id`

type Planner struct {
	db *gorm.DB
}

func NewPlanner(db *gorm.DB) *Planner {
	return &Planner{db: db}
}

// Page returns one page of feed items and the total number of visible posts.
// page and limit must already be normalized.
func (p *Planner) Page(ctx context.Context, page, limit int) ([]entity.FeedItem, int64, error) {
	var (
		items []entity.FeedItem
		total int64
	)

	err := p.readOnly(ctx, func(tx *gorm.DB) error {
		var err error
		if total, err = countStage(tx); err != nil {
			return err
		}
		if total == 0 || int64(page-1) >= pageCount(total, limit) {
			items = []entity.FeedItem{}
			return nil
		}

		rows, err := pageStage(tx, "", nil, limit, (page-1)*limit)
		if err != nil {
			return err
		}
		items = projectStage(groupStage(rows))
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Item returns the feed item for a single post, or gorm.ErrRecordNotFound.
func (p *Planner) Item(ctx context.Context, postID string) (*entity.FeedItem, error) {
	var item *entity.FeedItem

	err := p.readOnly(ctx, func(tx *gorm.DB) error {
		rows, err := pageStage(tx, "AND p.id = ?", []interface{}{postID}, 1, 0)
		if err != nil {
			return err
		}
		items := projectStage(groupStage(rows))
		if len(items) == 0 {
			return gorm.ErrRecordNotFound
		}
		item = &items[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// readOnly runs fn in a read-only transaction. On Postgres it is also
// REPEATABLE READ so the count and page stages share one snapshot.
func (p *Planner) readOnly(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.db.WithContext(ctx).Transaction(fn, p.txOptions())
}

func (p *Planner) txOptions() *sql.TxOptions {
	opts := &sql.TxOptions{ReadOnly: true}
	if p.db.Dialector != nil && p.db.Dialector.Name() == "postgres" {
		opts.Isolation = sql.LevelRepeatableRead
	}
	return opts
}

func pageCount(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}

func countStage(tx *gorm.DB) (int64, error) {
	var total int64
	err := tx.Table("posts").
		Joins("INNER JOIN users ON users.id = posts.owner_id AND users.deleted_at IS NULL").
		Where("posts.deleted_at IS NULL").
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count stage: %w", err)
	}
	return total, nil
}

func pageStage(tx *gorm.DB, filter string, filterArgs []interface{}, limit, offset int) ([]joinedRow, error) {
	args := append(append([]interface{}{}, filterArgs...), limit, offset)

	rows, err := tx.Raw(fmt.Sprintf(pageStatement, filter), args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("page stage: %w", err)
	}
	defer rows.Close()

	var out []joinedRow
	for rows.Next() {
		var r joinedRow
		if err := r.scan(rows); err != nil {
			return nil, fmt.Errorf("page stage: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("page stage: %w", err)
	}
	return out, nil
}

// postGroup collects the rows of one post in arrival order.
type postGroup struct {
	head     joinedRow
	comments []joinedRow
	likes    []joinedRow
}

// groupStage folds rows into one group per post, keeping page order.
// NULL-padded child rows from the outer joins are dropped here.
func groupStage(rows []joinedRow) []*postGroup {
	index := make(map[string]*postGroup)
	groups := make([]*postGroup, 0)

	for _, r := range rows {
		g, ok := index[r.PostID]
		if !ok {
			g = &postGroup{head: r}
			index[r.PostID] = g
			groups = append(groups, g)
		}

		if !r.ChildID.Valid {
			continue
		}
		switch r.Kind {
		case kindComment:
			g.comments = append(g.comments, r)
		case kindLike:
			g.likes = append(g.likes, r)
		}
	}
	return groups
}

func projectStage(groups []*postGroup) []entity.FeedItem {
	items := make([]entity.FeedItem, 0, len(groups))
	for _, g := range groups {
		h := g.head
		item := entity.FeedItem{
			ID:        h.PostID,
			Content:   h.PostContent,
			ImageURL:  h.PostImageURL.String,
			OwnerID:   h.PostOwnerID,
			CreatedAt: h.PostCreatedAt.Time,
			UpdatedAt: h.PostUpdatedAt.Time,
			OwnerDetails: entity.UserSummary{
				ID:       h.PostOwnerID,
				Username: h.OwnerUsername,
				Email:    h.OwnerEmail,
			},
			Comments: make([]entity.FeedComment, 0, len(g.comments)),
			Likes:    make([]entity.FeedLike, 0, len(g.likes)),
		}

		for _, c := range g.comments {
			item.Comments = append(item.Comments, entity.FeedComment{
				ID:           c.ChildID.String,
				Content:      c.ChildContent.String,
				OwnerID:      c.ChildUserID.String,
				OwnerDetails: childSummary(c),
				CreatedAt:    c.ChildCreatedAt.Time,
				UpdatedAt:    c.ChildUpdatedAt.Time,
			})
		}
		for _, l := range g.likes {
			item.Likes = append(item.Likes, entity.FeedLike{
				ID:             l.ChildID.String,
				PostID:         h.PostID,
				LikedBy:        l.ChildUserID.String,
				LikedByDetails: childSummary(l),
				CreatedAt:      l.ChildCreatedAt.Time,
				UpdatedAt:      l.ChildUpdatedAt.Time,
			})
		}
		items = append(items, item)
	}
	return items
}

func childSummary(r joinedRow) entity.UserSummary {
	return entity.UserSummary{
		ID:       r.ChildUserID.String,
		Username: r.ChildUsername.String,
		Email:    r.ChildEmail.String,
	}
}
