package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/baselinelab/baseline-be/config"
	"github.com/baselinelab/baseline-be/models"
	"github.com/baselinelab/baseline-be/services"
	"github.com/gin-gonic/gin"
)

type BoardController struct{}

func NewBoardController() *BoardController {
	return &BoardController{}
}

type CreateBoardPostRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

func (bc *BoardController) CreatePost(c *gin.Context) {
	var req CreateBoardPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.BoardPost{
		UserID:   currentUserID(c),
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	}
	if err := config.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (bc *BoardController) GetPosts(c *gin.Context) {
	var posts []models.BoardPost
	query := config.DB.Order("is_pinned DESC, created_at DESC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Limit(100).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

type PatchBoardPostRequest struct {
	Title        *string    `json:"title"`
	Content      *string    `json:"content"`
	Category     *string    `json:"category"`
	ClientSeenAt *time.Time `json:"client_seen_at"`
}

// PatchPost edits a post under the optimistic lock so that two tabs editing
// the same post cannot silently overwrite each other.
func (bc *BoardController) PatchPost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req PatchBoardPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.BoardPost
	if err := config.DB.Where("id = ? AND user_id = ?", postID, currentUserID(c)).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found", "code": "NOT_FOUND"})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := services.ApplyOptimisticPatch(config.DB, &models.BoardPost{}, uint(postID), req.ClientSeenAt, updates); err != nil {
		handleServiceError(c, err)
		return
	}

	var updated models.BoardPost
	if err := config.DB.First(&updated, postID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":       updated,
		"updated_at": updated.UpdatedAt,
	})
}
