package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/perfectism-co/easyBuy/apperrors"
	"github.com/perfectism-co/easyBuy/middleware"
	"github.com/perfectism-co/easyBuy/services"
)

// maxImageSize caps each uploaded review image at 2 MiB.
const maxImageSize = 2 << 20

type ReviewController struct {
	reviewService *services.ReviewService
}

func NewReviewController(reviewService *services.ReviewService) *ReviewController {
	return &ReviewController{reviewService: reviewService}
}

// Attach reads a multipart form (comment, rating, up to five image files)
// and stores the review on the order.
func (rc *ReviewController) Attach(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be an integer"})
		return
	}
	comment := c.PostForm("comment")

	var images [][]byte
	for _, fh := range form.File["images"] {
		if fh.Size > maxImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return
		}
		images = append(images, data)
	}

	err = rc.reviewService.Attach(c.Request.Context(), middleware.UserID(c), c.Param("order_id"), comment, rating, images)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "review attached"})
}

// Detach removes the order's review, allowing a later re-attach.
func (rc *ReviewController) Detach(c *gin.Context) {
	err := rc.reviewService.Detach(c.Request.Context(), middleware.UserID(c), c.Param("order_id"))
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

// FetchImage serves one review image by position.
func (rc *ReviewController) FetchImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}

	data, err := rc.reviewService.FetchImage(c.Request.Context(), middleware.UserID(c), c.Param("order_id"), index)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}
