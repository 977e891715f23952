package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type contentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

func TestNotBlank(t *testing.T) {
	Register()
	Register()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var req contentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusOK)
	})

	cases := map[string]int{
		`{"content":"hello"}`: http.StatusOK,
		`{"content":"   "}`:   http.StatusBadRequest,
		`{"content":""}`:      http.StatusBadRequest,
		`{}`:                  http.StatusBadRequest,
	}

	for body, want := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, body)
	}
}
