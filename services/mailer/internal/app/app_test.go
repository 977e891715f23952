package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"postfeed/pkg/config"
	"postfeed/pkg/logger"
	statusHTTP "postfeed/services/mailer/internal/controller/http"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type emptyQueue struct{}

func (emptyQueue) GetQueueLength() (int, error) { return 0, nil }

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(&config.Config{AppEnv: "development"}, statusHTTP.NewStatusHandler(emptyQueue{}, logger.New()))

	for path, want := range map[string]string{
		"/health":              `{"status":"ok"}`,
		"/api/v1/emails/queue": `{"queue":"email_queue","pending":0}`,
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, want, w.Body.String(), path)
	}
}
