package container

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-microplastic-inspector/internal/config"

	"github.com/gin-gonic/gin"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		LogLevel:           "error",
		RequestTimeout:     time.Second,
		MaxRequestBodySize: 1 << 20,
		MaxFilesPerBatch:   5,
		MaxFileSize:        1024,
		WorkerCount:        2,
		ReportPrintDelay:   400 * time.Millisecond,
		ChartWidth:         320,
		ChartHeight:        200,
		SessionIdleTimeout: time.Hour,
		DetectorSeed:       1,
	}
}

func TestNewContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer c.Close()

	if c.Config().Port != "8080" {
		t.Errorf("Expected config to be kept, got port %s", c.Config().Port)
	}

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected page, got %d", w.Code)
	}
	if c.Registry().Len() != 1 {
		t.Errorf("Expected the page load to open a session, got %d", c.Registry().Len())
	}
}

func TestNewContainer_RequiresConfig(t *testing.T) {
	if _, err := NewContainer(nil); err == nil {
		t.Error("Expected error without config")
	}
}
