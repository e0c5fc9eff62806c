package notification

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaptain9960/payflow/config"
)

func TestSlackNotification(t *testing.T) {
	received := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cnf := &config.Configuration{}
	cnf.Notification.Slack.WebhookUrl = srv.URL
	config.MockConfig(cnf)

	SlackNotification(errors.New("balance update failed"))

	select {
	case <-received:
	default:
		t.Fatal("expected slack webhook to be called")
	}
}
