/*
Copyright 2024 Payflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package payflow

import (
	"log"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/internal/request"
	"github.com/kaptain9960/payflow/model"
)

// NewWebhook represents the structure of a webhook notification.
type NewWebhook struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"data"`
}

// getEventFromStatus maps a terminal transaction status to its event name.
func getEventFromStatus(status model.Status) string {
	switch status {
	case model.StatusCompleted:
		return "transaction.completed"
	case model.StatusCancelled:
		return "transaction.cancelled"
	default:
		return "transaction.unknown"
	}
}

func processHTTP(data NewWebhook) error {
	conf, err := config.Fetch()
	if err != nil {
		log.Println("Error fetching config:", err)
		return err
	}

	payload, err := request.ToJsonReq(data)
	if err != nil {
		log.Println("Error marshaling webhook payload:", err)
		return err
	}

	req, err := http.NewRequest("POST", conf.Notification.Webhook.Url, payload)
	if err != nil {
		log.Println("Error creating webhook request:", err)
		return err
	}
	for key, value := range conf.Notification.Webhook.Headers {
		req.Header.Set(key, value)
	}

	var response map[string]interface{}
	resp, err := request.Call(req, &response)
	if err != nil {
		log.Println("Error sending webhook:", err)
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Webhook delivery failed with status code: %d\n", resp.StatusCode)
		return nil
	}

	return nil
}

// SendWebhook delivers a webhook notification to the configured URL, retrying
// transient failures with exponential backoff. A missing webhook URL disables
// delivery silently.
func SendWebhook(newWebhook NewWebhook) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}
	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	operation := func() error {
		return processHTTP(newWebhook)
	}
	return backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
}
