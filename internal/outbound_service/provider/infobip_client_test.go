package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(baseURL string) Config {
	return Config{
		SMSURL:                baseURL + "/sms/2/text/advanced",
		SMSAPIKey:             "App sms-key",
		SMSSender:             "ServiceSMS",
		WhatsAppURL:           baseURL + "/whatsapp/1/message/",
		WhatsAppAPIKey:        "wa-key",
		WhatsAppServiceNumber: "447860099299",
		WhatsAppNotifyURL:     "https://gateway.example/api/v1/infobip/whatsapp/reports/outbound",
		EmailURL:              baseURL + "/email/3/send",
		EmailAPIKey:           "ZW1haWw6a2V5",
		EmailFrom:             "support@example.org",
		EmailFromName:         "SES SUPPORT",
		EmailNotifyURL:        "https://gateway.example/api/v1/infobip/email/reports/outbound",
	}
}

func TestInfobipClient_SendSMS_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sms/2/text/advanced", r.URL.Path)
		assert.Equal(t, "App sms-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req smsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "ServiceSMS", req.Messages[0].From)
		assert.Equal(t, "+15550001111", req.Messages[0].Destinations[0].To)
		assert.Equal(t, "hello", req.Messages[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bulkId":"b1","messages":[{"messageId":"P1","to":"+15550001111",
			"status":{"groupId":1,"groupName":"PENDING","id":26,"name":"PENDING_ACCEPTED","description":"Message sent to next instance"}}]}`))
	}))
	defer server.Close()

	client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
	result, err := client.SendSMS(context.Background(), "+15550001111", "hello")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusOK, result.TransportCode)
	assert.Equal(t, "P1", result.ProviderMessageID())
	require.NotNil(t, result.FirstStatus())
	assert.Equal(t, "PENDING_ACCEPTED", result.FirstStatus().Name)
	assert.NotEmpty(t, result.Payload)
}

func TestInfobipClient_SendSMS_FailuresAreNotErrors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"requestError":{"serviceException":{"messageId":"UNAUTHORIZED"}}}`))
		}))
		defer server.Close()

		client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
		result, err := client.SendSMS(context.Background(), "+15550001111", "hello")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, result.TransportCode)
		assert.Empty(t, result.Messages)
		assert.Empty(t, result.ProviderMessageID())
	})

	t.Run("transport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewInfobipClient(testConfig(server.URL), nil, testLogger())
		result, err := client.SendSMS(context.Background(), "+15550001111", "hello")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Zero(t, result.TransportCode)
	})

	t.Run("non-json body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>gateway</html>`))
		}))
		defer server.Close()

		client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
		result, err := client.SendSMS(context.Background(), "+15550001111", "hello")
		require.NoError(t, err)
		assert.Empty(t, result.Payload)
	})
}

func TestInfobipClient_SendWhatsAppTemplate(t *testing.T) {
	var sentID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/whatsapp/1/message/template", r.URL.Path)
		assert.Equal(t, "App wa-key", r.Header.Get("Authorization"))

		var req struct {
			Messages []struct {
				From         string `json:"from"`
				To           string `json:"to"`
				MessageID    string `json:"messageId"`
				CallbackData string `json:"callbackData"`
				NotifyURL    string `json:"notifyUrl"`
				Content      struct {
					TemplateName string `json:"templateName"`
					TemplateData struct {
						Body struct {
							Placeholders []string `json:"placeholders"`
						} `json:"body"`
					} `json:"templateData"`
					Language string `json:"language"`
				} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		m := req.Messages[0]
		assert.Equal(t, "447860099299", m.From)
		assert.Equal(t, "15551234567", m.To)
		assert.Equal(t, "welcome", m.Content.TemplateName)
		assert.Equal(t, []string{"Ada"}, m.Content.TemplateData.Body.Placeholders)
		assert.Equal(t, "en", m.Content.Language)
		assert.Equal(t, "Callback data", m.CallbackData)
		assert.Equal(t, "https://gateway.example/api/v1/infobip/whatsapp/reports/outbound", m.NotifyURL)
		_, err := uuid.Parse(m.MessageID)
		assert.NoError(t, err)
		sentID = m.MessageID

		_, _ = w.Write([]byte(`{"messages":[{"to":"15551234567","messageId":"` + m.MessageID + `",
			"status":{"groupId":1,"groupName":"PENDING","id":7,"name":"PENDING_ENROUTE","description":"Message sent to next instance"}}],"bulkId":"bk"}`))
	}))
	defer server.Close()

	client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
	result, err := client.SendWhatsAppTemplate(context.Background(), WhatsAppTemplate{
		To:           "15551234567",
		TemplateName: "welcome",
		Placeholders: []string{"Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, sentID, result.ProviderMessageID())
	assert.Equal(t, sentID, result.RequestMessageID)
	assert.Equal(t, "PENDING_ENROUTE", result.FirstStatus().Name)
}

func TestInfobipClient_SendWhatsAppText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/whatsapp/1/message/text", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req, "messages")
		assert.Equal(t, "15551234567", req["to"])
		assert.Equal(t, map[string]any{"text": "hi there"}, req["content"])

		_, _ = w.Write([]byte(`{"to":"15551234567","messageCount":1,"messageId":"top-level-id",
			"status":{"groupId":1,"groupName":"PENDING","id":7,"name":"PENDING_ENROUTE"}}`))
	}))
	defer server.Close()

	client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
	result, err := client.SendWhatsAppText(context.Background(), "15551234567", "hi there")
	require.NoError(t, err)
	assert.Equal(t, "top-level-id", result.ProviderMessageID())
	assert.Nil(t, result.FirstStatus())
}

func TestInfobipClient_SendWhatsApp_Errors(t *testing.T) {
	t.Run("unexpected status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"requestError":{}}`))
		}))
		defer server.Close()

		client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
		result, err := client.SendWhatsAppText(context.Background(), "15551234567", "hi")
		require.Error(t, err)
		assert.Nil(t, result)

		var statusErr *UnexpectedStatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	})

	t.Run("transport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewInfobipClient(testConfig(server.URL), nil, testLogger())
		_, err := client.SendWhatsAppTemplate(context.Background(), WhatsAppTemplate{To: "1", TemplateName: "t"})
		var transportErr *TransportError
		assert.True(t, errors.As(err, &transportErr))
	})
}

func TestInfobipClient_SendEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email/3/send", r.URL.Path)
		assert.Equal(t, "Basic ZW1haWw6a2V5", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "SES SUPPORT<support@example.org>", r.FormValue("from"))
		assert.Equal(t, "member@example.org", r.FormValue("to"))
		assert.Equal(t, "Renewal", r.FormValue("subject"))
		assert.Equal(t, "Please renew", r.FormValue("text"))
		assert.Equal(t, "<p>Please renew</p>", r.FormValue("html"))
		assert.Equal(t, "true", r.FormValue("intermediateReport"))
		assert.Equal(t, "https://gateway.example/api/v1/infobip/email/reports/outbound", r.FormValue("notifyUrl"))
		assert.JSONEq(t, `{"ph1":"Success"}`, r.FormValue("defaultPlaceholders"))

		_, _ = w.Write([]byte(`{"bulkId":"bulk-9","messages":[
			{"to":"member@example.org","messageId":"e-1","status":{"groupId":1,"groupName":"PENDING","id":26,"name":"PENDING_ACCEPTED","description":"queued"}},
			{"to":"member@example.org","messageId":"e-2","status":{"groupId":1,"groupName":"PENDING","id":26,"name":"PENDING_ACCEPTED","description":"queued"}}]}`))
	}))
	defer server.Close()

	client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
	result, err := client.SendEmail(context.Background(), Email{
		To:           "member@example.org",
		Subject:      "Renewal",
		Text:         "Please renew",
		HTML:         "<p>Please renew</p>",
		Placeholders: map[string]string{"ph1": "Success"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bulk-9", result.BulkID)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, "e-2", result.Messages[1].MessageID)
	assert.JSONEq(t,
		`{"to":"member@example.org","messageId":"e-2","status":{"groupId":1,"groupName":"PENDING","id":26,"name":"PENDING_ACCEPTED","description":"queued"}}`,
		string(result.Messages[1].Raw))
}

func TestInfobipClient_SendEmail_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewInfobipClient(testConfig(server.URL), server.Client(), testLogger())
	result, err := client.SendEmail(context.Background(), Email{To: "a@b.c", Subject: "s", Text: "t"})
	assert.Nil(t, result)
	var statusErr *UnexpectedStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "email", statusErr.Channel)
}

func TestAuthorization(t *testing.T) {
	assert.Equal(t, "App abc", authorization("abc"))
	assert.Equal(t, "App abc", authorization("App abc"))
}
