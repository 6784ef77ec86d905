package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/juanmircheva/reservas-app/models"
	"gorm.io/gorm"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v19.0"

// MetaWhatsAppProvider sends messages through the Meta WhatsApp Business
// Cloud API using the token and phone-number ID from the settings store.
type MetaWhatsAppProvider struct {
	db         *gorm.DB
	baseURL    string
	httpClient *http.Client
}

func NewMetaWhatsAppProvider(db *gorm.DB) *MetaWhatsAppProvider {
	return &MetaWhatsAppProvider{
		db:         db,
		baseURL:    defaultGraphBaseURL,
		httpClient: newProviderHTTPClient(),
	}
}

func (p *MetaWhatsAppProvider) credentials() (token, phoneID string, err error) {
	token = settingOrEnv(p.db, models.SettingWhatsAppToken, "WHATSAPP_TOKEN")
	phoneID = settingOrEnv(p.db, models.SettingWhatsAppPhoneID, "WHATSAPP_PHONE_ID")
	if token == "" || phoneID == "" {
		return "", "", fmt.Errorf("whatsapp credentials are not configured")
	}
	return token, phoneID, nil
}

func (p *MetaWhatsAppProvider) SendMessage(phone, message string) error {
	token, phoneID, err := p.credentials()
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              "text",
		"text": map[string]interface{}{
			"body": message,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request: %v", err)
	}

	url := fmt.Sprintf("%s/%s/messages", p.baseURL, phoneID)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("WhatsApp API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// TestConnection exercises the stored credentials against the Graph API
// and returns the phone number metadata Meta reports back.
func (p *MetaWhatsAppProvider) TestConnection() (map[string]interface{}, error) {
	token, phoneID, err := p.credentials()
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?fields=verified_name,display_phone_number,quality_rating", p.baseURL, phoneID)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("WhatsApp API error (status %d): %s", resp.StatusCode, string(body))
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}

	return metadata, nil
}

// RelayWhatsAppProvider delegates sending to the automation webhook.
type RelayWhatsAppProvider struct {
	webhookURL string
	httpClient *http.Client
}

func NewRelayWhatsAppProvider(webhookURL string) *RelayWhatsAppProvider {
	return &RelayWhatsAppProvider{
		webhookURL: webhookURL,
		httpClient: newProviderHTTPClient(),
	}
}

func (p *RelayWhatsAppProvider) SendMessage(phone, message string) error {
	return postRelay(p.httpClient, p.webhookURL, relayEnvelope{
		Action:  "send_whatsapp",
		Phone:   phone,
		Message: message,
	})
}
