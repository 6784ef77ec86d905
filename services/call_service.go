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

// BapiCallProvider triggers calls through the BAPI voice-calling HTTP API.
type BapiCallProvider struct {
	db         *gorm.DB
	httpClient *http.Client
}

func NewBapiCallProvider(db *gorm.DB) *BapiCallProvider {
	return &BapiCallProvider{
		db:         db,
		httpClient: newProviderHTTPClient(),
	}
}

func (p *BapiCallProvider) credentials() (baseURL, apiKey string, err error) {
	baseURL = settingOrEnv(p.db, models.SettingBapiBaseURL, "BAPI_BASE_URL")
	apiKey = settingOrEnv(p.db, models.SettingBapiAPIKey, "BAPI_API_KEY")
	if baseURL == "" || apiKey == "" {
		return "", "", fmt.Errorf("bapi credentials are not configured")
	}
	return baseURL, apiKey, nil
}

func (p *BapiCallProvider) MakeCall(phone string) error {
	baseURL, apiKey, err := p.credentials()
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"phone_number": phone,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request: %v", err)
	}

	url := fmt.Sprintf("%s/v1/calls", baseURL)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

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
		return fmt.Errorf("BAPI error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// RelayCallProvider delegates call triggering to the automation webhook.
type RelayCallProvider struct {
	webhookURL string
	httpClient *http.Client
}

func NewRelayCallProvider(webhookURL string) *RelayCallProvider {
	return &RelayCallProvider{
		webhookURL: webhookURL,
		httpClient: newProviderHTTPClient(),
	}
}

func (p *RelayCallProvider) MakeCall(phone string) error {
	return postRelay(p.httpClient, p.webhookURL, relayEnvelope{
		Action: "make_call",
		Phone:  phone,
	})
}
