package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/gorm"
)

// WhatsAppProvider sends an outbound WhatsApp message to a phone number.
type WhatsAppProvider interface {
	SendMessage(phone, message string) error
}

// CallProvider triggers an outbound voice call to a phone number.
type CallProvider interface {
	MakeCall(phone string) error
}

var (
	whatsappProvider WhatsAppProvider
	callProvider     CallProvider
	providersOnce    sync.Once
)

// InitProviders picks the outbound transport once at startup. When
// AUTOMATION_WEBHOOK_URL is set, both channels go through the relay;
// otherwise each channel calls its API directly. There is no fallback
// between the two at runtime.
func InitProviders(db *gorm.DB) {
	providersOnce.Do(func() {
		relayURL := os.Getenv("AUTOMATION_WEBHOOK_URL")
		if relayURL != "" {
			whatsappProvider = NewRelayWhatsAppProvider(relayURL)
			callProvider = NewRelayCallProvider(relayURL)
			utils.InfoLogger.Printf("Outbound providers: relay via %s", relayURL)
			return
		}

		whatsappProvider = NewMetaWhatsAppProvider(db)
		callProvider = NewBapiCallProvider(db)
		utils.InfoLogger.Println("Outbound providers: direct (Meta Cloud API / BAPI)")
	})
}

// GetWhatsAppProvider returns the provider chosen at startup
func GetWhatsAppProvider() WhatsAppProvider {
	return whatsappProvider
}

// GetCallProvider returns the provider chosen at startup
func GetCallProvider() CallProvider {
	return callProvider
}

// relayEnvelope is the tagged JSON body posted to the automation webhook.
type relayEnvelope struct {
	Action  string `json:"action"`
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}

// postRelay delegates an action to the automation webhook. Delivery is
// fire-and-forget: the response status is not inspected, only transport
// errors are reported.
func postRelay(client *http.Client, webhookURL string, env relayEnvelope) error {
	jsonData, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("error marshaling relay envelope: %v", err)
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating relay request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error posting to relay webhook: %v", err)
	}
	resp.Body.Close()

	return nil
}

// settingOrEnv resolves a credential from the settings table first so
// tokens can be rotated without a redeploy, falling back to the
// environment for fresh installs.
func settingOrEnv(db *gorm.DB, key, envKey string) string {
	if db != nil {
		var setting models.Setting
		if err := db.Where("`key` = ?", key).First(&setting).Error; err == nil && setting.Value != "" {
			return setting.Value
		}
	}
	return os.Getenv(envKey)
}

func newProviderHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}
