package helper

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"faktura/internal/config"
	"faktura/internal/utils/crypto"
	"faktura/internal/utils/logger"

	"github.com/joho/godotenv"
)

// helper is a console loop for minting and inspecting invoice share
// tokens against the configured signing key.
func helper() {
	var log = logger.New("helper")
	log.Info("🔑 Starting share-token helper CLI")

	err := godotenv.Load()
	if err != nil {
		log.Error("❌ Failed to load environment variables", err)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("❌ Failed to load configuration", err)
		return
	}
	err = crypto.InitializeKeys(cfg.Crypto.PrivateKey)
	if err != nil {
		log.Error("❌ Failed to initialize keys", err)
		return
	}

	ttl := time.Duration(cfg.Invoicing.ShareLinkTTLDays) * 24 * time.Hour
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("Enter 's' to sign a share token, 'v' to verify one, or 'q' to quit: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		if choice == "q" {
			log.Info("👋 Exiting helper CLI")
			break
		}

		if choice == "s" {
			fmt.Print("Invoice ID: ")
			invoiceID, _ := reader.ReadString('\n')
			fmt.Print("Business ID: ")
			businessID, _ := reader.ReadString('\n')

			token, err := crypto.SignShareToken(strings.TrimSpace(invoiceID), strings.TrimSpace(businessID), ttl)
			if err != nil {
				log.Error("❌ Signing failed", err)
			} else {
				log.Success("✅ Share token: %s", token)
			}
		} else if choice == "v" {
			fmt.Print("Token: ")
			input, _ := reader.ReadString('\n')

			claims, err := crypto.VerifyShareToken(strings.TrimSpace(input))
			if err != nil {
				log.Error("❌ Verification failed", err)
			} else {
				log.Success("✅ Valid until %s: invoice %s, business %s",
					claims.ExpiresAt.Time.Format(time.RFC3339), claims.InvoiceID, claims.BusinessID)
			}
		} else {
			log.Warn("⚠️ Invalid choice. Please enter 's', 'v', or 'q'.")
		}
	}
}
