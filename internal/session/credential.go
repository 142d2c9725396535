package session

import (
	"math/rand/v2"

	"github.com/wintercup/portal/internal/gateway"
)

// ProviderCredential is what an identity provider widget hands back to the
// client before the exchange.
type ProviderCredential interface {
	Provider() gateway.Provider
}

// RobloxCredential is the account data returned by the Roblox sign-in flow.
type RobloxCredential struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

func (RobloxCredential) Provider() gateway.Provider { return gateway.ProviderRoblox }

// TelegramCredential is the signed payload of the Telegram login widget.
type TelegramCredential struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date,omitempty"`
	Hash      string `json:"hash,omitempty"`
}

func (TelegramCredential) Provider() gateway.Provider { return gateway.ProviderTelegram }

// DemoCredential fabricates a throwaway Roblox account, standing in for the
// provider widget during local runs.
func DemoCredential() RobloxCredential {
	return RobloxCredential{
		ID:          rand.Int64N(1_000_000_000) + 1,
		Name:        "demo_user",
		DisplayName: "Demo Player",
	}
}
