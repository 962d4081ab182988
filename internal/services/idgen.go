package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	OrderIDPrefix   = "order_"
	PaymentIDPrefix = "pay_"
	RefundIDPrefix  = "rfnd_"
)

// GenerateID returns prefix followed by 16 random alphanumeric characters
func GenerateID(prefix string) string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("idgen: crypto/rand failed: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return prefix + string(buf)
}

// GenerateWebhookSecret returns a merchant webhook signing secret
func GenerateWebhookSecret() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("idgen: crypto/rand failed: %v", err))
	}
	return "whsec_" + hex.EncodeToString(buf)
}
