// config.go
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	RabbitURL   string
	Port        string

	// Webhook
	VerifyToken string

	// WhatsApp Cloud API
	GraphAPIURL   string
	PhoneNumberID string
	AccessToken   string

	// Envío de confirmación: plantilla o botones
	UseTemplate  bool
	TemplateName string
	TemplateLang string

	// Teléfonos
	DefaultPhone       string
	DefaultCountryCode string
	StrictPhoneMatch   bool
}

func Load() *Config {
	// .env local si existe; en producción las variables vienen del entorno
	_ = godotenv.Load()

	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "order_confirmation_db"),
		RabbitURL:   getEnv("RABBIT_URL", ""),
		Port:        getEnv("PORT", "8080"),

		VerifyToken: getEnv("VERIFY_TOKEN", ""),

		GraphAPIURL:   getEnv("GRAPH_API_URL", "https://graph.facebook.com/v17.0"),
		PhoneNumberID: getEnv("PHONE_NUMBER_ID", ""),
		AccessToken:   getEnv("ACCESS_TOKEN", ""),

		UseTemplate:  getEnv("USE_TEMPLATE", "false") == "true",
		TemplateName: getEnv("TEMPLATE_NAME", "validate_order"),
		TemplateLang: getEnv("TEMPLATE_LANG", "es"),

		DefaultPhone:       getEnv("DEFAULT_PHONE", "573232205135"),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "57"),
		StrictPhoneMatch:   getEnv("STRICT_PHONE_MATCH", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
