package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// AWS / S3 artifact storage
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	S3Bucket            string
	S3PublicBaseURL     string

	// Email delivery. Provider is one of "sendgrid", "ses" or "stub".
	MailProvider      string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// Certificate rendering
	CanvasWidth         int
	CanvasHeight        int
	BackgroundImagePath string
	NameFontPath        string
	CaptionFontPath     string
	NameFontSize        float64
	CaptionFontSize     float64
	IDFontSize          float64
	QREnabled           bool
	QRSize              int
	VerificationBaseURL string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3PublicBaseURL:     getEnv("S3_PUBLIC_BASE_URL", ""),

		MailProvider:      strings.ToLower(strings.TrimSpace(getEnv("MAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "The CertGen Team"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "The CertGen Team"),

		CanvasWidth:         getEnvAsInt("CANVAS_WIDTH", 800),
		CanvasHeight:        getEnvAsInt("CANVAS_HEIGHT", 600),
		BackgroundImagePath: getEnv("BACKGROUND_IMAGE_PATH", "assets/certificate.png"),
		NameFontPath:        getEnv("NAME_FONT_PATH", "assets/fonts/ArchivoBlack-Regular.ttf"),
		CaptionFontPath:     getEnv("CAPTION_FONT_PATH", "assets/fonts/Arial.ttf"),
		NameFontSize:        getEnvAsFloat("NAME_FONT_SIZE", 40),
		CaptionFontSize:     getEnvAsFloat("CAPTION_FONT_SIZE", 30),
		IDFontSize:          getEnvAsFloat("ID_FONT_SIZE", 12),
		QREnabled:           getEnvAsBool("QR_ENABLED", false),
		QRSize:              getEnvAsInt("QR_SIZE", 96),
		VerificationBaseURL: getEnv("VERIFICATION_BASE_URL", ""),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// Validate reports missing required credentials. Storage credentials are
// always required; mail credentials only when the selected provider needs
// them. Failing here keeps a misconfigured deploy from silently no-opping.
func (c *Config) Validate() error {
	var missing []string

	if c.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}

	switch c.MailProvider {
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			missing = append(missing, "SENDGRID_API_KEY")
		}
		if c.SendGridFromEmail == "" {
			missing = append(missing, "SENDGRID_FROM_EMAIL")
		}
	case "ses":
		if c.SESFromEmail == "" {
			missing = append(missing, "SES_FROM_EMAIL")
		}
	case "stub":
		// nothing to validate
	default:
		return fmt.Errorf("config: unknown MAIL_PROVIDER %q (want sendgrid, ses or stub)", c.MailProvider)
	}

	if c.QREnabled && c.VerificationBaseURL == "" {
		missing = append(missing, "VERIFICATION_BASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
