package gateway

// Config holds the site-wide defaults of the email gateway.
type Config struct {
	DefaultSenderName    string `env:"ADMIN_NAME"`
	DefaultSenderAddress string `env:"ADMIN_EMAIL"`
	BaseURL              string `env:"SITE_BASE_URL" envDefault:"http://localhost:8080/"`
	DefaultLanguage      string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
}
