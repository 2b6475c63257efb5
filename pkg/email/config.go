package email

// Transport names accepted by Config.Transport.
const (
	TransportSMTP     = "smtp"
	TransportPostmark = "postmark"
	TransportDev      = "dev"
)

// SMTP encryption modes.
const (
	EncryptionNone = ""
	EncryptionSSL  = "ssl"
	EncryptionTLS  = "tls"
)

// Config holds email transport configuration.
// Only the settings of the selected transport are required: Postmark tokens for
// "postmark", an SMTP host for "smtp" and an output directory for "dev".
type Config struct {
	Transport string `env:"EMAIL_TRANSPORT" envDefault:"smtp"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SMTPHost       string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SMTPEncryption string `env:"SMTP_ENCRYPTION"`

	DevOutputDir string `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
}

// SMTPOverride replaces the global SMTP settings for a single send.
// It travels by value inside SendEmailParams; the zero value means "no override".
type SMTPOverride struct {
	Host       string `json:"host,omitempty" yaml:"host"`
	Port       int    `json:"port,omitempty" yaml:"port"`
	User       string `json:"user,omitempty" yaml:"user"`
	Password   string `json:"-" yaml:"password"`
	Encryption string `json:"encryption,omitempty" yaml:"encryption"`
}

// IsZero reports whether no override host is set.
func (o SMTPOverride) IsZero() bool {
	return o.Host == ""
}
