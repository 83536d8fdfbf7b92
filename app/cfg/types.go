package cfg

type Cfg struct {
	// HTTP server
	Port        string
	CORSOrigins []string

	// Storage
	DBPath        string
	BootstrapFile string

	// Token issuance
	JWTSecret        string
	JWTIssuer        string
	JWTAudience      string
	JWTExpiryMinutes int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
