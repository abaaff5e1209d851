package config

// Config is the validated node interface configuration. It is built once
// at startup by Parse and must be treated as read-only afterwards.
type Config struct {
	Rest RestConfig `yaml:"rest"`
	P2P  P2PConfig  `yaml:"p2p"`
}

// RestConfig contains the REST interface configuration
type RestConfig struct {
	Listen Address     `yaml:"listen"`           // Bind address (host:port)
	Pkcs12 *string     `yaml:"pkcs12,omitempty"` // Certificate bundle path; nil runs without TLS
	Cors   *CorsConfig `yaml:"cors,omitempty"`   // nil disables CORS handling
}

// TLSEnabled reports whether a certificate bundle is configured.
func (r RestConfig) TLSEnabled() bool {
	return r.Pkcs12 != nil
}

// CorsConfig contains the CORS policy served by the REST interface.
type CorsConfig struct {
	// AllowedOrigins restricts cross-origin requests to the listed
	// origins. A nil slice echoes the request origin; an empty non-nil
	// slice allows none.
	AllowedOrigins []string

	// MaxAgeSecs is how long clients may cache preflight responses.
	// nil means they are not cached.
	MaxAgeSecs *int64
}

// EchoesOrigin reports whether any request origin is reflected back.
func (c *CorsConfig) EchoesOrigin() bool {
	return c.AllowedOrigins == nil
}

// MarshalYAML keeps an empty origin list distinguishable from an absent one.
func (c CorsConfig) MarshalYAML() (interface{}, error) {
	out := make(map[string]interface{}, 2)
	if c.AllowedOrigins != nil {
		out["allowed_origins"] = c.AllowedOrigins
	}
	if c.MaxAgeSecs != nil {
		out["max_age_secs"] = *c.MaxAgeSecs
	}
	return out, nil
}

// P2PConfig contains the gossip interface configuration
type P2PConfig struct {
	TrustedPeers     []Address        `yaml:"trusted_peers,omitempty"` // Bootstrap peers, used only at startup
	PublicID         *string          `yaml:"public_id,omitempty"`     // nil means generated at startup
	PublicAddress    Address          `yaml:"public_address"`          // Bind and advertised address
	TopicsOfInterest TopicsOfInterest `yaml:"topics_of_interest"`
}

// TopicsOfInterest sets the gossip eagerness per topic.
type TopicsOfInterest struct {
	Messages InterestLevel `yaml:"messages"` // transaction gossip
	Blocks   InterestLevel `yaml:"blocks"`   // block gossip
}

const (
	// DefaultRestListen is the REST bind address written by DefaultConfig.
	DefaultRestListen = "127.0.0.1:8443"
	// DefaultPublicAddress is the P2P address written by DefaultConfig.
	DefaultPublicAddress = "/ip4/127.0.0.1/tcp/8299"
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	listen, err := ParseHostPort(DefaultRestListen)
	if err != nil {
		panic(err)
	}
	public, err := ParseAddress(DefaultPublicAddress)
	if err != nil {
		panic(err)
	}
	return &Config{
		Rest: RestConfig{
			Listen: listen,
		},
		P2P: P2PConfig{
			TrustedPeers:  []Address{},
			PublicAddress: public,
			TopicsOfInterest: TopicsOfInterest{
				Messages: InterestLow,
				Blocks:   InterestNormal,
			},
		},
	}
}
