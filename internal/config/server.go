package config

type ServerConfig struct {
	HTTP HTTPConfig
	GRPC GRPCConfig
}

type HTTPConfig struct {
	Host string
	Port int
}

type GRPCConfig struct {
	Host string
	Port int
}

// SessionConfig configures the Redis-backed cookie session
type SessionConfig struct {
	Name       string
	Secret     string
	KeyPrefix  string
	MaxAge     int
	Secure     bool
	BcryptCost int
}
