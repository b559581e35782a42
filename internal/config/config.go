package config

import "os"

// GetEnvOrDefault reads an env var with a fallback.
func GetEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// JWTSecret is the HMAC key used to verify session tokens issued by the
// user service.
func JWTSecret() []byte {
	return []byte(GetEnvOrDefault("JWT_SECRET", "dashop-dev-secret"))
}
