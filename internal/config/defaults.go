package config

// defaults apply when neither the file nor the environment sets a key
var defaults = map[string]interface{}{
	"service.name":        "partner",
	"service.environment": "development",
	"service.version":     "dev",

	"server.http.host": "0.0.0.0",
	"server.http.port": 8080,
	"server.grpc.host": "0.0.0.0",
	"server.grpc.port": 9090,

	"database.host":               "localhost",
	"database.port":               5432,
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "1h",
	"database.conn_max_idle_time": "10m",
	"database.log_level":          "warn",
	"database.slow_threshold":     "200ms",

	"redis.host":      "localhost",
	"redis.port":      6379,
	"redis.db":        0,
	"redis.pool_size": 10,

	"session.name":        "partner_session",
	"session.key_prefix":  "partner:session:",
	"session.max_age":     86400,
	"session.secure":      false,
	"session.bcrypt_cost": 10,

	"lock.wait_timeout": "3s",
	"lock.lease":        "10s",

	"cache.recommend.enabled":   true,
	"cache.recommend.schedule":  "*/5 * * * * *",
	"cache.recommend.page_size": 20,
	"cache.recommend.ttl":       "60s",
	"cache.recommend.lease":     "30s",

	"events.enabled": true,
	"events.channel": "partner.team.events",

	"log.level":  "info",
	"log.format": "json",
	"log.output": "stdout",
}
