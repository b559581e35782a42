package config

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// NewMySQL opens the durable store connection, retrying while the database
// comes up (container start ordering).
func NewMySQL() (*sql.DB, error) {
	host := GetEnvOrDefault("DB_HOST", "localhost")
	port := GetEnvOrDefault("DB_PORT", "3306")
	user := GetEnvOrDefault("DB_USER", "root")
	pass := GetEnvOrDefault("DB_PASS", "")
	name := GetEnvOrDefault("DB_NAME", "dashop")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, pass, host, port, name)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msgf("connected to DB %s at %s:%s", name, host, port)
				return db, nil
			}
		}
		log.Warn().Err(err).Msgf("retry %d: failed to connect to DB %s (%s:%s)", i+1, name, host, port)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", name, host, port, err)
}
