package worker

import (
	"masterdata-web/internal/config"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) {
	importHandler := NewImportTaskHandler(db, redisClient, cfg)
	mux.HandleFunc(TaskImportBatch, importHandler.Handle)
}
