package domain

import "time"

// Логирование важных действий игроков и админов
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	Username  string                 `db:"username" json:"username"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Категории действий
const (
	AuditCategoryAuth  = "auth"
	AuditCategoryGame  = "game"
	AuditCategoryAdmin = "admin"
)

const (
	// Авторизация
	AuditActionRegister = "register"
	AuditActionLogin    = "login"

	// Игры
	AuditActionGameStart   = "game_start"
	AuditActionGameEnd     = "game_end"
	AuditActionScoreSubmit = "score_submit"

	// Действия админов
	AuditActionCatalogUpsert = "catalog_upsert"
)
