package model

import "time"

// AuditEntry 钱包事件审计表。worker 消费 MQ 后落库, 一行一个事件。
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventType string    `gorm:"type:varchar(64);index;not null" json:"event_type"`
	Origin    string    `gorm:"type:varchar(255);index" json:"origin"`
	Address   string    `gorm:"type:varchar(64)" json:"address"`
	TxHash    string    `gorm:"type:varchar(80)" json:"tx_hash"`
	Payload   []byte    `gorm:"type:bytea" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (AuditEntry) TableName() string {
	return "bridge_audit_log"
}
