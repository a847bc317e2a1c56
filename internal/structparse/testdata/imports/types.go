package imports

import (
	"time"

	"github.com/google/uuid"
	orm "gorm.io/gorm"
)

// Order 订单结构体，用于测试导入信息提取和别名处理
type Order struct {
	ID        uuid.UUID
	Items     map[string][]*time.Duration
	CreatedAt time.Time
	DeletedAt orm.DeletedAt `gorm:"index"`
	Notify    func(ctx interface{}) error
}
