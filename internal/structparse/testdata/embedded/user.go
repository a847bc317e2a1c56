package embedded

import "time"

// Stamp 时间戳
type Stamp struct {
	CreatedAt time.Time
}

// User 嵌入字段保持为单个字段，不展开
type User struct {
	*Stamp
	time.Location `json:"-"`
	ID, OrgID     int64
	name          string
}
