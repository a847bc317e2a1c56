// Package basic 演示 @Partial 生成的类型与转换函数
package basic

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:generate go run github.com/donutnomad/partialgen gen .

// Account 账户
// @Partial(omit(ID, PasswordHash, DeletedAt), optional(Nickname, Settings))
// @Partial("AccountPatch", derive(Validate), omit(ID, CreatedAt, DeletedAt), optional(Email, Nickname, PasswordHash, Settings))
type Account struct {
	ID           uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	Email        string         `json:"email"`
	Nickname     *string        `json:"nickname"`
	PasswordHash []byte         `json:"-"`
	Settings     datatypes.JSON `json:"settings"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Car
// @Partial(omit(vin), optional(mileage))
type Car struct {
	vin     string
	model   string
	mileage *int
}
