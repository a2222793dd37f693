package dao

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DAOManager 管理所有 DAO 实例
type DAOManager struct {
	TokenDAO TokenDAO
}

func NewDAOManager(db *gorm.DB, rds *redis.Client) *DAOManager {
	return &DAOManager{
		TokenDAO: NewTokenDAO(db, rds),
	}
}
