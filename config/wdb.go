package config

import (
	"path"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mintseed/mintseed/schema"
)

const sqliteName = "config.sqlite"

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlWdb(dsn string) *Wdb {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect config db success")
	return &Wdb{Db: db}
}

func NewSqliteWdb(dbDir string) *Wdb {
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect config sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.Price{})
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}

func (w *Wdb) GetPrice() (int64, error) {
	res := schema.Price{}
	err := w.Db.First(&res).Error
	return res.Lamports, err
}

func (w *Wdb) SavePrice(lamports int64) error {
	price := &schema.Price{
		ID:       1,
		Lamports: lamports,
	}
	return w.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(price).Error
}
