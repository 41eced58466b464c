package mintseed

import (
	"path"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mintseed/mintseed/schema"
)

const sqliteName = "mintseed.sqlite"

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	logLevel := logger.Error
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logLevel),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.MintOrder{})
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}

// SaveOrder inserts the order, replacing a leftover row from an earlier
// failed attempt with the same payment id.
func (w *Wdb) SaveOrder(order *schema.MintOrder) error {
	err := w.Db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		UpdateAll: true,
	}).Create(order).Error
	if err != nil {
		return err
	}
	// on the update branch gorm backfills ID from the driver's last insert
	// id, which belongs to whichever row was inserted last, not this one
	saved := schema.MintOrder{}
	if err := w.Db.Select("id").Where("payment_id = ?", order.PaymentId).First(&saved).Error; err != nil {
		return err
	}
	order.ID = saved.ID
	return nil
}

func (w *Wdb) UpdateOrderStatus(id uint, status, errMsg string) error {
	return w.Db.Model(&schema.MintOrder{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "err_msg": errMsg}).Error
}

func (w *Wdb) OrderSubmitted(id uint, sig string) error {
	return w.Db.Model(&schema.MintOrder{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": schema.MintSubmitted, "mint_sig": sig}).Error
}

func (w *Wdb) OrderConfirmed(id uint, assetId string) error {
	return w.Db.Model(&schema.MintOrder{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": schema.MintConfirmed, "asset_id": assetId, "err_msg": ""}).Error
}

func (w *Wdb) GetOrderByPayment(paymentId string) (res schema.MintOrder, err error) {
	err = w.Db.Where("payment_id = ?", paymentId).First(&res).Error
	return
}

func (w *Wdb) GetOrdersByStatus(status string) ([]schema.MintOrder, error) {
	res := make([]schema.MintOrder, 0, 10)
	err := w.Db.Where("status = ?", status).Find(&res).Error
	return res, err
}

func (w *Wdb) GetOrdersByRecipient(recipient string, cursorId uint, num int) ([]schema.MintOrder, error) {
	res := make([]schema.MintOrder, 0, num)
	err := w.Db.Where("recipient = ? and id > ?", recipient, cursorId).
		Order("id asc").Limit(num).Find(&res).Error
	return res, err
}

func (w *Wdb) ConfirmedCount() (int64, error) {
	var n int64
	err := w.Db.Model(&schema.MintOrder{}).Where("status = ?", schema.MintConfirmed).Count(&n).Error
	return n, err
}
