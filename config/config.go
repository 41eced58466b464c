package config

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/mintseed/mintseed/common"
	"github.com/mintseed/mintseed/schema"
)

var log = common.NewLog("config")

// Params are the boot-time collection settings. The mint price additionally
// lives in the database so it can be changed without a restart.
type Params struct {
	NamePrefix     string
	MetadataBase   string // metadata json per ordinal lives at <base>/<n>.json
	ImageBase      string // image per ordinal lives at <base>/<n>.png
	MaxSupply      uint64
	RoyaltyBp      uint16
	ConfirmTimeout time.Duration
	PriceLamports  int64 // seed value for an empty price table
}

type Config struct {
	Params

	wdb       *Wdb
	scheduler *gocron.Scheduler

	priceLocker sync.RWMutex
	price       int64
}

func New(dsn string, sqliteDir string, useSqlite bool, p Params) *Config {
	wdb := &Wdb{}
	if useSqlite {
		wdb = NewSqliteWdb(sqliteDir)
	} else {
		wdb = NewMysqlWdb(dsn)
	}
	if err := wdb.Migrate(); err != nil {
		panic(err)
	}
	if p.MaxSupply == 0 {
		p.MaxSupply = schema.DefaultMaxSupply
	}
	if p.RoyaltyBp == 0 {
		p.RoyaltyBp = schema.DefaultRoyaltyBp
	}
	if p.ConfirmTimeout == 0 {
		p.ConfirmTimeout = schema.DefaultConfirmTimeout
	}

	price, err := wdb.GetPrice()
	if err != nil {
		if err := wdb.SavePrice(p.PriceLamports); err != nil {
			panic(err)
		}
		price = p.PriceLamports
	}

	return &Config{
		Params:    p,
		wdb:       wdb,
		scheduler: gocron.NewScheduler(time.UTC),
		price:     price,
	}
}

func (c *Config) PriceLamports() int64 {
	c.priceLocker.RLock()
	defer c.priceLocker.RUnlock()
	return c.price
}

func (c *Config) SetPrice(lamports int64) error {
	if err := c.wdb.SavePrice(lamports); err != nil {
		return err
	}
	c.priceLocker.Lock()
	c.price = lamports
	c.priceLocker.Unlock()
	return nil
}

func (c *Config) Run() {
	c.runJobs()
}

func (c *Config) Close() {
	c.scheduler.Stop()
	c.wdb.Close()
}
