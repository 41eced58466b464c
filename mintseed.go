package mintseed

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/panjf2000/ants/v2"

	"github.com/mintseed/mintseed/common"
	"github.com/mintseed/mintseed/config"
	"github.com/mintseed/mintseed/rawdb"
)

var log = common.NewLog("mintseed")

type Mintseed struct {
	store  rawdb.KeyValueDB
	engine *gin.Engine

	registry  *Registry
	allocator *Allocator
	verifier  *Verifier
	ledger    Ledger
	boot      Bootstrapper
	payLocker *keyedLocker

	wdb    *Wdb
	cfg    *config.Config
	events *EventHub
	kafka  *KWriter

	scheduler     *gocron.Scheduler
	reconcilePool *ants.Pool

	treeAddr       string
	collectionAddr string
}

func New(
	boltDirPath, mySqlDsn string, sqliteDir string, useSqlite bool,
	useMongo bool, mongoUri string,
	rpcEndpoint, rpcApiKey string,
	signerKey, treasury, treeAddr, collectionAddr string,
	useKafka bool, kafkaUri string,
	cfgParams config.Params,
) *Mintseed {
	var KVDb rawdb.KeyValueDB
	var err error
	if useMongo {
		KVDb, err = rawdb.NewMongoDB(context.Background(), mongoUri)
	} else {
		KVDb, err = rawdb.NewBoltDB(boltDirPath)
	}
	if err != nil {
		panic(err)
	}

	wdb := &Wdb{}
	if useSqlite {
		wdb = NewSqliteDb(sqliteDir)
	} else {
		wdb = NewMysqlDb(mySqlDsn)
	}
	if err = wdb.Migrate(); err != nil {
		panic(err)
	}

	ledger, err := NewSolanaLedger(rpcEndpoint, rpcApiKey, signerKey, treasury, treeAddr, collectionAddr)
	if err != nil {
		panic(err)
	}

	cfg := config.New(mySqlDsn, sqliteDir, useSqlite, cfgParams)

	var kw *KWriter
	if useKafka {
		kw, err = NewKWriter(MintTopic, kafkaUri)
		if err != nil {
			panic(err)
		}
	}

	pool, err := ants.NewPool(10)
	if err != nil {
		panic(err)
	}

	return &Mintseed{
		store:          KVDb,
		engine:         gin.Default(),
		registry:       NewRegistry(KVDb),
		allocator:      NewAllocator(ledger, cfg.MaxSupply),
		verifier:       NewVerifier(ledger),
		ledger:         ledger,
		boot:           ledger,
		payLocker:      newKeyedLocker(),
		wdb:            wdb,
		cfg:            cfg,
		events:         NewEventHub(),
		kafka:          kw,
		scheduler:      gocron.NewScheduler(time.UTC),
		reconcilePool:  pool,
		treeAddr:       treeAddr,
		collectionAddr: collectionAddr,
	}
}

func (s *Mintseed) Run(port string) {
	common.NewMetricServer()
	s.cfg.Run()
	go s.runAPI(port)
	s.runJobs()
}

func (s *Mintseed) Close() {
	s.scheduler.Stop()
	s.reconcilePool.Release()
	if s.kafka != nil {
		s.kafka.Close()
	}
	s.cfg.Close()
	s.wdb.Close()
	if err := s.store.Close(); err != nil {
		log.Error("s.store.Close()", "err", err)
	}
}
