package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mintseed/mintseed"
	"github.com/mintseed/mintseed/config"
)

func main() {
	app := &cli.App{
		Name: "mintseed",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db_dir", Value: "./data/bolt", Usage: "bolt db dir path", EnvVars: []string{"DB_DIR"}},
			&cli.StringFlag{Name: "mysql", Value: "root@tcp(127.0.0.1:3306)/mintseed?charset=utf8mb4&parseTime=True&loc=Local", Usage: "mysql dsn", EnvVars: []string{"MYSQL"}},
			&cli.BoolFlag{Name: "use_sqlite", Value: false, Usage: "run with sqlite instead of mysql", EnvVars: []string{"USE_SQLITE"}},
			&cli.StringFlag{Name: "sqlite_dir", Value: "./data/sqlite", Usage: "sqlite db dir path", EnvVars: []string{"SQLITE_DIR"}},
			&cli.BoolFlag{Name: "use_mongo", Value: false, Usage: "run payment registry on mongodb instead of boltdb", EnvVars: []string{"USE_MONGO"}},
			&cli.StringFlag{Name: "mongo_uri", Value: "mongodb://localhost:27017", EnvVars: []string{"MONGO_URI"}},

			&cli.StringFlag{Name: "rpc_endpoint", Value: "https://api.devnet.solana.com", Usage: "solana rpc endpoint", EnvVars: []string{"RPC_ENDPOINT"}},
			&cli.StringFlag{Name: "rpc_api_key", Value: "", Usage: "rpc provider api key", EnvVars: []string{"RPC_API_KEY"}},
			&cli.StringFlag{Name: "signer_key", Value: "", Usage: "base58 private key of the mint authority", EnvVars: []string{"SIGNER_KEY"}},
			&cli.StringFlag{Name: "treasury", Value: "", Usage: "wallet payments must be sent to", EnvVars: []string{"TREASURY"}},
			&cli.StringFlag{Name: "tree", Value: "", Usage: "merkle tree address", EnvVars: []string{"TREE"}},
			&cli.StringFlag{Name: "collection", Value: "", Usage: "collection mint address", EnvVars: []string{"COLLECTION"}},

			&cli.StringFlag{Name: "name_prefix", Value: "Mintseed", Usage: "asset name prefix", EnvVars: []string{"NAME_PREFIX"}},
			&cli.StringFlag{Name: "metadata_base", Value: "", Usage: "metadata uri base", EnvVars: []string{"METADATA_BASE"}},
			&cli.StringFlag{Name: "image_base", Value: "", Usage: "image url base", EnvVars: []string{"IMAGE_BASE"}},
			&cli.Uint64Flag{Name: "max_supply", Value: 10000, EnvVars: []string{"MAX_SUPPLY"}},
			&cli.UintFlag{Name: "royalty_bp", Value: 500, Usage: "seller fee basis points", EnvVars: []string{"ROYALTY_BP"}},
			&cli.Int64Flag{Name: "price", Value: 100000000, Usage: "mint price in lamports", EnvVars: []string{"PRICE"}},
			&cli.DurationFlag{Name: "confirm_timeout", Value: 60 * time.Second, EnvVars: []string{"CONFIRM_TIMEOUT"}},

			&cli.BoolFlag{Name: "use_kafka", Value: false, EnvVars: []string{"USE_KAFKA"}},
			&cli.StringFlag{Name: "kafka_uri", Value: "localhost:9092", EnvVars: []string{"KAFKA_URI"}},

			&cli.StringFlag{Name: "port", Value: ":8080", EnvVars: []string{"PORT"}},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	s := mintseed.New(
		c.String("db_dir"), c.String("mysql"), c.String("sqlite_dir"), c.Bool("use_sqlite"),
		c.Bool("use_mongo"), c.String("mongo_uri"),
		c.String("rpc_endpoint"), c.String("rpc_api_key"),
		c.String("signer_key"), c.String("treasury"), c.String("tree"), c.String("collection"),
		c.Bool("use_kafka"), c.String("kafka_uri"),
		config.Params{
			NamePrefix:     c.String("name_prefix"),
			MetadataBase:   c.String("metadata_base"),
			ImageBase:      c.String("image_base"),
			MaxSupply:      c.Uint64("max_supply"),
			RoyaltyBp:      uint16(c.Uint("royalty_bp")),
			ConfirmTimeout: c.Duration("confirm_timeout"),
			PriceLamports:  c.Int64("price"),
		},
	)
	s.Run(c.String("port"))

	<-signals

	s.Close()
	return nil
}
