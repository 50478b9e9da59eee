package main

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	relay "github.com/privaterelay/go-sdk"
	"github.com/privaterelay/go-sdk/relaycache"
)

type config struct {
	Origin    string        `env:"RELAY_ORIGIN" envDefault:"https://relay.firefox.com"`
	RedisAddr string        `env:"REDIS_ADDR"`
	Locale    string        `env:"RELAY_LOCALE" envDefault:"en-US"`
	Timeout   time.Duration `env:"RELAY_TIMEOUT" envDefault:"10s"`
}

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if err := run(logger); err != nil {
		logger.Fatal(err)
	}
}

func run(logger *logrus.Logger) error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("cannot read configuration: %w", err)
	}
	e, err := relay.EnvFromOS()
	if err != nil {
		return fmt.Errorf("cannot read environment: %w", err)
	}
	profile := relay.ResolveProfile(e)

	clientCfg := relay.Config{
		Profile: profile,
		BaseURL: cfg.Origin,
		Logger:  logger,
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		clientCfg.Cache = relaycache.NewRedisCache(rdb)
	}
	client := relay.NewCustomClient(clientCfg)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	rd, err := client.Load(ctx)
	if err != nil {
		return fmt.Errorf("cannot load runtime data: %w", err)
	}

	fmt.Printf("profile: %s\n", profile.Name)
	fmt.Printf("email size limit: %s\n", profile.EmailSizeLimit())
	fmt.Printf("premium available: %v\n", relay.IsPeriodicalPremiumAvailableInCountry(rd))
	if price, err := relay.GetPeriodicalPremiumPrice(rd, relay.PeriodMonthly, cfg.Locale); err == nil {
		fmt.Printf("premium monthly: %s\n", price)
	}
	if link, err := relay.GetPeriodicalPremiumSubscribeLink(rd, relay.PeriodYearly, cfg.Locale); err == nil {
		fmt.Printf("premium yearly link: %s\n", link)
	}
	fmt.Printf("phones available: %v\n", relay.IsPhonesAvailableInCountry(rd))
	fmt.Printf("bundle available: %v\n", relay.IsBundleAvailableInCountry(rd))
	fmt.Printf("megabundle available: %v\n", relay.IsMegabundleAvailableInCountry(rd))
	for _, w := range rd.WaffleFlags {
		fmt.Printf("flag %s: %v\n", w.Name, relay.IsFlagActive(rd, w.Name))
	}
	return nil
}
