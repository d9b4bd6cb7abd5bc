// Package cache keeps fetched payloads on disk with a TTL so a restart
// does not hit remote services again.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/abelbrown/lookout/internal/calc"
	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/logging"
)

// DefaultRatesTTL is how long currency rates are reused.
const DefaultRatesTTL = 6 * time.Hour

// ratesKey is the single key currency rates are stored under.
const ratesKey = "currency/rates"

// badgerLogger routes badger's chatter through the application logger.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(f string, v ...any)   { b.l.Error(fmt.Sprintf(f, v...)) }
func (b badgerLogger) Warningf(f string, v ...any) { b.l.Warn(fmt.Sprintf(f, v...)) }
func (b badgerLogger) Infof(f string, v ...any)    { b.l.Debug(fmt.Sprintf(f, v...)) }
func (b badgerLogger) Debugf(f string, v ...any)   { b.l.Debug(fmt.Sprintf(f, v...)) }

// Cache is a TTL key-value store.
type Cache struct {
	db *badger.DB
}

// Open opens the cache in dir, creating it if needed. An empty dir gives an
// in-memory cache.
func Open(dir string) (*Cache, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	l := logging.WithPrefix("cache")
	if l == nil {
		l = log.New(io.Discard)
	}
	opts.Logger = badgerLogger{l: l}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// get decodes the value at key into out. It reports false on a miss.
func (c *Cache) get(key string, out any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		it, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return it.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// put stores v at key for ttl. A non-positive ttl never expires.
func (c *Cache) put(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Weather wraps a weather source, reusing a report until maxAge expires.
type Weather struct {
	c    *Cache
	next item.WeatherSource
}

// NewWeather returns a caching weather source.
func NewWeather(c *Cache, next item.WeatherSource) *Weather {
	return &Weather{c: c, next: next}
}

// Weather implements item.WeatherSource.
func (w *Weather) Weather(ctx context.Context, location string, maxAge time.Duration) (item.WeatherReport, error) {
	key := "weather/" + location
	var r item.WeatherReport
	if ok, err := w.c.get(key, &r); err != nil {
		logging.Warn("weather cache read failed", "location", location, "err", err)
	} else if ok {
		return r, nil
	}

	r, err := w.next.Weather(ctx, location, maxAge)
	if err != nil {
		return item.WeatherReport{}, err
	}
	if err := w.c.put(key, r, maxAge); err != nil {
		logging.Warn("weather cache write failed", "location", location, "err", err)
	}
	return r, nil
}

// Currency wraps a currency source, reusing rates for ttl.
type Currency struct {
	c    *Cache
	next item.CurrencySource
	ttl  time.Duration
}

// NewCurrency returns a caching currency source.
func NewCurrency(c *Cache, next item.CurrencySource, ttl time.Duration) *Currency {
	if ttl <= 0 {
		ttl = DefaultRatesTTL
	}
	return &Currency{c: c, next: next, ttl: ttl}
}

// Rates implements item.CurrencySource.
func (cu *Currency) Rates(ctx context.Context) (calc.Rates, error) {
	var rates calc.Rates
	if ok, err := cu.c.get(ratesKey, &rates); err != nil {
		logging.Warn("rates cache read failed", "err", err)
	} else if ok {
		return rates, nil
	}

	rates, err := cu.next.Rates(ctx)
	if err != nil {
		return nil, err
	}
	if err := cu.c.put(ratesKey, rates, cu.ttl); err != nil {
		logging.Warn("rates cache write failed", "err", err)
	}
	return rates, nil
}
