package cache

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

const redisKeyPrefix = "apartguide:"

// RedisConfig captures the connection settings for the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// RedisClient is a minimal RESP client sufficient for the cache Store interface.
type RedisClient struct {
	cfg RedisConfig

	mu   sync.Mutex
	conn net.Conn
	rw   *bufio.ReadWriter
}

// NewRedisClient validates the config and constructs a lazy-connecting client.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("cache: redis address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &RedisClient{cfg: cfg}, nil
}

// IncrementWithTTL increments the counter stored at key and refreshes its TTL.
func (c *RedisClient) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	k := normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	count, err := c.commandInt(ctx, "INCR", k)
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if _, err := c.commandInt(ctx, "PEXPIRE", k, formatMillis(window)); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	ttlMillis, err := c.commandInt(ctx, "PTTL", k)
	if err != nil {
		return 0, 0, err
	}
	if ttlMillis < 0 {
		if _, err := c.commandInt(ctx, "PEXPIRE", k, formatMillis(window)); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	return count, time.Duration(ttlMillis) * time.Millisecond, nil
}

// Set stores the value with an optional TTL.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	args := []string{"SET", normalizeKey(key), string(value)}
	if ttl > 0 {
		args = append(args, "PX", formatMillis(ttl))
	}

	resp, err := c.command(ctx, args...)
	if err != nil {
		return err
	}
	if s, ok := resp.(string); ok && s == "OK" {
		return nil
	}
	return fmt.Errorf("cache: unexpected SET response %v", resp)
}

// Get fetches the value stored at key.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.command(ctx, "GET", normalizeKey(key))
	if err != nil {
		return nil, false, err
	}
	if resp == nil {
		return nil, false, nil
	}
	switch v := resp.(type) {
	case []byte:
		return v, true, nil
	case string:
		return []byte(v), true, nil
	default:
		return nil, false, fmt.Errorf("cache: unexpected GET response %v", resp)
	}
}

// Delete removes the supplied keys.
func (c *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	args := make([]string, 0, len(keys)+1)
	args = append(args, "DEL")
	for _, key := range keys {
		args = append(args, normalizeKey(key))
	}

	_, err := c.command(ctx, args...)
	return err
}

// Close terminates the underlying connection.
func (c *RedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *RedisClient) closeLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.rw = nil
	return err
}

func (c *RedisClient) ensureConnLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	dialer := net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("cache: dial redis: %w", err)
	}

	c.conn = conn
	c.rw = bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	if c.cfg.Password != "" {
		if _, err := c.roundTripLocked(ctx, "AUTH", c.cfg.Password); err != nil {
			_ = c.closeLocked()
			return fmt.Errorf("cache: redis auth: %w", err)
		}
	}
	if c.cfg.DB > 0 {
		if _, err := c.roundTripLocked(ctx, "SELECT", strconv.Itoa(c.cfg.DB)); err != nil {
			_ = c.closeLocked()
			return fmt.Errorf("cache: redis select db: %w", err)
		}
	}
	return nil
}

func (c *RedisClient) command(ctx context.Context, args ...string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.ensureConnLocked(ctx); err != nil {
		return nil, err
	}

	resp, err := c.roundTripLocked(ctx, args...)
	if err != nil {
		_ = c.closeLocked()
		return nil, err
	}
	return resp, nil
}

func (c *RedisClient) commandInt(ctx context.Context, args ...string) (int64, error) {
	resp, err := c.command(ctx, args...)
	if err != nil {
		return 0, err
	}
	switch v := resp.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("cache: unexpected integer response %v", resp)
	}
}

func (c *RedisClient) roundTripLocked(ctx context.Context, args ...string) (any, error) {
	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if err := writeCommand(c.rw.Writer, args); err != nil {
		return nil, err
	}
	if err := c.rw.Flush(); err != nil {
		return nil, err
	}
	return readResponse(c.rw.Reader)
}

func writeCommand(w *bufio.Writer, args []string) error {
	if _, err := fmt.Fprintf(w, "*%d\r\n", len(args)); err != nil {
		return err
	}
	for _, arg := range args {
		if _, err := fmt.Fprintf(w, "$%d\r\n%s\r\n", len(arg), arg); err != nil {
			return err
		}
	}
	return nil
}

func readResponse(r *bufio.Reader) (any, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, errors.New("cache: empty redis response")
	}

	switch line[0] {
	case '+':
		return string(line[1:]), nil
	case '-':
		return nil, fmt.Errorf("cache: redis error: %s", line[1:])
	case ':':
		return strconv.ParseInt(string(line[1:]), 10, 64)
	case '$':
		length, err := strconv.Atoi(string(line[1:]))
		if err != nil {
			return nil, err
		}
		if length < 0 {
			return nil, nil
		}
		buf := make([]byte, length+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return buf[:length], nil
	case '*':
		count, err := strconv.Atoi(string(line[1:]))
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, nil
		}
		items := make([]any, 0, count)
		for i := 0; i < count; i++ {
			item, err := readResponse(r)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("cache: unsupported redis reply %q", line[0])
	}
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	line = []byte(strings.TrimRight(string(line), "\r\n"))
	return line, nil
}

func normalizeKey(key string) string {
	if strings.HasPrefix(key, redisKeyPrefix) {
		return key
	}
	return redisKeyPrefix + key
}

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
