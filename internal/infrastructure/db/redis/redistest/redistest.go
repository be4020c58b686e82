// Package redistest serves the handful of Redis commands the adapters use
// from memory, through go-redis hooks, so tests need no server.
package redistest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoServer is returned for anything that would open a connection,
// such as SUBSCRIBE.
var ErrNoServer = errors.New("redistest: no server")

// Message is one PUBLISH seen by the fake.
type Message struct {
	Channel string
	Payload string
}

// Fake records every command it answers.
type Fake struct {
	mu        sync.Mutex
	data      map[string]string
	ttl       map[string]time.Duration
	published []Message
	pipelines [][]string
	failWith  error
}

// NewClient returns a client answered by a fresh Fake.
func NewClient() (*redis.Client, *Fake) {
	f := &Fake{data: map[string]string{}, ttl: map[string]time.Duration{}}
	client := redis.NewClient(&redis.Options{Addr: "redistest:6379", MaxRetries: -1})
	client.AddHook(f)
	return client, f
}

// FailWith makes every following command return err. Nil restores service.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

// Value returns the raw value stored under key.
func (f *Fake) Value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

// TTL returns the expiry a SET gave key, zero when none.
func (f *Fake) TTL(key string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ttl[key]
}

// Keys returns the number of stored keys.
func (f *Fake) Keys() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

// Published returns the messages published so far.
func (f *Fake) Published() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.published...)
}

// Pipelines returns the command names of every pipeline, in order.
func (f *Fake) Pipelines() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.pipelines...)
}

func (f *Fake) DialHook(redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, ErrNoServer
	}
}

func (f *Fake) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.apply(cmd)
	}
}

func (f *Fake) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		names := make([]string, len(cmds))
		for i, cmd := range cmds {
			names[i] = strings.ToLower(cmd.Name())
		}
		f.pipelines = append(f.pipelines, names)

		for _, cmd := range cmds {
			if err := f.apply(cmd); err != nil {
				return err
			}
		}
		return nil
	}
}

func (f *Fake) apply(cmd redis.Cmder) error {
	if f.failWith != nil {
		cmd.SetErr(f.failWith)
		return f.failWith
	}

	name, args := strings.ToLower(cmd.Name()), cmd.Args()
	switch c := cmd.(type) {
	case *redis.StringCmd:
		if name != "get" {
			break
		}
		v, ok := f.data[arg(args, 1)]
		if !ok {
			c.SetErr(redis.Nil)
			return redis.Nil
		}
		c.SetVal(v)
		return nil

	case *redis.StatusCmd:
		switch name {
		case "multi":
			c.SetVal("OK")
			return nil
		case "set":
			key := arg(args, 1)
			f.data[key] = arg(args, 2)
			f.ttl[key] = expiry(args)
			c.SetVal("OK")
			return nil
		}

	case *redis.IntCmd:
		switch name {
		case "del", "exists":
			var n int64
			for i := 1; i < len(args); i++ {
				key := arg(args, i)
				if _, ok := f.data[key]; ok {
					n++
					if name == "del" {
						delete(f.data, key)
						delete(f.ttl, key)
					}
				}
			}
			c.SetVal(n)
			return nil
		case "publish":
			f.published = append(f.published, Message{Channel: arg(args, 1), Payload: arg(args, 2)})
			c.SetVal(0)
			return nil
		}

	case *redis.SliceCmd:
		if name == "exec" {
			c.SetVal(nil)
			return nil
		}
	}

	err := fmt.Errorf("redistest: unsupported command %q", name)
	cmd.SetErr(err)
	return err
}

func arg(args []interface{}, i int) string {
	if i >= len(args) {
		return ""
	}
	return fmt.Sprint(args[i])
}

func expiry(args []interface{}) time.Duration {
	if len(args) < 5 {
		return 0
	}
	var n int64
	if _, err := fmt.Sscan(arg(args, 4), &n); err != nil {
		return 0
	}
	switch strings.ToLower(arg(args, 3)) {
	case "ex":
		return time.Duration(n) * time.Second
	case "px":
		return time.Duration(n) * time.Millisecond
	}
	return 0
}
