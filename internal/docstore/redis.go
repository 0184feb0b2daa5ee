package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// existsField is written into every hash so that empty documents still exist.
const existsField = "\x00updated"

// Redis keeps each document in a hash whose fields hold JSON-encoded values; a set per
// collection indexes the keys. Transactions use WATCH/MULTI and retry when EXEC aborts.
type Redis struct {
	client      *redis.Client
	prefix      string
	maxAttempts int
}

func NewRedis(client *redis.Client, prefix string, maxAttempts int) *Redis {
	if prefix == "" {
		prefix = "tablecheck"
	}
	return &Redis{client: client, prefix: prefix, maxAttempts: maxAttempts}
}

func (r *Redis) docKey(collection, key string) string {
	return r.prefix + ":doc:" + collection + ":" + key
}

func (r *Redis) indexKey(collection string) string {
	return r.prefix + ":idx:" + collection
}

func (r *Redis) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	return r.get(ctx, r.client, collection, key)
}

func (r *Redis) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		return r.queueSet(ctx, p, collection, key, fields, opts)
	})
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, key, err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, collection string) ([]Document, error) {
	keys, err := r.client.SMembers(ctx, r.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	sort.Strings(keys)

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.HGetAll(ctx, r.docKey(collection, k))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	out := make([]Document, 0, len(keys))
	for i, k := range keys {
		raw := cmds[i].Val()
		if len(raw) == 0 {
			continue
		}
		f, err := decodeHash(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Document{Key: k, Fields: f})
	}
	return out, nil
}

func (r *Redis) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return retryTx(ctx, r.maxAttempts, redisRetryable, func() error {
		return r.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &redisTx{store: r, rtx: rtx, pending: make(map[docRef]pendingWrite)}
			if err := fn(ctx, tx); err != nil {
				return err
			}
			if len(tx.order) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				for _, ref := range tx.order {
					w := tx.pending[ref]
					if err := r.queueSet(ctx, p, ref.collection, ref.key, w.fields, SetOptions{Merge: !w.replace}); err != nil {
						return err
					}
				}
				return nil
			})
			return err
		})
	})
}

func (r *Redis) Close(context.Context) error { return r.client.Close() }

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (r *Redis) get(ctx context.Context, c hashReader, collection, key string) (Document, bool, error) {
	raw, err := c.HGetAll(ctx, r.docKey(collection, key)).Result()
	if err != nil {
		return Document{}, false, fmt.Errorf("get %s/%s: %w", collection, key, err)
	}
	if len(raw) == 0 {
		return Document{}, false, nil
	}
	f, err := decodeHash(raw)
	if err != nil {
		return Document{}, false, err
	}
	return Document{Key: key, Fields: f}, true, nil
}

func (r *Redis) queueSet(ctx context.Context, p redis.Pipeliner, collection, key string, fields Fields, opts SetOptions) error {
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		enc, err := encodeValue(v)
		if err != nil {
			return err
		}
		values[k] = enc
	}
	values[existsField] = strconv.FormatInt(time.Now().UnixNano(), 10)

	dk := r.docKey(collection, key)
	if !opts.Merge {
		p.Del(ctx, dk)
	}
	p.HSet(ctx, dk, values)
	p.SAdd(ctx, r.indexKey(collection), key)
	return nil
}

func decodeHash(raw map[string]string) (Fields, error) {
	f := make(Fields, len(raw))
	for k, s := range raw {
		if k == existsField {
			continue
		}
		v, err := decodeValue(s)
		if err != nil {
			return nil, err
		}
		f[k] = v
	}
	return f, nil
}

type pendingWrite struct {
	fields  Fields
	replace bool
}

type redisTx struct {
	store   *Redis
	rtx     *redis.Tx
	pending map[docRef]pendingWrite
	order   []docRef
}

// Get watches the document before reading it, so EXEC aborts if anyone else writes it.
func (t *redisTx) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	ref := docRef{collection, key}
	if w, ok := t.pending[ref]; ok {
		base := Fields{}
		if !w.replace {
			cur, found, err := t.store.get(ctx, t.rtx, collection, key)
			if err != nil {
				return Document{}, false, err
			}
			if found {
				base = cur.Fields
			}
		}
		c, err := cloneFields(mergeFields(base, w.fields))
		if err != nil {
			return Document{}, false, err
		}
		return Document{Key: key, Fields: c}, true, nil
	}
	if err := t.rtx.Watch(ctx, t.store.docKey(collection, key)).Err(); err != nil {
		return Document{}, false, fmt.Errorf("watch %s/%s: %w", collection, key, err)
	}
	return t.store.get(ctx, t.rtx, collection, key)
}

func (t *redisTx) Set(ctx context.Context, collection, key string, fields Fields, opts SetOptions) error {
	ref := docRef{collection, key}
	w, seen := t.pending[ref]
	if !seen {
		t.order = append(t.order, ref)
		w = pendingWrite{fields: Fields{}}
	}
	if !opts.Merge {
		w = pendingWrite{fields: Fields{}, replace: true}
	}
	w.fields = mergeFields(w.fields, fields)
	t.pending[ref] = w
	return nil
}

func redisRetryable(err error) bool {
	return errors.Is(err, redis.TxFailedErr)
}
