package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/imtaco/stream-orch-exp/internal/errors"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/internal/redis"
	"github.com/imtaco/stream-orch-exp/sessions"
)

const (
	ErrNotFound     errors.Code = "session snapshot not found"
	ErrEncodeFailed errors.Code = "failed to encode session snapshot"
	ErrStoreFailure errors.Code = "snapshot store operation failed"
	ErrDecodeFailed errors.Code = "failed to decode session snapshot"
)

// snapshotStoreImpl persists session snapshots in Redis, keyed by session ID
// with a TTL, so operators can inspect in-flight sessions across replicas.
// Credentials never pass through here; the snapshot read model excludes them.
type snapshotStoreImpl struct {
	rdb    redis.Forever
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

func NewSnapshotStore(
	rdb redis.Forever,
	prefix string,
	ttl time.Duration,
	logger *log.Logger,
) sessions.SnapshotStore {
	if rdb == nil {
		panic("redis client is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	return &snapshotStoreImpl{
		rdb:    rdb,
		prefix: strings.TrimSuffix(prefix, ":"),
		ttl:    ttl,
		logger: logger,
	}
}

func (st *snapshotStoreImpl) key(sessionID string) string {
	return st.prefix + ":session:" + sessionID
}

func (st *snapshotStoreImpl) Save(ctx context.Context, snap *sessions.SessionSnapshot) error {
	bs, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(ErrEncodeFailed, err, "marshal snapshot")
	}
	if err := st.rdb.Set(ctx, st.key(snap.SessionID), bs, st.ttl); err != nil {
		return errors.Wrap(ErrStoreFailure, err, "set snapshot")
	}
	return nil
}

func (st *snapshotStoreImpl) Get(ctx context.Context, sessionID string) (*sessions.SessionSnapshot, error) {
	raw, err := st.rdb.Get(ctx, st.key(sessionID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, errors.Newf(ErrNotFound, "session %s", sessionID)
		}
		return nil, errors.Wrap(ErrStoreFailure, err, "get snapshot")
	}

	var snap sessions.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, errors.Wrap(ErrDecodeFailed, err, "unmarshal snapshot")
	}
	return &snap, nil
}

func (st *snapshotStoreImpl) List(ctx context.Context) ([]*sessions.SessionSnapshot, error) {
	keys, err := st.rdb.Scan(ctx, st.prefix+":session:*")
	if err != nil {
		return nil, errors.Wrap(ErrStoreFailure, err, "scan snapshots")
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := st.rdb.MGet(ctx, keys...)
	if err != nil {
		return nil, errors.Wrap(ErrStoreFailure, err, "mget snapshots")
	}

	snaps := make([]*sessions.SessionSnapshot, 0, len(vals))
	for i, val := range vals {
		raw, ok := val.(string)
		if !ok {
			// Expired between Scan and MGet.
			continue
		}
		var snap sessions.SessionSnapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			st.logger.Warn("Dropping undecodable snapshot",
				log.String("key", keys[i]),
				log.Error(err))
			continue
		}
		snaps = append(snaps, &snap)
	}
	return snaps, nil
}
