package cache

import (
	"sync"

	"github.com/coocood/freecache"
)

const megabyte = 1024 * 1024

var (
	localMu sync.RWMutex
	local   *freecache.Cache
)

// InitLocal sizes the in-process cache that sits in front of Redis.
// A size of zero disables it.
func InitLocal(sizeMB int) {
	localMu.Lock()
	defer localMu.Unlock()
	if sizeMB <= 0 {
		local = nil
		return
	}
	local = freecache.NewCache(sizeMB * megabyte)
}

func localCache() *freecache.Cache {
	localMu.RLock()
	defer localMu.RUnlock()
	return local
}

func localGet(key string) ([]byte, bool) {
	lc := localCache()
	if lc == nil {
		return nil, false
	}
	b, err := lc.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return b, true
}

func localSet(key string, value []byte, ttlSeconds int) {
	lc := localCache()
	if lc == nil {
		return
	}
	// freecache rejects entries above 1/1024 of its size; those simply stay in Redis.
	_ = lc.Set([]byte(key), value, ttlSeconds)
}

func localDel(key string) {
	if lc := localCache(); lc != nil {
		lc.Del([]byte(key))
	}
}
